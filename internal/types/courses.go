package types

// Course is one learning resource for a skill.
type Course struct {
	Title    string `json:"title"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// CourseSet groups the resources found for a single skill. Video results come
// from the video platform search, curated results from a fixed catalogue.
type CourseSet struct {
	Skill   string   `json:"skill"`
	YouTube []Course `json:"youtube"`
	Curated []Course `json:"curated"`
}

// All returns video results followed by curated results.
func (c CourseSet) All() []Course {
	out := make([]Course, 0, len(c.YouTube)+len(c.Curated))
	out = append(out, c.YouTube...)
	return append(out, c.Curated...)
}

// CoursesRequest is the body of POST /get-courses
type CoursesRequest struct {
	Skills []string `json:"skills"`
}
