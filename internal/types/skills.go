package types

// SkillAnalysis is the backend's comparison of resume skills against a job description.
type SkillAnalysis struct {
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
}

// HasGaps reports whether any required skill is missing from the resume.
func (a SkillAnalysis) HasGaps() bool {
	return len(a.MissingSkills) > 0
}

// AnalyzeRequest is the body of POST /analyze-skills
type AnalyzeRequest struct {
	SessionID      string `json:"session_id"`
	JobDescription string `json:"job_description"`
}

// UploadResult is the payload of a successful POST /upload-resume
type UploadResult struct {
	SessionID string   `json:"session_id"`
	Filename  string   `json:"filename"`
	Skills    []string `json:"skills"`
}
