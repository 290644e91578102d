// Package schemas embeds the JSON Schemas that backend responses are checked against.
package schemas

import "embed"

// Files holds every *.schema.json in this directory.
//
//go:embed *.schema.json
var Files embed.FS

// Schema names, one per backend endpoint.
const (
	UploadResume    = "upload_resume.schema.json"
	SearchJobs      = "search_jobs.schema.json"
	CoverLetter     = "cover_letter.schema.json"
	AnalyzeSkills   = "analyze_skills.schema.json"
	GetCourses      = "get_courses.schema.json"
	ResearchCompany = "research_company.schema.json"
)

// All lists the schema names.
func All() []string {
	return []string{UploadResume, SearchJobs, CoverLetter, AnalyzeSkills, GetCourses, ResearchCompany}
}
