package server

import (
	"context"
	"io"

	"github.com/jonathan/job-assistant/internal/backend"
	"github.com/jonathan/job-assistant/internal/types"
)

// unavailableBackend answers every call with a transport error. Visitors
// whose client could not be created see the network error notice.
type unavailableBackend struct {
	cause error
}

func (b unavailableBackend) fail(endpoint string) error {
	return &backend.TransportError{Endpoint: endpoint, Message: "backend client unavailable", Cause: b.cause}
}

func (b unavailableBackend) UploadResume(context.Context, string, string, io.Reader) (types.UploadResult, error) {
	return types.UploadResult{}, b.fail(backend.PathUploadResume)
}

func (b unavailableBackend) SearchJobs(context.Context, types.SearchRequest) ([]types.Job, error) {
	return nil, b.fail(backend.PathSearchJobs)
}

func (b unavailableBackend) GenerateCoverLetter(context.Context, types.CoverLetterRequest) (string, error) {
	return "", b.fail(backend.PathCoverLetter)
}

func (b unavailableBackend) AnalyzeSkills(context.Context, types.AnalyzeRequest) (types.SkillAnalysis, error) {
	return types.SkillAnalysis{}, b.fail(backend.PathAnalyzeSkills)
}

func (b unavailableBackend) GetCourses(context.Context, types.CoursesRequest) ([]types.CourseSet, error) {
	return nil, b.fail(backend.PathGetCourses)
}

func (b unavailableBackend) ResearchCompany(context.Context, types.ResearchRequest) (types.Research, error) {
	return types.Research{}, b.fail(backend.PathResearchCompany)
}
