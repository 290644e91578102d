// Package backend is the typed client for the job assistant backend API.
//
// Every endpoint answers with a JSON envelope carrying a success flag and, on
// failure, an error message. The client turns that envelope into Go values and
// classifies failures as TransportError or AppError. The backend keeps the
// uploaded resume in its own cookie session, so one Client must serve exactly
// one visitor.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/jonathan/job-assistant/internal/schemas"
	"github.com/jonathan/job-assistant/internal/types"
	embedded "github.com/jonathan/job-assistant/schemas"
)

// Endpoint paths
const (
	PathUploadResume    = "/upload-resume"
	PathSearchJobs      = "/search-jobs"
	PathCoverLetter     = "/generate-cover-letter"
	PathAnalyzeSkills   = "/analyze-skills"
	PathGetCourses      = "/get-courses"
	PathResearchCompany = "/research-company"
)

// DefaultUserAgent is sent with every request.
const DefaultUserAgent = "JobAssistant/1.0"

// Options configures a Client. Timeout and Retries default to zero: no
// deadline beyond the request context and a single attempt.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	Retries      int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
	// ValidateResponses checks each body against the endpoint's JSON Schema.
	ValidateResponses bool
	// OnCall, when set, is told about every finished call. Outcome is one of
	// "ok", "app_error" or "transport_error".
	OnCall func(endpoint, outcome string, elapsed time.Duration)
}

// Client calls the backend on behalf of one visitor.
type Client struct {
	resty     *resty.Client
	validator *schemas.Validator
	onCall    func(endpoint, outcome string, elapsed time.Duration)
	logger    *zap.Logger
}

// NewJar creates the cookie jar holding a visitor's backend session cookie.
func NewJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// NewClient creates a client with its own cookie jar.
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	jar, err := NewJar()
	if err != nil {
		return nil, err
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.Retries
	if opts.RetryWaitMin > 0 {
		retryClient.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		retryClient.RetryWaitMax = opts.RetryWaitMax
	}
	retryClient.Logger = retryLogger{logger.Sugar()}
	retryClient.CheckRetry = checkRetry
	// Non-2xx responses still carry the JSON envelope.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	httpClient := retryClient.StandardClient()
	httpClient.Jar = jar

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	r := resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetLogger(logger.Sugar())
	if opts.Timeout > 0 {
		r.SetTimeout(opts.Timeout)
	}

	c := &Client{
		resty:  r,
		onCall: opts.OnCall,
		logger: logger,
	}
	if opts.ValidateResponses {
		c.validator = schemas.NewValidator(embedded.Files)
	}
	return c, nil
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type jobsResponse struct {
	Jobs []types.Job `json:"jobs"`
}

type coverLetterResponse struct {
	CoverLetter string `json:"cover_letter"`
}

type analysisResponse struct {
	Analysis types.SkillAnalysis `json:"analysis"`
}

type coursesResponse struct {
	Courses []types.CourseSet `json:"courses"`
}

type researchResponse struct {
	Research types.Research `json:"research"`
}

// UploadResume sends a resume file as multipart field "resume".
func (c *Client) UploadResume(ctx context.Context, filename, contentType string, body io.Reader) (types.UploadResult, error) {
	if contentType == "" {
		contentType = "application/pdf"
	}
	req := c.resty.R().SetMultipartField("resume", filename, contentType, body)
	return call[types.UploadResult](ctx, c, req, PathUploadResume, embedded.UploadResume)
}

// SearchJobs returns jobs matching the visitor's resume.
func (c *Client) SearchJobs(ctx context.Context, in types.SearchRequest) ([]types.Job, error) {
	out, err := call[jobsResponse](ctx, c, c.resty.R().SetBody(in), PathSearchJobs, embedded.SearchJobs)
	return out.Jobs, err
}

// GenerateCoverLetter returns a cover letter for one job.
func (c *Client) GenerateCoverLetter(ctx context.Context, in types.CoverLetterRequest) (string, error) {
	out, err := call[coverLetterResponse](ctx, c, c.resty.R().SetBody(in), PathCoverLetter, embedded.CoverLetter)
	return out.CoverLetter, err
}

// AnalyzeSkills compares the resume's skills with a job description.
func (c *Client) AnalyzeSkills(ctx context.Context, in types.AnalyzeRequest) (types.SkillAnalysis, error) {
	out, err := call[analysisResponse](ctx, c, c.resty.R().SetBody(in), PathAnalyzeSkills, embedded.AnalyzeSkills)
	return out.Analysis, err
}

// GetCourses returns learning resources per skill.
func (c *Client) GetCourses(ctx context.Context, in types.CoursesRequest) ([]types.CourseSet, error) {
	out, err := call[coursesResponse](ctx, c, c.resty.R().SetBody(in), PathGetCourses, embedded.GetCourses)
	return out.Courses, err
}

// ResearchCompany returns interview research for a company and role.
func (c *Client) ResearchCompany(ctx context.Context, in types.ResearchRequest) (types.Research, error) {
	out, err := call[researchResponse](ctx, c, c.resty.R().SetBody(in), PathResearchCompany, embedded.ResearchCompany)
	return out.Research, err
}

// checkRetry never retries a 500. The backend reports application failures
// that way.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp != nil && resp.StatusCode == http.StatusInternalServerError {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// call posts req to endpoint and decodes a successful envelope into T.
func call[T any](ctx context.Context, c *Client, req *resty.Request, endpoint, schema string) (T, error) {
	var out T
	start := time.Now()

	err := c.post(ctx, req, endpoint, schema, &out)

	outcome := "ok"
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		outcome = "app_error"
	case err != nil:
		outcome = "transport_error"
	}
	if c.onCall != nil {
		c.onCall(endpoint, outcome, time.Since(start))
	}
	return out, err
}

func (c *Client) post(ctx context.Context, req *resty.Request, endpoint, schema string, out any) error {
	resp, err := req.SetContext(ctx).Post(endpoint)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Message: "request failed", Cause: err}
	}
	body := resp.Body()

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &TransportError{Endpoint: endpoint, Message: "response is not JSON", Cause: err}
	}

	if c.validator != nil {
		if err := c.validator.Validate(schema, body); err != nil {
			return &TransportError{
				Endpoint: endpoint,
				Message:  "response failed validation",
				Cause:    &SchemaError{Endpoint: endpoint, Cause: err},
			}
		}
	}

	if !env.Success {
		return &AppError{Endpoint: endpoint, Status: resp.StatusCode(), Message: env.Error}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Endpoint: endpoint, Message: "unexpected response shape", Cause: err}
	}
	c.logger.Debug("backend call succeeded",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(body)))
	return nil
}

// retryLogger adapts zap to retryablehttp.LeveledLogger.
type retryLogger struct {
	s *zap.SugaredLogger
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) { l.s.Errorw(msg, keysAndValues...) }
func (l retryLogger) Info(msg string, keysAndValues ...interface{})  { l.s.Debugw(msg, keysAndValues...) }
func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) { l.s.Debugw(msg, keysAndValues...) }
func (l retryLogger) Warn(msg string, keysAndValues ...interface{})  { l.s.Warnw(msg, keysAndValues...) }
