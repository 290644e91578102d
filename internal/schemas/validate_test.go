package schemas

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	embedded "github.com/jonathan/job-assistant/schemas"
)

func TestValidateJSONString_Valid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`
	jsonContent := `{"name": "test"}`

	err := ValidateJSONString(schemaContent, jsonContent)
	assert.NoError(t, err)
}

func TestValidateJSONString_Invalid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`
	jsonContent := `{"age": 30}`

	err := ValidateJSONString(schemaContent, jsonContent)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Schema: "search_jobs.schema.json",
		Errors: []FieldError{
			{Field: "jobs", Message: "is required"},
			{Field: "jobs.0.title", Message: "must be a string"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "search_jobs.schema.json")
	assert.Contains(t, errorMsg, "jobs.0.title")
}

func TestValidator_MissingSchema(t *testing.T) {
	v := NewValidator(fstest.MapFS{})
	err := v.Validate("nope.schema.json", []byte(`{}`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidator_InvalidSchema(t *testing.T) {
	v := NewValidator(fstest.MapFS{"bad.schema.json": {Data: []byte(`{"type": 12}`)}})
	err := v.Validate("bad.schema.json", []byte(`{}`))

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestValidator_BackendResponses(t *testing.T) {
	v := NewValidator(embedded.Files)

	tests := []struct {
		name      string
		schema    string
		document  string
		wantError bool
	}{
		{"upload ok", embedded.UploadResume, `{"success":true,"session_id":"cv.pdf","filename":"cv.pdf","skills":["Go"]}`, false},
		{"upload missing skills", embedded.UploadResume, `{"success":true,"session_id":"cv.pdf"}`, true},
		{"upload error without success flag", embedded.UploadResume, `{"error":"Invalid file type. Please upload a PDF."}`, false},
		{"jobs ok", embedded.SearchJobs, `{"success":true,"jobs":[{"title":"SRE","company":"Acme","location":"","description":"","link":""}]}`, false},
		{"jobs wrong type", embedded.SearchJobs, `{"success":true,"jobs":{"title":"SRE"}}`, true},
		{"jobs failure", embedded.SearchJobs, `{"success":false,"error":"boom"}`, false},
		{"letter missing", embedded.CoverLetter, `{"success":true}`, true},
		{"analysis ok", embedded.AnalyzeSkills, `{"success":true,"analysis":{"matched_skills":["Go"],"missing_skills":[]}}`, false},
		{"courses ok", embedded.GetCourses, `{"success":true,"courses":[{"skill":"Go","youtube":[],"curated":[{"title":"Tour","platform":"go.dev","url":"https://go.dev/tour"}]}]}`, false},
		{"research bad news", embedded.ResearchCompany, `{"success":true,"research":{"company_info":{"news":"none"}}}`, true},
		{"research ok", embedded.ResearchCompany, `{"success":true,"research":{"ai_brief":"# Acme","company_name":"Acme","company_info":{"news":[],"culture":[],"hiring":[]},"interview_questions":[]}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.schema, []byte(tt.document))
			if tt.wantError {
				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, tt.schema, validationErr.Schema)
				return
			}
			assert.NoError(t, err)
		})
	}
}
