package rendering

import "fmt"

// TemplateError represents an error parsing an HTML template
type TemplateError struct {
	Name  string
	Cause error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template error: %s: %v", e.Name, e.Cause)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a failure executing a template
type RenderError struct {
	Fragment string
	Cause    error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Fragment, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Fragment)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
