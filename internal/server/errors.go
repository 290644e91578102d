// Package server serves the job assistant front end: the rendered page, the
// form and JSON endpoints that run flows, downloads and the streaming skill
// analysis.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/job-assistant/internal/flows"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnknownPage indicates navigation to a page that does not exist
type ErrUnknownPage struct {
	Page string
}

func (e *ErrUnknownPage) Error() string {
	return fmt.Sprintf("unknown page: %s", e.Page)
}

// ErrNoticeNotFound indicates a dismissed notice that is not in the tray
type ErrNoticeNotFound struct {
	ID string
}

func (e *ErrNoticeNotFound) Error() string {
	return fmt.Sprintf("notice not found: %s", e.ID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		page       *ErrUnknownPage
		notice     *ErrNoticeNotFound
		tooLarge   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &page), errors.As(err, &notice), errors.Is(err, flows.ErrNothingToDownload):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
