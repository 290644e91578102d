// Package types provides the data shapes exchanged with the job assistant backend.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Job is a single search result. Jobs are addressed by their position in the
// most recently fetched list.
type Job struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// SearchRequest is the body of POST /search-jobs
type SearchRequest struct {
	SessionID string `json:"session_id"`
	Location  string `json:"location"`
	Limit     int    `json:"limit"`
}

// CoverLetterRequest is the body of POST /generate-cover-letter
type CoverLetterRequest struct {
	SessionID string `json:"session_id"`
	Job       Job    `json:"job"`
}
