// Package state holds the per-visitor application state: the backend session,
// the last job list, the last research result and the page counters.
//
// Flows never write State directly. They return a Mutation, and the owner of a
// Store applies it. Commits are serialised but not ordered, so when two flows
// overlap the last one to commit wins.
package state

import (
	"sync"

	"github.com/jonathan/job-assistant/internal/types"
)

// Stats are the counters shown on the page.
type Stats struct {
	Skills              int `json:"skills"`
	Jobs                int `json:"jobs"`
	CompaniesResearched int `json:"companies_researched"`
	CoursesFound        int `json:"courses_found"`
}

// CoverLetter is the last generated letter and the company it was written for.
type CoverLetter struct {
	Text    string `json:"text"`
	Company string `json:"company"`
	// Open reports whether the letter modal is showing.
	Open bool `json:"open"`
}

// State is a visitor's application state.
type State struct {
	SessionID      string               `json:"session_id,omitempty"`
	ResumeFilename string               `json:"resume_filename,omitempty"`
	Skills         []string             `json:"skills,omitempty"`
	Jobs           []types.Job          `json:"jobs"`
	Research       *types.Research      `json:"research,omitempty"`
	CoverLetter    *CoverLetter         `json:"cover_letter,omitempty"`
	Analysis       *types.SkillAnalysis `json:"analysis,omitempty"`
	Courses        []types.CourseSet    `json:"courses,omitempty"`
	Stats          Stats                `json:"stats"`
	// Searched is set once a search has completed, so an empty list can be
	// told apart from no search at all.
	Searched bool `json:"searched"`
}

// HasSession reports whether a resume upload has established a session.
func (s State) HasSession() bool {
	return s.SessionID != ""
}

// JobAt returns the job at index i of the current list.
func (s State) JobAt(i int) (types.Job, bool) {
	if i < 0 || i >= len(s.Jobs) {
		return types.Job{}, false
	}
	return s.Jobs[i], true
}

// Clone returns a copy whose slices and pointers do not alias s.
func (s State) Clone() State {
	out := s
	out.Skills = append([]string(nil), s.Skills...)
	out.Jobs = append([]types.Job(nil), s.Jobs...)
	out.Courses = append([]types.CourseSet(nil), s.Courses...)
	if s.Research != nil {
		r := *s.Research
		out.Research = &r
	}
	if s.CoverLetter != nil {
		c := *s.CoverLetter
		out.CoverLetter = &c
	}
	if s.Analysis != nil {
		a := *s.Analysis
		out.Analysis = &a
	}
	return out
}

// Mutation transforms a state into its successor.
type Mutation func(State) State

// Store owns one State and serialises mutations against it.
type Store struct {
	mu      sync.RWMutex
	current State
	commits uint64
}

// NewStore creates a store holding the initial state.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Apply commits m and returns the resulting state. A nil mutation leaves the
// state untouched.
func (s *Store) Apply(m Mutation) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m != nil {
		s.current = m(s.current.Clone())
		s.commits++
	}
	return s.current.Clone()
}

// Commits returns how many mutations have been applied.
func (s *Store) Commits() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}
