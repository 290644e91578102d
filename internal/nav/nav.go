// Package nav implements single-page view switching by section id.
package nav

import (
	"sync"
	"time"
)

// Page ids
const (
	PageHome     = "home"
	PageJobs     = "jobs"
	PageSkills   = "skills"
	PageResearch = "research"
)

// Link is a navigation entry.
type Link struct {
	ID     string
	Label  string
	Active bool
}

// DefaultPages lists the pages of the assistant in menu order.
func DefaultPages() []Link {
	return []Link{
		{ID: PageHome, Label: "Home"},
		{ID: PageJobs, Label: "Jobs"},
		{ID: PageSkills, Label: "Skill Gap"},
		{ID: PageResearch, Label: "Company Research"},
	}
}

// Directive is a navigation request emitted by a flow.
type Directive struct {
	Page string `json:"page"`
	// Delay postpones the switch; zero means immediately.
	Delay time.Duration `json:"delay,omitempty"`
	// OnlyIfInactive skips the switch when Page is already active.
	OnlyIfInactive bool `json:"only_if_inactive,omitempty"`
}

// Navigator tracks the active page. The first page is active initially.
type Navigator struct {
	mu      sync.Mutex
	pages   []Link
	active  string
	pending *Directive
}

// New creates a navigator over pages, or DefaultPages when none are given.
func New(pages ...Link) *Navigator {
	if len(pages) == 0 {
		pages = DefaultPages()
	}
	return &Navigator{pages: pages, active: pages[0].ID}
}

// Navigate deactivates every page and activates id. Unknown ids are a no-op
// and return false.
func (n *Navigator) Navigate(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.navigateLocked(id)
}

func (n *Navigator) navigateLocked(id string) bool {
	if !n.knownLocked(id) {
		return false
	}
	n.active = id
	return true
}

func (n *Navigator) knownLocked(id string) bool {
	for _, p := range n.pages {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Active returns the active page id.
func (n *Navigator) Active() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

// IsActive reports whether id is the active page.
func (n *Navigator) IsActive(id string) bool {
	return n.Active() == id
}

// Apply carries out a directive. Immediate directives switch now; delayed ones
// are held until TakePending. Returns whether the directive was accepted.
func (n *Navigator) Apply(d Directive) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.knownLocked(d.Page) {
		return false
	}
	if d.OnlyIfInactive && n.active == d.Page {
		return false
	}
	if d.Delay > 0 {
		pending := d
		n.pending = &pending
		return true
	}
	return n.navigateLocked(d.Page)
}

// TakePending returns and clears the delayed directive, if any.
func (n *Navigator) TakePending() *Directive {
	n.mu.Lock()
	defer n.mu.Unlock()
	d := n.pending
	n.pending = nil
	return d
}

// Links returns the pages with the active flag set.
func (n *Navigator) Links() []Link {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Link, len(n.pages))
	for i, p := range n.pages {
		p.Active = p.ID == n.active
		out[i] = p
	}
	return out
}
