// Package feedback provides ephemeral user notices and the busy overlay.
package feedback

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notice.
type Kind string

// Notice kinds
const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSuccess, KindError, KindInfo:
		return true
	}
	return false
}

const (
	// Lifetime is how long a notice stays fully visible.
	Lifetime = 4 * time.Second
	// ExitTransition is how long a notice spends leaving before removal.
	ExitTransition = 300 * time.Millisecond
)

// Phase is the lifecycle position of a notice.
type Phase int

// Notice phases
const (
	PhaseVisible Phase = iota
	PhaseExiting
	PhaseGone
)

// Message is a notice requested by a flow, before it is placed in a tray.
type Message struct {
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
}

// Notice is a message placed in a tray.
type Notice struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// Phase returns the notice's phase at now.
func (n Notice) Phase(now time.Time) Phase {
	age := now.Sub(n.CreatedAt)
	switch {
	case age < Lifetime:
		return PhaseVisible
	case age < Lifetime+ExitTransition:
		return PhaseExiting
	default:
		return PhaseGone
	}
}

// Exiting reports whether the notice is in its exit transition at now.
func (n Notice) Exiting(now time.Time) bool {
	return n.Phase(now) == PhaseExiting
}

// Tray holds the notices of one visitor. Notices expire on their own; reads
// prune anything past its exit transition.
type Tray struct {
	mu      sync.Mutex
	notices []Notice
	now     func() time.Time
}

// NewTray creates an empty tray.
func NewTray() *Tray {
	return &Tray{now: time.Now}
}

// Notify appends a notice. Unknown kinds are treated as info.
func (t *Tray) Notify(text string, kind Kind) Notice {
	if !kind.Valid() {
		kind = KindInfo
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	n := Notice{
		ID:        uuid.NewString(),
		Text:      text,
		Kind:      kind,
		CreatedAt: t.now(),
	}
	t.notices = append(t.notices, n)
	return n
}

// Push appends every message in order.
func (t *Tray) Push(msgs ...Message) {
	for _, m := range msgs {
		t.Notify(m.Text, m.Kind)
	}
}

// Active returns the notices that are visible or exiting, oldest first.
func (t *Tray) Active() []Notice {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	kept := t.notices[:0]
	for _, n := range t.notices {
		if n.Phase(now) != PhaseGone {
			kept = append(kept, n)
		}
	}
	t.notices = kept

	out := make([]Notice, len(kept))
	copy(out, kept)
	return out
}

// Dismiss removes a notice before it expires. Returns false if the id is unknown.
func (t *Tray) Dismiss(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, n := range t.notices {
		if n.ID == id {
			t.notices = append(t.notices[:i], t.notices[i+1:]...)
			return true
		}
	}
	return false
}

// Now returns the tray's clock reading.
func (t *Tray) Now() time.Time {
	return t.now()
}
