package feedback

import "sync"

// DefaultBusyText is shown when Show is called with an empty text.
const DefaultBusyText = "Processing..."

// Overlay is the blocking busy indicator. It is a single flag: overlapping
// Show calls are not counted, and the first Hide clears it.
type Overlay struct {
	mu     sync.RWMutex
	active bool
	text   string
}

// Show raises the overlay with a status text.
func (o *Overlay) Show(text string) {
	if text == "" {
		text = DefaultBusyText
	}
	o.mu.Lock()
	o.active = true
	o.text = text
	o.mu.Unlock()
}

// Hide clears the overlay.
func (o *Overlay) Hide() {
	o.mu.Lock()
	o.active = false
	o.mu.Unlock()
}

// State returns whether the overlay is raised and its last text.
func (o *Overlay) State() (bool, string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.active, o.text
}
