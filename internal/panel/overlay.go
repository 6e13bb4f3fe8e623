package panel

import "sync"

// Panel names reported in overlay state and metrics.
const (
	PanelLegend       = "legend"
	PanelInstructions = "instructions"
	PanelHistory      = "history"
	PanelClose        = "close"
)

// OverlayState is a copy of the overlay at one point in time.
type OverlayState struct {
	Visible bool   `json:"visible"`
	Panel   string `json:"panel,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// Overlay is the dismissible panel. Closing hides it but keeps the last
// content so a client can tell what was shown.
type Overlay struct {
	mu    sync.Mutex
	state OverlayState
}

// Show replaces the overlay content and makes it visible.
func (o *Overlay) Show(panel, html string) OverlayState {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = OverlayState{Visible: true, Panel: panel, HTML: html}
	return o.state
}

// Close hides the overlay.
func (o *Overlay) Close() OverlayState {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Visible = false
	return o.state
}

// Snapshot returns the current overlay state.
func (o *Overlay) Snapshot() OverlayState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}
