package flow

import "sync"

// AllowListGate authorizes a single configured identity and tracks the
// paused flag toggled by the pause/start commands. An empty allow list
// admits everyone, which keeps local development friction-free.
type AllowListGate struct {
	paused    map[string]struct{}
	allowedID string
	mu        sync.Mutex
}

// NewAllowListGate creates a gate admitting only allowedID (or everyone when
// allowedID is empty).
func NewAllowListGate(allowedID string) *AllowListGate {
	return &AllowListGate{
		allowedID: allowedID,
		paused:    make(map[string]struct{}),
	}
}

// Authorized reports whether the sender may use the bot.
func (g *AllowListGate) Authorized(externalID string) bool {
	return g.allowedID == "" || g.allowedID == externalID
}

// Paused reports whether the sender has muted the bot.
func (g *AllowListGate) Paused(externalID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.paused[externalID]
	return ok
}

// Pause mutes the bot for the sender until Resume.
func (g *AllowListGate) Pause(externalID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused[externalID] = struct{}{}
}

// Resume unmutes the bot for the sender.
func (g *AllowListGate) Resume(externalID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.paused, externalID)
}
