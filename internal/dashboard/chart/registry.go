package chart

import "sync"

// Handle is the single live binding of a panel. Release frees the slot;
// releasing twice is a no-op.
type Handle struct {
	panelID  string
	Series   Series
	registry *Registry
	released bool
}

// Release frees the panel slot if this handle still owns it.
func (h *Handle) Release() {
	if h == nil || h.registry == nil {
		return
	}
	h.registry.release(h)
}

// Released reports whether the handle has been released.
func (h *Handle) Released() bool {
	if h == nil {
		return true
	}
	h.registry.mu.Lock()
	defer h.registry.mu.Unlock()
	return h.released
}

// Registry owns one chart handle per panel id. Rebinding a panel releases
// the prior handle first, so a slot never has two live owners.
type Registry struct {
	mu     sync.Mutex
	panels map[string]*Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{panels: make(map[string]*Handle)}
}

// Bind installs a new handle for the panel, releasing any prior one.
func (r *Registry) Bind(panelID string, s Series) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prior, ok := r.panels[panelID]; ok {
		prior.released = true
	}
	h := &Handle{panelID: panelID, Series: s, registry: r}
	r.panels[panelID] = h
	return h
}

// Get returns the live handle for a panel.
func (r *Registry) Get(panelID string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.panels[panelID]
	return h, ok
}

// Len reports the number of live panels.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.panels)
}

func (r *Registry) release(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.released {
		return
	}
	h.released = true
	if current, ok := r.panels[h.panelID]; ok && current == h {
		delete(r.panels, h.panelID)
	}
}
