package checkout

import "sync"

// PendingNewLine is the pending key used when adding a product that has no
// cart line yet, so the line ID is not known until the backend assigns it.
// The NUL prefix keeps it out of the space of backend-assigned line IDs.
const PendingNewLine = "\x00new-line"

// PendingSet tracks cart line IDs with an outstanding mutation. An ID stays
// in the set for the entire request span and is removed exactly once,
// success or failure; while present, further mutations for that line are
// rejected.
type PendingSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewPendingSet() *PendingSet {
	return &PendingSet{ids: make(map[string]struct{})}
}

// Add marks id pending. It returns false when id is already pending, in
// which case the caller must not dispatch a second request.
func (p *PendingSet) Add(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.ids[id]; ok {
		return false
	}
	p.ids[id] = struct{}{}
	return true
}

// Remove clears the pending mark. Safe to call for an absent id.
func (p *PendingSet) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.ids, id)
}

// Has reports whether id has a mutation in flight.
func (p *PendingSet) Has(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.ids[id]
	return ok
}

// IDs returns the currently pending ids, for rendering disabled controls.
func (p *PendingSet) IDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.ids))
	for id := range p.ids {
		out = append(out, id)
	}
	return out
}
