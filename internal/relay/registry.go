package relay

import (
	"sort"
	"sync"

	"github.com/personifai/backend/internal/metrics"
)

// Registry tracks live sessions so they can be listed and counted.
type Registry struct {
	metrics *metrics.Metrics

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{
		metrics:  m,
		sessions: make(map[string]*Session),
	}
}

// Add registers a freshly accepted session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.metrics.SessionsTotal.Inc()
	r.metrics.ActiveSessions.Inc()
}

// Remove drops a session after its client disconnects. Removing an
// unknown ID is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		r.metrics.ActiveSessions.Dec()
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshots returns a stable-ordered view of every live session.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.RLock()
	out := make([]Snapshot, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.Snapshot())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}
