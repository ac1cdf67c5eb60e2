package ws

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Sender is one live connection attached to a session. *Client satisfies
// it; tests substitute fakes.
type Sender interface {
	// Role is the connection owner's role, "user" or "admin".
	Role() string
	// Enqueue hands an envelope to the connection without blocking.
	// False means the envelope was dropped (dead or saturated peer).
	Enqueue(v interface{}) bool
}

// Registry is the process-wide map from session id to its live
// connections. It is the only shared mutable state in the chat core and
// the sole source of truth for presence; nothing here is ever persisted.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string][]Sender
	log      zerolog.Logger
}

// NewRegistry creates an empty registry. Construct one at the composition
// root and pass it by handle; there is no package-level instance.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string][]Sender),
		log:      log,
	}
}

// Connect registers a connection under its session bucket. Callers must
// finish the transport handshake first so broadcasts never hit a
// half-open connection.
func (r *Registry) Connect(s Sender, sessionID string) {
	r.mu.Lock()
	r.sessions[sessionID] = append(r.sessions[sessionID], s)
	n := len(r.sessions[sessionID])
	r.mu.Unlock()

	r.log.Debug().Str("session_id", sessionID).Int("connections", n).Msg("connection registered")
}

// Disconnect removes a connection from its bucket. The last connection
// out takes the bucket with it; empty buckets must not accumulate.
func (r *Registry) Disconnect(s Sender, sessionID string) {
	r.mu.Lock()
	bucket := r.sessions[sessionID]
	for i, existing := range bucket {
		if existing == s {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(r.sessions, sessionID)
	} else {
		r.sessions[sessionID] = bucket
	}
	n := len(bucket)
	r.mu.Unlock()

	r.log.Debug().Str("session_id", sessionID).Int("connections", n).Msg("connection removed")
}

// BroadcastToSession delivers an envelope to every connection currently
// in the session, independently. Delivery is best effort: a dead peer is
// skipped and reaped on its own read/write path, never by the broadcaster.
func (r *Registry) BroadcastToSession(sessionID string, v interface{}) {
	r.mu.RLock()
	bucket := r.sessions[sessionID]
	snapshot := make([]Sender, len(bucket))
	copy(snapshot, bucket)
	r.mu.RUnlock()

	for _, s := range snapshot {
		if !s.Enqueue(v) {
			r.log.Debug().Str("session_id", sessionID).Msg("dropped envelope for unresponsive connection")
		}
	}
}

// IsOnline reports whether any connection is registered for the session
// at this instant. Best effort under concurrent disconnects.
func (r *Registry) IsOnline(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[sessionID]) > 0
}

// OnlineRoles returns the distinct roles currently connected to the
// session, sorted for stable status envelopes.
func (r *Registry) OnlineRoles(sessionID string) []string {
	r.mu.RLock()
	seen := make(map[string]struct{})
	for _, s := range r.sessions[sessionID] {
		seen[s.Role()] = struct{}{}
	}
	r.mu.RUnlock()

	roles := make([]string, 0, len(seen))
	for role := range seen {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// ActiveSessions lists every session id with at least one connection.
func (r *Registry) ActiveSessions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}
