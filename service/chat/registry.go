package chat

import (
	"sync"
)

// Registry is the authoritative map of which user owns which open
// connections. A user is online iff their connection set is non-empty; the
// set, not a flat online list, is what makes multi-device correct: closing
// one of two tabs must not mark the user offline.
//
// All mutations and the reads used to compute fan-out sets go through one
// RWMutex, which is the serialization the relay relies on.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]map[string]*Client // user -> conn_id -> conn
	byConn map[string]*Client            // conn_id -> conn
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]map[string]*Client),
		byConn: make(map[string]*Client),
	}
}

// Register binds c to userID and reports whether this took the user from
// offline to online (set size 0 -> 1). The binding is immutable afterwards.
func (r *Registry) Register(c *Client, userID string) (cameOnline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byConn[c.ConnID]; ok && prev.UserID != "" {
		// already registered; re-register is a no-op
		return false
	}
	c.UserID = userID

	m := r.byUser[userID]
	if m == nil {
		m = make(map[string]*Client)
		r.byUser[userID] = m
	}
	cameOnline = len(m) == 0
	m[c.ConnID] = c
	r.byConn[c.ConnID] = c
	return cameOnline
}

// Unregister removes the connection and reports whether its user went
// offline (set size 1 -> 0). Unknown connections are a no-op, not an error.
func (r *Registry) Unregister(connID string) (userID string, wentOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byConn[connID]
	if !ok {
		return "", false
	}
	delete(r.byConn, connID)

	userID = c.UserID
	if userID == "" {
		return "", false
	}
	if m := r.byUser[userID]; m != nil {
		delete(m, connID)
		if len(m) == 0 {
			delete(r.byUser, userID)
			wentOffline = true
		}
	}
	return userID, wentOffline
}

// Track records a connection that has not registered yet, so the disconnect
// path can clean it up uniformly.
func (r *Registry) Track(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byConn[c.ConnID] = c
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// Snapshot returns the set of users currently online.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byUser))
	for user := range r.byUser {
		out = append(out, user)
	}
	return out
}

// ConnsFor returns the fan-out set for one user; empty if offline.
func (r *Registry) ConnsFor(userID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.byUser[userID]
	if len(m) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}

// AllConns returns every open connection, registered or not. Used by the
// presence broadcaster for system-wide status_changed events.
func (r *Registry) AllConns() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.byConn))
	for _, c := range r.byConn {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Get(connID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byConn[connID]
}
