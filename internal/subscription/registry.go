// ABOUTME: Concurrent registry of live socket sessions keyed by handle
// ABOUTME: Lookup by user id, role, or system uuid for notification targeting

package subscription

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hydroponics-system/hydro-api-microservice/internal/auth"
	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
)

// Session is one live socket connection: its generated handle and the
// principal authenticated during the handshake.
type Session struct {
	Handle    string
	Principal auth.Principal
	Created   time.Time
}

// UserID returns the session's user id, or 0 for system sessions.
func (s Session) UserID() int {
	if user, ok := s.Principal.(auth.UserPrincipal); ok {
		return user.User.ID
	}
	return 0
}

// SystemUUID returns the session's system uuid, or "" for user sessions.
func (s Session) SystemUUID() string {
	if system, ok := s.Principal.(auth.SystemPrincipal); ok {
		return system.System.UUID
	}
	return ""
}

// Registry coordinates all live sessions. Sessions are process-local and
// never replicated; a registry entry lives exactly as long as its socket.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
	logger   *slog.Logger
}

// NewRegistry creates an empty session registry. Pass nil logger for the
// default.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sessions: make(map[string]Session),
		logger:   logger.With("component", "registry"),
	}
}

// Register adds a session at handshake time. Re-registering a handle
// replaces the previous entry.
func (r *Registry) Register(session Session) {
	if session.Created.IsZero() {
		session.Created = time.Now()
	}

	r.mu.Lock()
	r.sessions[session.Handle] = session
	total := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info("session connected",
		"handle", session.Handle,
		"kind", session.Principal.Kind(),
		"total_sessions", total,
	)
}

// Remove deletes a session on disconnect. Removing an unknown handle is a
// no-op so disconnect paths can always call it.
func (r *Registry) Remove(handle string) {
	r.mu.Lock()
	session, exists := r.sessions[handle]
	if exists {
		delete(r.sessions, handle)
	}
	total := len(r.sessions)
	r.mu.Unlock()

	if exists {
		r.logger.Info("session disconnected",
			"handle", handle,
			"kind", session.Principal.Kind(),
			"total_sessions", total,
		)
	}
}

// FindByUserID returns the first session belonging to the user id.
func (r *Registry) FindByUserID(userID int) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, session := range r.sessions {
		if session.UserID() == userID && userID != 0 {
			return session, true
		}
	}
	return Session{}, false
}

// FindAllByRole returns every session whose principal holds exactly the role.
func (r *Registry) FindAllByRole(role dictionary.WebRole) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []Session
	for _, session := range r.sessions {
		if session.Principal.Role() == role {
			matches = append(matches, session)
		}
	}
	return matches
}

// FindBySystemUUID returns the session of the hydro system with the uuid.
func (r *Registry) FindBySystemUUID(uuid string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, session := range r.sessions {
		if uuid != "" && session.SystemUUID() == uuid {
			return session, true
		}
	}
	return Session{}, false
}

// Get returns the session with the handle.
func (r *Registry) Get(handle string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[handle]
	return session, ok
}

// AllSessions returns a snapshot copy of every live session.
func (r *Registry) AllSessions() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}
