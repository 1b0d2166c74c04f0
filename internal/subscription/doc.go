// ABOUTME: Package doc for subscription - realtime sessions and notification dispatch
// ABOUTME: Documents the registry, dispatcher targets, and the socket broadcaster

// Package subscription tracks live socket sessions and dispatches
// notifications to them.
//
// # Sessions
//
// Every connected socket holds one Session, created at handshake time and
// removed on disconnect. A session binds a generated uuid handle to the
// authenticated principal of the token presented during the handshake. The
// Registry is the process-local concurrent map over those sessions; there is
// no cross-process replication, a session lives and dies with the gateway
// that accepted it.
//
// # Dispatch
//
// The Notifier resolves an addressing target against the registry and
// publishes a NotificationEnvelope to the matched sessions:
//
//   - Broadcast: every connected session, on the general topic path
//   - ToUser: the first session belonging to the user id
//   - ToRole: every session whose principal holds exactly that role
//   - ToSystem: the session of the system with that uuid
//   - ToSession: one session by handle
//
// A target that matches no session is logged at Warn and dropped without an
// error; the caller's operation must not fail because nobody is listening.
// Transport failures are returned to the caller. The envelope's Destination
// and Created fields are stamped immediately before publish; session-scoped
// destinations carry a "-{handle}" suffix.
//
// # Transport
//
// SocketBroadcaster is the in-process transport. Each SSE connection
// subscribes with its session handle and receives envelopes over a buffered
// channel; slow subscribers have events dropped rather than blocking
// dispatch.
package subscription
