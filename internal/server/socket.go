// ABOUTME: SSE socket handshake and subscription admin endpoints
// ABOUTME: Query-string token validation, session registration, envelope streaming

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
	"github.com/hydroponics-system/hydro-api-microservice/internal/subscription"
)

// SessionResponse is the JSON shape for GET /subscription/sessions.
type SessionResponse struct {
	Handle  string    `json:"handle"`
	Kind    string    `json:"kind"`
	UserID  int       `json:"userId,omitempty"`
	UUID    string    `json:"uuid,omitempty"`
	Role    string    `json:"role"`
	Created time.Time `json:"created"`
}

// PushNotificationRequest is the JSON request body for
// POST /subscription/notification. Exactly one of userId or role narrows the
// target; neither means broadcast.
type PushNotificationRequest struct {
	Body   json.RawMessage                 `json:"body"`
	Type   subscription.BodyType           `json:"type"`
	Action subscription.NotificationAction `json:"action"`
	UserID int                             `json:"userId,omitempty"`
	Role   string                          `json:"role,omitempty"`
}

// handleSocket handles GET /subscription/socket?token=... The token is
// validated on the query-string transport (no prefix), a session handle is
// registered for the principal, and envelopes stream as SSE events until
// the client disconnects.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	principal, err := s.validator.ValidateInbound(r.URL.Query().Get("token"), false)
	if err != nil {
		s.respondError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("streaming not supported")
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
		return
	}

	handle := uuid.New().String()
	s.registry.Register(subscription.Session{
		Handle:    handle,
		Principal: principal,
	})
	defer s.registry.Remove(handle)

	envelopes := s.broadcaster.Subscribe(r.Context(), handle)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	s.writeSSEEvent(w, "connected", map[string]string{"handle": handle})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case envelope, open := <-envelopes:
			if !open {
				return
			}
			s.writeSSEEvent(w, "notification", envelope)
			flusher.Flush()
		}
	}
}

// handleListSessions handles GET /subscription/sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sessions := s.registry.AllSessions()
	response := make([]SessionResponse, len(sessions))
	for i, session := range sessions {
		response[i] = SessionResponse{
			Handle:  session.Handle,
			Kind:    string(session.Principal.Kind()),
			UserID:  session.UserID(),
			UUID:    session.SystemUUID(),
			Role:    string(session.Principal.Role()),
			Created: session.Created,
		}
	}
	s.respondJSON(w, http.StatusOK, response)
}

// handlePushNotification handles POST /subscription/notification.
func (s *Server) handlePushNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req PushNotificationRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.sendBadRequest(w, "invalid JSON body")
		return
	}

	body, err := decodeNotificationBody(req.Type, req.Body)
	if err != nil {
		s.sendBadRequest(w, err.Error())
		return
	}

	action := req.Action
	if action == "" {
		action = subscription.ActionCreate
	}

	target, err := resolveTarget(req)
	if err != nil {
		s.sendBadRequest(w, err.Error())
		return
	}

	if err := s.notifier.Send(body, action, target); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// resolveTarget picks the addressing target from the request fields.
func resolveTarget(req PushNotificationRequest) (subscription.Target, error) {
	if req.UserID != 0 && req.Role != "" {
		return subscription.Target{}, fmt.Errorf("userId and role are mutually exclusive")
	}
	if req.UserID != 0 {
		return subscription.ToUser(req.UserID), nil
	}
	if req.Role != "" {
		role, err := dictionary.ParseWebRole(req.Role)
		if err != nil {
			return subscription.Target{}, err
		}
		return subscription.ToRole(role), nil
	}
	return subscription.Broadcast(), nil
}

// decodeNotificationBody decodes the raw body into its concrete kind.
func decodeNotificationBody(kind subscription.BodyType, raw json.RawMessage) (subscription.Body, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("body is required")
	}

	switch kind {
	case subscription.BodyTypeUser:
		var body subscription.UserNotification
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("invalid user notification body")
		}
		body.Kind = kind
		return body, nil

	case subscription.BodyTypeSystemFailure:
		var body subscription.SystemFailureNotification
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("invalid system failure body")
		}
		body.Kind = kind
		return body, nil

	case subscription.BodyTypeSystemLink:
		var body subscription.SystemLinkNotification
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("invalid system link body")
		}
		body.Kind = kind
		return body, nil

	default:
		return nil, fmt.Errorf("unknown notification type %q", kind)
	}
}

// writeSSEEvent writes a single SSE event to the response writer.
func (s *Server) writeSSEEvent(w http.ResponseWriter, event string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("failed to marshal SSE data", "error", err)
		return
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", dataJSON)
}
