// ABOUTME: HTTP handlers for authentication, users, and hydro systems
// ABOUTME: Old-style mux routing with method checks and path suffix dispatch

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/hydroponics-system/hydro-api-microservice/internal/auth"
	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
)

// AuthenticateRequest is the JSON request body for POST /api/authenticate.
type AuthenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SystemAuthenticateRequest is the JSON request body for
// POST /api/system/authenticate.
type SystemAuthenticateRequest struct {
	UUID     string `json:"uuid"`
	Password string `json:"password"`
}

// RegisterSystemRequest is the JSON request body for POST /api/systems/register.
type RegisterSystemRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// UpdatePasswordRequest is the JSON request body for password updates.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword"`
}

// LinkRequest is the JSON request body for POST /api/systems/link.
type LinkRequest struct {
	UUID string `json:"uuid"`
}

// AcknowledgeLinkRequest is the JSON request body for
// POST /api/systems/link/acknowledge.
type AcknowledgeLinkRequest struct {
	UserID int `json:"userId"`
}

// ReportFailureRequest is the JSON request body for POST /api/systems/failure.
type ReportFailureRequest struct {
	Message string `json:"message"`
}

// handleAuthenticate handles POST /api/authenticate.
func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req AuthenticateRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.sendBadRequest(w, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		s.sendBadRequest(w, "email and password are required")
		return
	}

	token, err := s.authService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, token)
}

// handleReauthenticate handles POST /api/reauthenticate. Runs behind the
// auth middleware; the principal comes from the request context.
func (s *Server) handleReauthenticate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	token, err := s.authService.Reauthenticate(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, token)
}

// handleSystemAuthenticate handles POST /api/system/authenticate.
func (s *Server) handleSystemAuthenticate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req SystemAuthenticateRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.sendBadRequest(w, "invalid JSON body")
		return
	}
	if req.UUID == "" || req.Password == "" {
		s.sendBadRequest(w, "uuid and password are required")
		return
	}

	token, err := s.authService.AuthenticateSystem(r.Context(), req.UUID, req.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, token)
}

// handleUsers handles GET /api/users (list) and POST /api/users (create,
// ADMIN only).
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := s.users.List(r.Context())
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, users)

	case http.MethodPost:
		if err := auth.Authorize(auth.FromContext(r.Context()), dictionary.WebRoleAdmin); err != nil {
			s.respondError(w, err)
			return
		}

		var newUser dictionary.User
		if err := decodeJSON(r.Body, &newUser); err != nil {
			s.sendBadRequest(w, "invalid JSON body")
			return
		}
		if newUser.Email == "" {
			s.sendBadRequest(w, "email is required")
			return
		}

		created, err := s.users.Create(r.Context(), &newUser)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusCreated, created)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleUserSubroutes dispatches /api/users/{...} paths:
//
//	GET /api/users/current
//	PUT /api/users/password            own password, re-verified
//	POST /api/users/password/reset     forced reset flow
//	GET /api/users/{id}
//	PUT /api/users/{id}/password       owner or higher rank
func (s *Server) handleUserSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")

	switch {
	case rest == "current":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleCurrentUser(w, r)

	case rest == "password":
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleUpdateOwnPassword(w, r)

	case rest == "password/reset":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleResetPassword(w, r)

	case strings.HasSuffix(rest, "/password"):
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleUpdatePasswordByID(w, r, strings.TrimSuffix(rest, "/password"))

	default:
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleGetUser(w, r, rest)
	}
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	current, err := s.users.Current(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, current)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, idText string) {
	id, err := strconv.Atoi(idText)
	if err != nil {
		s.sendBadRequest(w, "user id must be numeric")
		return
	}

	found, err := s.users.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, found)
}

func (s *Server) handleUpdateOwnPassword(w http.ResponseWriter, r *http.Request) {
	var req UpdatePasswordRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.sendBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.credentials.UpdateOwnPassword(r.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdatePasswordByID(w http.ResponseWriter, r *http.Request, idText string) {
	id, err := strconv.Atoi(idText)
	if err != nil {
		s.sendBadRequest(w, "user id must be numeric")
		return
	}

	var req UpdatePasswordRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.sendBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.credentials.UpdatePasswordByID(r.Context(), id, req.NewPassword); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req UpdatePasswordRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.sendBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.credentials.ResetPassword(r.Context(), req.NewPassword); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRegisterSystem handles POST /api/systems/register. Unauthenticated:
// devices onboard before they have credentials.
func (s *Server) handleRegisterSystem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req RegisterSystemRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.sendBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Password == "" {
		s.sendBadRequest(w, "name and password are required")
		return
	}

	system, err := s.systems.Register(r.Context(), req.Name, req.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, system)
}

// handleSystemSubroutes dispatches /api/systems/{...} paths:
//
//	POST /api/systems/link               user requests link code
//	POST /api/systems/link/acknowledge   system confirms the user
//	POST /api/systems/failure            system reports a fault
//	GET  /api/systems/uuid/{uuid}
//	GET  /api/systems/{id}
//	DELETE /api/systems/{id}             owner or ADMIN
func (s *Server) handleSystemSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/systems/")

	switch {
	case rest == "link":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleRequestLink(w, r)

	case rest == "link/acknowledge":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleAcknowledgeLink(w, r)

	case rest == "failure":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleReportFailure(w, r)

	case strings.HasPrefix(rest, "uuid/"):
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleGetSystemByUUID(w, r, strings.TrimPrefix(rest, "uuid/"))

	default:
		s.handleSystemByID(w, r, rest)
	}
}

func (s *Server) handleSystemByID(w http.ResponseWriter, r *http.Request, idText string) {
	id, err := strconv.Atoi(idText)
	if err != nil {
		s.sendBadRequest(w, "system id must be numeric")
		return
	}

	switch r.Method {
	case http.MethodGet:
		system, err := s.systems.Get(r.Context(), id)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, system)

	case http.MethodDelete:
		if err := s.systems.Unregister(r.Context(), id); err != nil {
			s.respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGetSystemByUUID(w http.ResponseWriter, r *http.Request, uuid string) {
	system, err := s.systems.GetByUUID(r.Context(), uuid)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, system)
}

func (s *Server) handleRequestLink(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.sendBadRequest(w, "invalid JSON body")
		return
	}
	if req.UUID == "" {
		s.sendBadRequest(w, "uuid is required")
		return
	}

	code, err := s.systems.RequestLink(r.Context(), req.UUID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"code": code})
}

func (s *Server) handleAcknowledgeLink(w http.ResponseWriter, r *http.Request) {
	var req AcknowledgeLinkRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.sendBadRequest(w, "invalid JSON body")
		return
	}
	if req.UserID == 0 {
		s.sendBadRequest(w, "userId is required")
		return
	}

	if err := s.systems.AcknowledgeLink(r.Context(), req.UserID); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReportFailure(w http.ResponseWriter, r *http.Request) {
	var req ReportFailureRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.sendBadRequest(w, "invalid JSON body")
		return
	}
	if req.Message == "" {
		s.sendBadRequest(w, "message is required")
		return
	}

	if err := s.systems.ReportFailure(r.Context(), req.Message); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeJSON decodes a JSON request body.
func decodeJSON(r io.Reader, dst any) error {
	return json.NewDecoder(r).Decode(dst)
}
