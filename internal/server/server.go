// ABOUTME: Server orchestrator wiring stores, services, and the HTTP mux
// ABOUTME: Manages listener setup, graceful shutdown, and error translation

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hydroponics-system/hydro-api-microservice/internal/auth"
	"github.com/hydroponics-system/hydro-api-microservice/internal/config"
	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
	"github.com/hydroponics-system/hydro-api-microservice/internal/hydrosystem"
	"github.com/hydroponics-system/hydro-api-microservice/internal/store"
	"github.com/hydroponics-system/hydro-api-microservice/internal/subscription"
	"github.com/hydroponics-system/hydro-api-microservice/internal/user"
)

// Server orchestrates the hydro-gateway HTTP API and socket endpoint.
type Server struct {
	config      *config.Config
	store       store.Store
	authService *auth.Service
	validator   *auth.Validator
	users       *user.Service
	credentials *user.CredentialsService
	systems     *hydrosystem.Service
	registry    *subscription.Registry
	notifier    *subscription.Notifier
	broadcaster *subscription.SocketBroadcaster
	httpServer  *http.Server
	logger      *slog.Logger
}

// New builds the full service graph over the given store.
func New(cfg *config.Config, st store.Store, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	codec, err := auth.NewJWTCodec([]byte(cfg.Auth.JWTSecret), cfg.Environment, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token codec: %w", err)
	}

	registry := subscription.NewRegistry(logger)
	broadcaster := subscription.NewSocketBroadcaster(logger)
	notifier := subscription.NewNotifier(registry, broadcaster, logger)
	authService := auth.NewService(st, codec, logger)

	s := &Server{
		config:      cfg,
		store:       st,
		authService: authService,
		validator:   auth.NewValidator(codec, logger),
		users:       user.NewService(st, notifier, logger),
		credentials: user.NewCredentialsService(st, authService, logger),
		systems:     hydrosystem.NewService(st, notifier, cfg.Environment, logger),
		registry:    registry,
		notifier:    notifier,
		broadcaster: broadcaster,
		logger:      logger.With("component", "server"),
	}

	s.httpServer = &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: s.routes(),
	}
	return s, nil
}

// routes builds the HTTP mux. Authenticated routes run behind the auth
// middleware; subscription admin routes additionally require DEVELOPER.
func (s *Server) routes() http.Handler {
	authed := auth.Middleware(s.validator)
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("/api/authenticate", s.handleAuthenticate)
	mux.HandleFunc("/api/system/authenticate", s.handleSystemAuthenticate)
	mux.HandleFunc("/api/systems/register", s.handleRegisterSystem)
	mux.HandleFunc("/subscription/socket", s.handleSocket)
	mux.HandleFunc("/health", s.handleHealth)

	// Authenticated
	mux.Handle("/api/reauthenticate", authed(http.HandlerFunc(s.handleReauthenticate)))
	mux.Handle("/api/users", authed(http.HandlerFunc(s.handleUsers)))
	mux.Handle("/api/users/", authed(http.HandlerFunc(s.handleUserSubroutes)))
	mux.Handle("/api/systems/", authed(http.HandlerFunc(s.handleSystemSubroutes)))

	// Subscription admin
	mux.Handle("/subscription/sessions", authed(
		auth.RequireRole(dictionary.WebRoleDeveloper, http.HandlerFunc(s.handleListSessions))))
	mux.Handle("/subscription/notification", authed(
		auth.RequireRole(dictionary.WebRoleDeveloper, http.HandlerFunc(s.handlePushNotification))))

	return mux
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails. Shutdown is graceful with a five second deadline.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Server.HTTPAddr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := s.Shutdown(shutdownCtx)

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// Shutdown stops the HTTP server, closes the broadcaster, and closes the
// store.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	s.broadcaster.Close()
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}

	return errors.Join(errs...)
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondJSON writes a JSON response body with the status code.
func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// respondError translates a service error into its HTTP status.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrMalformedToken),
		errors.Is(err, auth.ErrEnvironmentMismatch),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrInsufficientPermissions):
		auth.WriteError(w, err)
	case errors.Is(err, store.ErrNotFound):
		s.respondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		s.logger.Error("request failed", "error", err)
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// sendBadRequest writes a 400 with the message.
func (s *Server) sendBadRequest(w http.ResponseWriter, message string) {
	s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}
