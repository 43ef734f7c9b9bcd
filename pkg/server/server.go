package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/hopebridge/shiftcover/internal/config"
	"github.com/hopebridge/shiftcover/pkg/db"
	"github.com/hopebridge/shiftcover/pkg/notify"
)

const sessionName = "shiftcover_session"

// Stores is the full storage surface the HTTP layer needs. *postgres.DB
// satisfies it.
type Stores interface {
	db.RequestStore
	db.ScheduleStore
	db.UserStore
	db.AvailabilityStore
	db.NotificationStore
}

// Server is the HTTP boundary: session auth in front of the service layer
type Server struct {
	cfg      *config.Config
	store    Stores
	hub      *notify.Hub
	sessions *sessions.CookieStore
	logger   *zap.Logger
	closures []*rrule.RRule
}

// New builds a server. sessionKey signs the session cookies.
func New(cfg *config.Config, store Stores, hub *notify.Hub, logger *zap.Logger, sessionKey string) (*Server, error) {
	closures, err := cfg.ClosureRRules()
	if err != nil {
		return nil, err
	}

	cookieStore := sessions.NewCookieStore([]byte(sessionKey))
	cookieStore.Options.Path = "/"
	cookieStore.Options.HttpOnly = true
	cookieStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		cfg:      cfg,
		store:    store,
		hub:      hub,
		sessions: cookieStore,
		logger:   logger,
		closures: closures,
	}, nil
}

// Router wires every route
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/logout", s.handleLogout).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireAuth)

	api.HandleFunc("/me", s.handleMe).Methods("GET")
	api.HandleFunc("/shift-instances", s.handleShiftInstances).Methods("GET")

	api.HandleFunc("/requests", s.handleCreateRequest).Methods("POST")
	api.HandleFunc("/requests", s.handleListOpenRequests).Methods("GET")
	api.HandleFunc("/requests/{id}", s.handleGetRequest).Methods("GET")
	api.HandleFunc("/requests/{id}/matches", s.handleMatches).Methods("GET")
	api.HandleFunc("/requests/{id}/volunteer", s.handleVolunteer).Methods("POST")
	api.HandleFunc("/requests/{id}/withdraw", s.handleWithdrawVolunteer).Methods("POST")
	api.HandleFunc("/requests/{id}/accept", s.handleAcceptVolunteer).Methods("POST")
	api.HandleFunc("/requests/{id}/nominate", s.handleNominate).Methods("POST")
	api.HandleFunc("/requests/{id}/confirm", s.handleConfirmNomination).Methods("POST")
	api.HandleFunc("/requests/{id}/decline", s.handleDeclineNomination).Methods("POST")
	api.HandleFunc("/requests/{id}/withdraw-accepted", s.handleWithdrawAccepted).Methods("POST")
	api.HandleFunc("/requests/{id}/reopen", s.handleReopen).Methods("POST")
	api.HandleFunc("/requests/{id}/cancel", s.handleCancel).Methods("POST")
	api.HandleFunc("/requests/{id}/trade-offers", s.handleCreateTradeOffer).Methods("POST")
	api.HandleFunc("/requests/{id}/trade-offers", s.handleListTradeOffers).Methods("GET")
	api.HandleFunc("/requests/{id}/select-option", s.handleSelectTradeOption).Methods("POST")

	api.HandleFunc("/availability", s.handleSetAvailability).Methods("POST")

	api.HandleFunc("/notifications", s.handleNotifications).Methods("GET")
	api.HandleFunc("/notifications/stream", s.handleNotificationStream).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", s.handleMarkNotificationRead).Methods("POST")

	return r
}

// Start runs the server until ctx is cancelled
func (s *Server) Start(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
