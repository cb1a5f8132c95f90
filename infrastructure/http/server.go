package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/agrisync/agrisync/application/port/inbound"
	"github.com/agrisync/agrisync/infrastructure/http/handler"
	"github.com/agrisync/agrisync/infrastructure/http/middleware"
	"github.com/agrisync/agrisync/infrastructure/http/sse"
	"github.com/agrisync/agrisync/infrastructure/service/logger"
	"github.com/agrisync/agrisync/infrastructure/service/ratelimit"
)

type ServerConfig struct {
	Host             string
	Port             string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	CORSEnabled      bool
	AllowedOrigins   []string
	AllowCredentials bool
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

// Server is the local HTTP API the device UI talks to. Everything it
// serves is local-first; the remote backend is only reached by the sync
// engine and the session manager.
type Server struct {
	server *http.Server
	logger logger.Logger
}

func NewServer(
	config ServerConfig,
	sessions inbound.SessionService,
	registration inbound.RegistrationUseCase,
	trade inbound.TradeUseCase,
	syncService inbound.SyncService,
	streamer *sse.Streamer,
	limiter ratelimit.RateLimitService,
	log logger.Logger,
) *Server {
	authHandler := handler.NewAuthHandler(sessions)
	registrationHandler := handler.NewRegistrationHandler(registration)
	tradeHandler := handler.NewTradeHandler(trade)
	syncHandler := handler.NewSyncHandler(syncService)

	guard := middleware.NewSessionGuard(sessions)
	rateLimit := middleware.NewRateLimitMiddleware(limiter, config.LoginMaxAttempts, config.LoginWindow, log)

	router := mux.NewRouter()
	router.Use(middleware.CorrelationIDMiddleware)
	if config.CORSEnabled {
		router.Use(func(next http.Handler) http.Handler {
			return middleware.CORSMiddleware(next, config.AllowedOrigins, config.AllowCredentials)
		})
	}
	router.Use(recoveryMiddleware(log))
	router.Use(rateLimit.LimitAuth)

	v1 := router.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/auth/login", authHandler.SignIn).Methods(http.MethodPost)
	v1.HandleFunc("/auth/logout", authHandler.SignOut).Methods(http.MethodPost)
	v1.HandleFunc("/auth/refresh", authHandler.Refresh).Methods(http.MethodPost)
	v1.HandleFunc("/auth/session", authHandler.Status).Methods(http.MethodGet)

	v1.HandleFunc("/actors", guard.RequireSession(registrationHandler.RegisterActor)).Methods(http.MethodPost)
	v1.HandleFunc("/actors", guard.RequireSession(registrationHandler.ListActors)).Methods(http.MethodGet)
	v1.HandleFunc("/actors/check-duplicate", guard.RequireSession(registrationHandler.CheckDuplicate)).Methods(http.MethodPost)
	v1.HandleFunc("/actors/{id}", guard.RequireSession(registrationHandler.GetActor)).Methods(http.MethodGet)
	v1.HandleFunc("/actors/{id}/manager", guard.RequireSession(registrationHandler.AssignGroupManager)).Methods(http.MethodPost)

	v1.HandleFunc("/warehouses", guard.RequireSession(registrationHandler.RegisterWarehouse)).Methods(http.MethodPost)

	v1.HandleFunc("/transactions", guard.RequireSession(tradeHandler.RecordTransaction)).Methods(http.MethodPost)
	v1.HandleFunc("/transactions", guard.RequireSession(tradeHandler.ListTransactions)).Methods(http.MethodGet)

	v1.HandleFunc("/sync/status", syncHandler.Status).Methods(http.MethodGet)
	v1.HandleFunc("/sync/trigger", syncHandler.Trigger).Methods(http.MethodPost)
	v1.HandleFunc("/sync/events", streamer.HandleSSE).Methods(http.MethodGet)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet, http.MethodHead)

	return &Server{
		server: &http.Server{
			Addr:         config.Host + ":" + config.Port,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: log,
	}
}

func (s *Server) Start() error {
	s.logger.Info(context.Background(), "Starting HTTP server", map[string]interface{}{
		"addr": s.server.Addr,
	})
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}

func recoveryMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error(r.Context(), "Panic in HTTP handler", nil, map[string]interface{}{
						"panic": rec,
						"path":  r.URL.Path,
					})
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"status":false,"message":"Internal server error"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
