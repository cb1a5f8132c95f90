package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrisync/agrisync/application/usecase"
	"github.com/agrisync/agrisync/domain/entity"
	"github.com/agrisync/agrisync/infrastructure/config"
	httpserver "github.com/agrisync/agrisync/infrastructure/http"
	"github.com/agrisync/agrisync/infrastructure/http/sse"
	"github.com/agrisync/agrisync/infrastructure/persistence/sqlite"
	"github.com/agrisync/agrisync/infrastructure/service/authapi"
	"github.com/agrisync/agrisync/infrastructure/service/connectivity"
	"github.com/agrisync/agrisync/infrastructure/service/logger"
	"github.com/agrisync/agrisync/infrastructure/service/password"
	"github.com/agrisync/agrisync/infrastructure/service/ratelimit"
	"github.com/agrisync/agrisync/infrastructure/service/remote"
	"github.com/agrisync/agrisync/infrastructure/service/session"
	"github.com/agrisync/agrisync/infrastructure/service/vault"
	syncengine "github.com/agrisync/agrisync/infrastructure/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "agrisync",
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info(ctx, "Starting agrisync", map[string]interface{}{
		"env": cfg.Environment,
	})

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "Failed to open local store", err, nil)
		os.Exit(1)
	}
	defer store.Close()

	actorRepo := sqlite.NewActorRepository(store)
	orgRepo := sqlite.NewOrganizationRepository(store)
	queueRepo := sqlite.NewPendingWriteRepository(store)
	syncStateRepo := sqlite.NewSyncStateRepository(store)

	probeURL := cfg.ConnectivityProbeURL
	if probeURL == "" {
		probeURL = cfg.RemoteSyncBaseURL
	}
	monitor := connectivity.NewMonitor(probeURL, cfg.ConnectivityProbeInterval, log)

	remoteClient := remote.NewClient(cfg.RemoteSyncBaseURL, log)
	engine := syncengine.NewEngine(queueRepo, remoteClient, syncStateRepo, monitor, log,
		syncengine.WithInterval(cfg.SyncInterval),
		syncengine.WithRetryWarnThreshold(cfg.SyncRetryWarnThreshold),
	)

	credentialVault, err := vault.NewCredentialVault(store, cfg.VaultSecret)
	if err != nil {
		log.Error(ctx, "Failed to initialize vault", err, nil)
		os.Exit(1)
	}

	authClient := authapi.NewClient(cfg.AuthBaseURL, cfg.AuthAPIKey, log)
	sessions := session.NewManager(
		authClient,
		credentialVault,
		credentialVault,
		credentialVault,
		password.NewBcryptHasher(),
		log,
		session.WithCheckInterval(cfg.SessionCheckInterval),
		session.WithAttentionThreshold(cfg.SessionRefreshThreshold),
	)
	if err := sessions.Initialize(ctx); err != nil {
		log.Error(ctx, "Failed to restore session", err, nil)
	}

	registrationUC := usecase.NewRegistrationUseCase(actorRepo, orgRepo, engine, log)
	tradeUC := usecase.NewTradeUseCase(actorRepo, orgRepo, engine, log)

	streamer := sse.NewStreamer(log)
	streamer.Start(ctx, engine, store.Notifier(), []string{
		entity.TableActors,
		entity.TableWarehouses,
		entity.TableOrganizationTransactions,
		"pending_writes",
	})

	monitor.Start(ctx)
	engine.Start(ctx)
	sessions.Start(ctx)

	// Session refresh only runs while the device is online.
	go func() {
		online := monitor.Subscribe()
		sessions.SetOnline(monitor.Online())
		for {
			select {
			case <-ctx.Done():
				return
			case isOnline := <-online:
				sessions.SetOnline(isOnline)
			}
		}
	}()

	limiter := ratelimit.NewRateLimitService(true)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:        cfg.ServerHost,
			Port:        cfg.ServerPort,
			ReadTimeout: 15 * time.Second,
			// No write timeout: the event stream holds its connection open.
			WriteTimeout:     0,
			IdleTimeout:      60 * time.Second,
			CORSEnabled:      cfg.CORSEnabled,
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowCredentials: cfg.CORSAllowCredentials,
			LoginMaxAttempts: cfg.LoginMaxAttempts,
			LoginWindow:      cfg.LoginWindow,
		},
		sessions,
		registrationUC,
		tradeUC,
		engine,
		streamer,
		limiter,
		log,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Error(ctx, "HTTP server stopped", err, nil)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "Graceful shutdown failed", err, nil)
	}

	engine.Stop()
	sessions.Stop()
	monitor.Stop()
}
