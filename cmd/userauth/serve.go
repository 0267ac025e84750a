package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	grpcctx "github.com/dtroode/userauth/internal/api/grpc/context"
	grpcrouter "github.com/dtroode/userauth/internal/api/grpc/router"
	grpcserver "github.com/dtroode/userauth/internal/api/grpc/server"
	restctx "github.com/dtroode/userauth/internal/api/rest/context"
	"github.com/dtroode/userauth/internal/api/rest/handler"
	restrouter "github.com/dtroode/userauth/internal/api/rest/router"
	restserver "github.com/dtroode/userauth/internal/api/rest/server"
	"github.com/dtroode/userauth/internal/config"
	"github.com/dtroode/userauth/internal/logger"
	"github.com/dtroode/userauth/internal/model"
	"github.com/dtroode/userauth/internal/password"
	"github.com/dtroode/userauth/internal/repository/postgres"
	"github.com/dtroode/userauth/internal/repository/sqlite"
	"github.com/dtroode/userauth/internal/server"
	"github.com/dtroode/userauth/internal/service"
	"github.com/dtroode/userauth/internal/token"
	"github.com/dtroode/userauth/internal/validation"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC servers",
		Long: `Start the HTTP and gRPC servers. Both stop gracefully on SIGINT or SIGTERM.
JWT_ACCESS_SECRET, JWT_ACCESS_TTL, JWT_REFRESH_SECRET, JWT_REFRESH_TTL and
PASSWORD_HASH_COST are required.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	return serve(ctx, cfg, log)
}

// userStore is a store opened for the configured driver.
type userStore struct {
	users  model.UserStore
	pinger handler.Pinger
	close  func() error
}

func openStore(ctx context.Context, cfg config.Database) (*userStore, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &userStore{users: sqlite.NewUserRepository(s), pinger: s, close: s.Close}, nil
	default:
		conn, err := postgres.NewConnection(ctx, cfg.DSN, cfg.ConnectRetries)
		if err != nil {
			return nil, err
		}
		return &userStore{users: postgres.NewUserRepository(conn), pinger: conn, close: conn.Close}, nil
	}
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		log.Fatal("failed to initialize storage", "error", err, "driver", cfg.Database.Driver)
	}
	defer func() { _ = store.close() }()

	hasher, err := password.NewBcrypt(cfg.Password.HashCost)
	if err != nil {
		return err
	}
	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshSecret: cfg.JWT.RefreshSecret,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	logCredentialSettings(log, hasher, issuer)

	authService, err := service.NewAuth(store.users, hasher, issuer, log)
	if err != nil {
		return err
	}
	validator, err := validation.New(model.RegisterParams{}, model.LoginParams{})
	if err != nil {
		return fmt.Errorf("failed to compile request schemas: %w", err)
	}

	grpcSrv := grpcserver.NewGRPCServer(
		grpcrouter.New(authService, validator, issuer.Access(), issuer.Refresh(), grpcctx.NewManager(), log.With("transport", "grpc")).Register(),
		":"+cfg.GRPC.Port,
	)
	httpSrv := restserver.NewHTTPServer(
		restrouter.New(authService, validator, issuer.Access(), issuer.Refresh(), restctx.NewManager(), store.pinger, log.With("transport", "http")).Register(),
		":"+cfg.HTTP.Port,
		cfg.HTTP.ReadTimeout,
		cfg.HTTP.WriteTimeout,
	)

	return runServers(ctx, log, server.NewSecurityLayer(cfg.TLS), cfg.HTTP.ShutdownTimeout, grpcSrv, httpSrv)
}

func logCredentialSettings(log *logger.Logger, hasher *password.Bcrypt, issuer *token.Issuer) {
	log.Info("Password hasher configured", "cost", hasher.Cost())
	for _, signer := range []*token.Signer{issuer.Access(), issuer.Refresh()} {
		log.Info("Token signer configured", "kind", signer.Kind(), "ttl", signer.TTL())
	}
}

// runServers starts every server and blocks until ctx ends or one of them fails,
// then stops them all.
func runServers(ctx context.Context, log *logger.Logger, sl model.SecurityLayer, shutdownTimeout time.Duration, servers ...model.Server) error {
	errCh := make(chan error, len(servers))

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			log.Info("Starting server", "address", s.Address())
			if err := s.Start(sl); err != nil {
				errCh <- fmt.Errorf("server on %s: %w", s.Address(), err)
			}
		}(s)
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("received interruption signal, shutting down")
	case runErr = <-errCh:
		log.Error("server failed, shutting down", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			log.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}

	wg.Wait()
	log.Info("shutdown complete")
	return runErr
}
