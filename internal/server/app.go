// Package server assembles the credential service: it opens the database,
// applies migrations, builds the services and runs the gRPC server next to
// the reset token cleanup scheduler until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/notesauth/internal/logging"
	"github.com/dmitrijs2005/notesauth/internal/server/auth"
	"github.com/dmitrijs2005/notesauth/internal/server/config"
	"github.com/dmitrijs2005/notesauth/internal/server/mailer"
	"github.com/dmitrijs2005/notesauth/internal/server/models"
	"github.com/dmitrijs2005/notesauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notesauth/internal/server/services"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/notesauth/internal/server/grpc"
)

const meterName = "github.com/dmitrijs2005/notesauth/internal/server"

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	server  *gs.GRPCServer
	cleanup *services.TokenCleanupService
}

// NewApp wires every component from c. The database handle is owned by the
// returned App and released by Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := build(ctx, c, db, repomanager.NewPostgresRepositoryManager(), logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, c *config.Config, db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) (*App, error) {

	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	issuer, err := auth.NewSessionTokenIssuer(c.SecretKey, c.SessionTokenTTL)
	if err != nil {
		return nil, err
	}

	resolver, err := services.NewIdentityResolver(ctx, db, m, models.RoleName(c.DefaultRole), c.StoreTimeout, logger)
	if err != nil {
		return nil, err
	}

	federated := services.NewFederatedLoginService(resolver, issuer, c.FrontendURL, logger)
	tokens := services.NewResetTokenService(db, m, c.StoreTimeout, logger)
	passwords := services.NewPasswordService(db, m, tokens, issuer, mailer.NewLogMailer(logger),
		c.FrontendURL, c.ResetTokenTTL, c.StoreTimeout, logger)

	cleanup, err := services.NewTokenCleanupService(tokens, c.CleanupInterval, otel.GetMeterProvider().Meter(meterName), logger)
	if err != nil {
		return nil, err
	}

	srv := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, federated, passwords, cleanup, issuer, c.IntegrationKey)

	return &App{config: c, logger: logger, db: db, server: srv, cleanup: cleanup}, nil
}

// Run serves until SIGINT, SIGTERM or SIGQUIT, or until either the server or
// the scheduler fails.
func (app *App) Run(ctx context.Context) error {

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Warn(ctx, "db close", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.server.Run(ctx)
	})
	g.Go(func() error {
		return app.cleanup.Run(ctx)
	})

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}
