package container

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"olynk/adapters/api"
	"olynk/adapters/memory"
	"olynk/adapters/postgres"
	"olynk/adapters/postgres/migrations"
	"olynk/app"
	"olynk/internal"
	"olynk/internal/config"
	"olynk/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure; nil when reports are kept in memory
	DB *sqlx.DB

	Reports  ports.ReportRepository
	Analysis *app.AnalysisService
	Handler  *api.Handler
}

// New creates a container. Without a database URL reports live in memory.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
	}

	if cfg.Database.URL != "" {
		if err := c.initDatabase(ctx); err != nil {
			return nil, err
		}
	} else {
		c.Logger.Info("DATABASE_URL not set, keeping reports in memory")
		c.Reports = memory.NewBoundedReportRepository(cfg.Server.MaxStoredReports)
	}

	svc, err := app.NewAnalysisService(cfg.Engine, c.Reports, cfg.Server.MaxRows, c.Logger)
	if err != nil {
		c.Shutdown(ctx)
		return nil, err
	}
	c.Analysis = svc
	c.Handler = api.NewHandler(svc, cfg.Server.MaxUploadBytes, c.Logger)
	return c, nil
}

// initDatabase connects, applies migrations and wires the Postgres store
func (c *Container) initDatabase(ctx context.Context) error {
	db, err := postgres.Connect(ctx, c.Config.Database.URL)
	if err != nil {
		return err
	}
	ran, err := migrations.NewMigrator(db).Up(ctx)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, name := range ran {
		c.Logger.Info("applied migration %s", name)
	}
	c.DB = db
	c.Reports = postgres.NewReportRepository(db)
	return nil
}

// Server builds the HTTP server for the API
func (c *Container) Server() *http.Server {
	gin.SetMode(c.Config.Server.GinMode)
	return &http.Server{
		Addr:              ":" + c.Config.Server.Port,
		Handler:           api.NewRouter(c.Handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Serve runs the API until ctx is cancelled, then drains connections
func (c *Container) Serve(ctx context.Context) error {
	srv := c.Server()
	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	c.Logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
