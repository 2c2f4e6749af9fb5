// Package server wires the taskkeeper components together and runs the
// public HTTP API, the metrics listener and the gRPC health service until a
// termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/taskkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/taskkeeper/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	registry *prometheus.Registry
	handler  http.Handler
}

// NewApp validates the configuration, opens the store (running migrations
// for PostgreSQL) and builds the services and router.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, rm, err := openStore(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	codec := auth.NewCodec(c)
	sessions := services.NewSessionService(db, rm, c, codec, auth.NewBcryptHasher(c.BcryptCost), logger, collector)
	tasks := services.NewTaskService(db, rm, logger)

	handler := httpapi.NewRouter(&httpapi.RouterDeps{
		Sessions:          sessions,
		Tasks:             tasks,
		Logger:            logger.With("module", "http"),
		Metrics:           collector,
		CORSAllowedOrigin: c.CORSAllowedOrigin,
	})

	return &App{config: c, logger: logger, db: db, registry: registry, handler: handler}, nil
}

func openStore(ctx context.Context, c *config.Config, logger logging.Logger) (*sql.DB, repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == config.MemoryDSN {
		logger.Warn(ctx, "using in-memory store, data is lost on exit")
		return nil, repomanager.NewInMemoryRepositoryManager(), nil
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	return db, rm, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer("http_server", app.config.EndpointAddrHTTP, app.handler, app.logger, app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer("metrics_server", app.config.EndpointAddrMetrics, metrics.SetupMetricsRoute(app.registry), app.logger, app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	var pinger gs.Pinger
	if app.db != nil {
		pinger = app.db
	}

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, pinger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or one of the listeners fails, then
// waits for all of them to stop and closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	for _, start := range []func(context.Context, context.CancelFunc){
		app.startHTTPServer,
		app.startMetricsServer,
		app.startGRPCServer,
	} {
		start := start
		wg.Add(1)
		go func() {
			defer wg.Done()
			start(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}

	app.logger.Info(ctx, "App stopped")
}
