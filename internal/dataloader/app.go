// Package dataloader wires and runs the CSV ingestion service: HTTP API,
// gRPC health endpoint, PostgreSQL storage and the optional S3 archive.
package dataloader

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/aitooling/internal/auth"
	"github.com/dmitrijs2005/aitooling/internal/dataloader/api"
	"github.com/dmitrijs2005/aitooling/internal/dataloader/archive"
	"github.com/dmitrijs2005/aitooling/internal/dataloader/config"
	"github.com/dmitrijs2005/aitooling/internal/dataloader/repositories/repomanager"
	"github.com/dmitrijs2005/aitooling/internal/dataloader/services"
	"github.com/dmitrijs2005/aitooling/internal/grpcx"
	"github.com/dmitrijs2005/aitooling/internal/httpx"
	"github.com/dmitrijs2005/aitooling/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const serviceName = "dataloader"

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpx.Server
	grpcServer *grpcx.HealthServer
}

// OpenStore opens the database and applies migrations.
func OpenStore(ctx context.Context, dsn string) (*sql.DB, repomanager.RepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations error: %w", err)
	}
	return db, rm, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogLevel, c.LogFormat).With("service", serviceName)

	db, rm, err := OpenStore(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	archiver, err := newArchiver(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := services.NewIngestionService(db, rm, logger)

	router := api.NewRouter(api.RouterDeps{
		Handler:  api.NewHandler(svc, archiver, c.MaxUploadSize, reg, logger),
		Health:   httpx.NewHealthHandler(serviceName, db),
		Tokens:   auth.NewTokenVerifier(c.JWTSecret, c.JWTIssuer, c.JWTAudience),
		Metrics:  httpx.NewMetrics(reg, serviceName),
		Gatherer: reg,
		Logger:   logger,
	})

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		httpServer: httpx.NewServer(c.EndpointAddrHTTP, router, c.ShutdownTimeout, logger),
		grpcServer: grpcx.NewHealthServer(c.EndpointAddrGRPC, serviceName, logger),
	}, nil
}

func newArchiver(ctx context.Context, c *config.Config) (archive.Archiver, error) {
	if c.S3Bucket == "" {
		return archive.Noop{}, nil
	}
	a, err := archive.NewS3Archiver(ctx, archive.S3Config{
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("archive init error: %w", err)
	}
	return a, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP and gRPC until a signal arrives or either server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.grpcServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
