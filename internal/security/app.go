// Package security wires and runs the authentication service: HTTP API,
// gRPC health endpoint and PostgreSQL user storage.
package security

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/aitooling/internal/auth"
	"github.com/dmitrijs2005/aitooling/internal/grpcx"
	"github.com/dmitrijs2005/aitooling/internal/httpx"
	"github.com/dmitrijs2005/aitooling/internal/logging"
	"github.com/dmitrijs2005/aitooling/internal/security/api"
	"github.com/dmitrijs2005/aitooling/internal/security/config"
	"github.com/dmitrijs2005/aitooling/internal/security/repositories/repomanager"
	"github.com/dmitrijs2005/aitooling/internal/security/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const serviceName = "security"

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpx.Server
	grpcServer *grpcx.HealthServer
}

// HasherParams converts the configured Argon2 cost into auth.Argon2Params.
func HasherParams(c *config.Config) (auth.Argon2Params, error) {
	if c.Argon2Parallelism == 0 || c.Argon2Parallelism > math.MaxUint8 {
		return auth.Argon2Params{}, fmt.Errorf("argon2 parallelism must be in 1..%d, got %d", math.MaxUint8, c.Argon2Parallelism)
	}
	if c.Argon2Memory == 0 || c.Argon2Iterations == 0 {
		return auth.Argon2Params{}, fmt.Errorf("argon2 memory and iterations must be positive")
	}
	p := auth.DefaultArgon2Params()
	p.Memory = c.Argon2Memory
	p.Iterations = c.Argon2Iterations
	p.Parallelism = uint8(c.Argon2Parallelism)
	return p, nil
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

	params, err := HasherParams(c)
	if err != nil {
		return nil, err
	}

	db, rm, err := OpenStore(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := services.NewAuthService(db, rm,
		auth.NewArgon2Hasher(params),
		auth.NewTokenIssuer(c.JWTSecret, c.JWTIssuer, c.JWTAudience),
		logger)

	router := api.NewRouter(api.RouterDeps{
		Handler:  api.NewHandler(svc, reg, logger),
		Health:   httpx.NewHealthHandler(serviceName, db),
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
