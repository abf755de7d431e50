package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"licitia/internal/config"
	"licitia/internal/controller"
	"licitia/internal/engine"
	"licitia/internal/logger"
	"licitia/internal/repository"
	"licitia/internal/router"
	"licitia/internal/service"

	"go.uber.org/zap"
)

type App struct {
	repo       *repository.Repository
	engine     *engine.Engine
	service    *service.Service
	controller *controller.Controller
	stopSig    chan os.Signal
	cfg        *config.Config
	log        *zap.Logger

	Done chan struct{}
}

type option func(*App)

func WithConfig(cfg *config.Config) option {
	return func(app *App) {
		app.cfg = cfg
	}
}

func WithLogger(log *zap.Logger) option {
	return func(app *App) {
		app.log = log
	}
}

func NewApp(opts ...option) (*App, error) {
	var err error

	app := &App{
		stopSig: make(chan os.Signal, 2),
		Done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.cfg == nil {
		cfg, err := config.NewConfig()
		if err != nil {
			return nil, err
		}
		app.cfg = cfg
	}

	if app.log == nil {
		app.log, err = logger.New(app.cfg.LogJSON, app.cfg.LogDebug)
		if err != nil {
			return nil, err
		}
	}

	app.engine, err = engine.New(engineConfig(app.cfg.EngineConfig))
	if err != nil {
		return nil, err
	}

	app.repo, err = repository.NewRepository(nil, &app.cfg.PostgresConfig)
	if err != nil {
		return nil, err
	}

	app.service = service.NewService(app.repo, app.engine, app.cfg.EngineConfig, app.log)
	app.controller = controller.NewController(app.service, app.log)

	return app, nil
}

// engineConfig overlays the process configuration knobs on the built-in
// vocabulary defaults.
func engineConfig(cfg config.EngineConfig) engine.Config {
	ec := engine.DefaultConfig()
	ec.RelevanceThreshold = cfg.RelevanceThreshold
	ec.ContractTypePrior = cfg.ContractTypePrior
	ec.NegativePenalty = cfg.NegativePenalty
	ec.AmountLogBound = cfg.AmountLogBound
	ec.Weights = engine.Weights{
		Keyword:  cfg.KeywordWeight,
		Amount:   cfg.AmountWeight,
		Entity:   cfg.EntityWeight,
		Category: cfg.CategoryWeight,
	}
	return ec
}

func (app *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		signal.Notify(app.stopSig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		sig := <-app.stopSig
		app.log.Info("received signal", zap.String("signal", sig.String()))
		cancel()
	}()

	server := http.Server{
		Addr:         app.cfg.ServerAddress,
		Handler:      router.NewRouter(app.controller),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			app.log.Error("http server error", zap.Error(err))
		}
	}()

	app.log.Info("server started, listening for connections", zap.String("address", app.cfg.ServerAddress))
	<-ctx.Done()

	timeout, tcancel := context.WithTimeout(context.Background(), time.Second*10)
	defer tcancel()
	app.log.Info("shutting down http server")
	server.Shutdown(timeout)

	app.log.Info("closing repository")
	err := app.repo.Close()
	if err != nil {
		app.log.Error("repository closing error", zap.Error(err))
	}

	close(app.Done)
	app.log.Info("exiting app")
	app.log.Sync()
}
