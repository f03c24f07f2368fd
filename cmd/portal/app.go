package main

import (
	"fmt"

	"go.uber.org/zap"

	"mergington-portal/internal/api"
	"mergington-portal/internal/common/config"
	"mergington-portal/internal/common/logger"
	"mergington-portal/internal/common/observability"
	"mergington-portal/internal/controller"
	"mergington-portal/internal/ui"
)

// app is everything one command needs, wired in dependency order.
type app struct {
	config        *config.Config
	zap           *zap.Logger
	log           logger.Logger
	observability *observability.Observability
	client        *api.Client
	doc           *ui.Document
	controller    *controller.Controller
}

func newApp(flags *rootFlags) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFromFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	if flags.baseURL != "" {
		cfg.API.BaseURL = flags.baseURL
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	zapLog.Debug("Configuration loaded", zap.String("config", cfg.String()))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		return nil, fmt.Errorf("observability setup failed: %w", err)
	}

	return buildApp(cfg, zapLog, obs)
}

// buildApp wires an app from a loaded config. A nil obs records nothing.
// buildApp owns obs from here on.
func buildApp(cfg *config.Config, zapLog *zap.Logger, obs *observability.Observability) (*app, error) {
	log := logger.NewZapAdapter(zapLog)

	client, err := api.NewClient(api.ClientOptions{
		Config: api.ConfigFromAppConfig(cfg),
		Logger: log,
	})
	if err != nil {
		obs.Shutdown()
		return nil, err
	}

	doc := ui.NewDocument()
	ctrl, err := controller.New(controller.Options{
		API:           client,
		Elements:      controller.ElementsFromDocument(doc),
		AppConfig:     cfg,
		Logger:        log,
		Observability: obs,
	})
	if err != nil {
		obs.Shutdown()
		return nil, err
	}

	return &app{
		config:        cfg,
		zap:           zapLog,
		log:           log,
		observability: obs,
		client:        client,
		doc:           doc,
		controller:    ctrl,
	}, nil
}

func (a *app) Close() {
	a.observability.Shutdown()
	_ = a.zap.Sync()
}
