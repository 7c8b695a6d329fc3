package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"tedep/internal/config"
	"tedep/internal/reconciler"
	"tedep/internal/server"
	"tedep/internal/tfws"
	"tedep/pkg/logging"
)

// Application is a configured tedep process: the composed controllers and
// the HTTP server exposing their health and metrics.
//
// Example usage:
//
//	cfg := app.NewConfig("infra", "", false)
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	return application.Run(ctx, cluster)
type Application struct {
	config   *Config
	settings config.Config
	app      *App
	server   *server.Server
}

// metricsProvider is implemented by every *reconciler.Controller.
type metricsProvider interface {
	Metrics(namespace string) *reconciler.Metrics
}

// NewApplication initializes logging, loads the configuration and builds the
// enabled controllers. Command line values in cfg take precedence over the
// configuration file.
func NewApplication(cfg *Config) (*Application, error) {
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}
	var logOutput io.Writer = os.Stdout
	if cfg.LogOutput != nil {
		logOutput = cfg.LogOutput
	}
	logging.InitForCLI(appLogLevel, cfg.LogFormat, logOutput)

	var settings config.Config
	if cfg.Settings != nil {
		settings = *cfg.Settings
	} else {
		loaded, err := config.LoadConfig(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration from %s", cfg.ConfigPath)
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		settings = loaded
	}

	cfg.applyOverrides(&settings)
	if settings.Namespace == "" {
		return nil, errors.New("namespace is required")
	}
	if err := settings.Validate(); err != nil {
		logging.Error("Bootstrap", err, "Invalid configuration")
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Settings = &settings

	composed := New()
	var controllerMetrics []*reconciler.Metrics
	for _, c := range controllers(settings) {
		if !settings.IsControllerEnabled(c.Name()) {
			logging.Info("Bootstrap", "Controller %s is disabled", c.Name())
			continue
		}
		composed = composed.Register(settings.Namespace, c)
		if mp, ok := c.(metricsProvider); ok {
			controllerMetrics = append(controllerMetrics, mp.Metrics(settings.Namespace))
		}
	}

	logging.Info("Bootstrap", "Configured %d controller(s) in namespace %s", composed.Len(), settings.Namespace)

	return &Application{
		config:   cfg,
		settings: settings,
		app:      composed,
		server:   server.New(settings.HTTPAddress, cfg.Version, controllerMetrics...),
	}, nil
}

// controllers lists every controller tedep knows about.
func controllers(settings config.Config) []Controller {
	return []Controller{
		tfws.NewController(settings),
	}
}

// Settings returns the effective configuration.
func (a *Application) Settings() config.Config {
	return a.settings
}

// Server returns the HTTP server of the application.
func (a *Application) Server() *server.Server {
	return a.server
}

// Run starts the controllers against cluster and serves HTTP until ctx is
// done. A startup failure of any controller is returned as *StartupError
// before the HTTP server is started. Once running, whichever of the
// controllers and the HTTP server stops first stops the other.
func (a *Application) Run(ctx context.Context, cluster reconciler.Cluster) error {
	task, err := a.app.Run(ctx, cluster)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		err := task(gctx)
		logging.Info("Bootstrap", "Controllers exited")
		return err
	})
	g.Go(func() error {
		defer cancel()
		err := a.server.Run(gctx)
		logging.Info("Bootstrap", "HTTP server exited")
		return err
	})
	return g.Wait()
}
