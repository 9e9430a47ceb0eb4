package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/activation"
	"golang.org/x/sync/errgroup"

	gatewayconfig "github.com/giantswarm/mcp-gateway/internal/config"
	"github.com/giantswarm/mcp-gateway/pkg/logging"
)

// shutdownGrace bounds how long an in-flight HTTP request may finish
// after the listener stops accepting new connections.
const shutdownGrace = 10 * time.Second

// Application is the fully-bootstrapped gateway process: configuration
// already loaded and every component already wired. NewApplication
// performs the bootstrap phase; Run performs the execution phase and
// blocks until ctx is cancelled or a component fails.
type Application struct {
	cfg      *gatewayconfig.GatewayConfig
	services *Services
}

// NewApplication loads configuration from opts and wires every gateway
// component. It performs no network I/O beyond opening the configured
// database/sql connection; the HTTP listener itself only binds in Run.
func NewApplication(ctx context.Context, opts Options) (*Application, error) {
	level := logging.LevelInfo
	if opts.Debug {
		level = logging.LevelDebug
	}
	logging.Init(level, nil)

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := gatewayconfig.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if opts.ListenAddrOverride != "" {
		cfg.Server.ListenAddr = opts.ListenAddrOverride
	}
	if !opts.Debug {
		switch strings.ToLower(cfg.Logging.Level) {
		case "debug":
			logging.Init(logging.LevelDebug, nil)
		case "warn":
			logging.Init(logging.LevelWarn, nil)
		case "error":
			logging.Init(logging.LevelError, nil)
		}
	}

	services, err := InitializeServices(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize services: %w", err)
	}

	watcher, err := gatewayconfig.NewWatcher()
	if err != nil {
		services.Close()
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	if err := watcher.Watch(configPath, func() {
		logging.Info("Bootstrap", "config file changed on disk; restart the gateway to apply it")
	}); err != nil {
		logging.Warn("Bootstrap", "could not watch config file %s for changes: %v", configPath, err)
	}
	if cfg.Database.Mode == gatewayconfig.PersistenceFile {
		if err := watcher.Watch(cfg.Snapshot.Path, func() {
			logging.Info("Bootstrap", "registry snapshot changed externally, reloading")
			if err := services.Registry.Load(context.Background()); err != nil {
				logging.Error("Bootstrap", err, "failed to reload registry snapshot")
			}
		}); err != nil {
			logging.Warn("Bootstrap", "could not watch snapshot file %s for changes: %v", cfg.Snapshot.Path, err)
		}
	}
	services.Watcher = watcher

	return &Application{cfg: cfg, services: services}, nil
}

// Run starts the HTTP listener, the health-check loop, and the config
// watcher, and blocks until ctx is cancelled or any of them fails. On
// return, every goroutine has been given up to shutdownGrace to stop.
func (a *Application) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	listener, err := a.listen()
	if err != nil {
		return fmt.Errorf("bind listener: %w", err)
	}

	server := &http.Server{Handler: a.services.HTTP.Handler()}

	group.Go(func() error {
		logging.Info("Bootstrap", "gateway listening on %s", a.cfg.Server.ListenAddr)
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		a.services.Checker.Run(groupCtx)
		return nil
	})

	a.services.Watcher.Start(groupCtx)

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Bootstrap", "http server shutdown did not complete cleanly: %v", err)
		}
		return nil
	})

	err = group.Wait()
	a.services.Watcher.Stop()
	a.services.Close()
	return err
}

// listen binds the configured address directly, unless a systemd socket
// was passed to the process (LISTEN_FDS), in which case the inherited
// listener is reused instead of calling net.Listen.
func (a *Application) listen() (net.Listener, error) {
	listeners, err := activation.Listeners()
	if err != nil {
		return nil, fmt.Errorf("inspect systemd listeners: %w", err)
	}
	if len(listeners) > 0 {
		logging.Info("Bootstrap", "using systemd socket activation, ignoring configured listen_addr")
		return listeners[0], nil
	}
	return net.Listen("tcp", a.cfg.Server.ListenAddr)
}
