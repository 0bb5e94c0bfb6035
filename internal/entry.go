// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/dropnote/internal/api"
	"github.com/starford/dropnote/internal/autostart"
	"github.com/starford/dropnote/internal/client"
	"github.com/starford/dropnote/internal/loop"
	"github.com/starford/dropnote/internal/mcpserver"
	"github.com/starford/dropnote/internal/notes"
	"github.com/starford/dropnote/internal/panel"
	"github.com/starford/dropnote/internal/platform/headless"
	"github.com/starford/dropnote/internal/session"
	"github.com/starford/dropnote/internal/settings"
	"github.com/starford/dropnote/internal/sse"
	"github.com/starford/dropnote/internal/storage"
	"github.com/starford/dropnote/internal/tui"
)

// daemonPingTimeout bounds the check for a running daemon.
const daemonPingTimeout = 500 * time.Millisecond

// core is what every entry point needs: storage, the loop and the model.
type core struct {
	cfg      *Config
	logger   *slog.Logger
	store    *storage.FS
	settings *settings.Store
	loop     *loop.Loop
	model    *notes.Model
}

func setup(opts []Option) (*application, *core, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	root, err := configRoot(cfg.Data.ConfigDir)
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.NewFS(root, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	lp := loop.New(0, logger)
	model := notes.New(store, lp,
		notes.WithSaveDelay(cfg.Editor.SaveDebounce),
		notes.WithLogger(logger))

	st := settings.NewStore(store, store, logger)
	st.AddRelocationHook(model)

	logger.Info("Configuration loaded",
		slog.String("config_root", root),
		slog.String("data_directory", store.DataDirectory()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	return app, &core{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		settings: st,
		loop:     lp,
		model:    model,
	}, nil
}

func configRoot(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "dropnote"), nil
}

// Run starts the background app: the panel state machine over headless
// collaborators, the settings watcher and the control API.
func Run(ctx context.Context, opts ...Option) error {
	_, c, err := setup(opts)
	if err != nil {
		return err
	}
	cfg, logger := c.cfg, c.logger

	exe, err := os.Executable()
	if err != nil {
		exe = "dropnote"
	}
	agent, err := autostart.New("", exe)
	if err != nil {
		return fmt.Errorf("init autostart: %w", err)
	}

	controller := panel.New(panel.Deps{
		Poster:     c.loop,
		Icon:       headless.Icon{Rect: panel.Rect{W: 24, H: 24}},
		Window:     headless.NewWindow(cfg.Panel.Animation, logger),
		Hotkeys:    headless.NewHotkeys(logger),
		SettingsUI: headless.SettingsSurface{Logger: logger},
		Launch:     agent,
		Settings:   c.settings,
		Notes:      c.model,
		Logger:     logger,
	}, panel.Size{W: cfg.Panel.Width, H: cfg.Panel.Height}, cfg.Panel.Gap)

	// SSE broker.
	broker := sse.NewBroker(sse.DefaultEditThrottle)
	defer broker.Close()

	// The loop is not running yet, so this goroutine still owns the model.
	c.model.Load()
	controller.Start()
	sess := session.New(c.loop, c.model,
		session.WithPanel(controller),
		session.WithSettings(c.settings),
		session.WithPublisher(broker),
		session.WithLogger(logger))

	// The loop outlives gCtx so shutdown work can still run on it.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = c.loop.Run(loopCtx)
	}()

	g, gCtx := errgroup.WithContext(ctx)

	// Pick up external edits of settings.json.
	g.Go(func() error {
		return settings.Watch(gCtx, c.store.SettingsPath(), logger, func() {
			c.loop.Post(c.settings.Reload)
		})
	})

	var httpServer *http.Server
	if cfg.Control.Enabled {
		httpServer = &http.Server{
			Addr:              cfg.Control.Address(),
			Handler:           newRouter(sess, broker, cfg),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Start HTTP server.
		g.Go(func() error {
			logger.Info("Starting control API", slog.String("address", cfg.Control.Address()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if httpServer != nil {
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
		}

		// Land pending edits and release the hotkey before the loop stops.
		if err := c.loop.Do(shutdownCtx, func() error {
			controller.Stop()
			c.model.Close()
			return nil
		}); err != nil {
			logger.Error("final flush failed", slog.String("error", err.Error()))
		}
		stopLoop()
		<-loopDone

		// Unblock the settings watcher when shutdown came from a signal.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("dropnote stopped")
	return nil
}

// errShutdown cancels the group after an orderly shutdown.
var errShutdown = errors.New("shutdown")

func newRouter(sess *session.Session, broker *sse.Broker, cfg *Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/", api.NewRouter(sess, cfg.Control.AuthEnabled(), cfg.Control.Token, broker))
	return r
}

// runStandalone runs fn with a loop serving a panel-less session, then
// flushes the model and stops the loop.
func runStandalone(ctx context.Context, c *core, fn func(*session.Session) error) error {
	c.model.Load()
	sess := session.New(c.loop, c.model,
		session.WithSettings(c.settings),
		session.WithLogger(c.logger))

	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = c.loop.Run(loopCtx)
	}()
	defer func() {
		if err := c.loop.Do(context.Background(), func() error {
			c.model.Close()
			return nil
		}); err != nil {
			c.logger.Error("final flush failed", slog.String("error", err.Error()))
		}
		stopLoop()
		<-loopDone
	}()

	return fn(sess)
}

// connectDaemon returns a client for the daemon's control API when one is
// listening at the configured address and accepts our token.
func connectDaemon(ctx context.Context, c *core) (*client.Client, bool) {
	if !c.cfg.Control.Enabled {
		return nil, false
	}
	addr := c.cfg.Control.Address()
	cl := client.New("http://"+addr, c.cfg.Control.Token)

	pingCtx, cancel := context.WithTimeout(ctx, daemonPingTimeout)
	defer cancel()
	if err := cl.Ping(pingCtx); err != nil {
		c.logger.Debug("No daemon reachable, running standalone",
			slog.String("address", addr),
			slog.String("error", err.Error()))
		return nil, false
	}
	c.logger.Info("Using running daemon", slog.String("address", addr))
	return cl, true
}

// RunMCP serves the MCP tools over stdio until the client disconnects. A
// running daemon is used when reachable so both see the same notes.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, c, err := setup(opts)
	if err != nil {
		return err
	}
	if cl, ok := connectDaemon(ctx, c); ok {
		c.logger.Info("Starting MCP server on stdio")
		return mcpserver.New(cl, app.version).ServeStdio()
	}
	return runStandalone(ctx, c, func(sess *session.Session) error {
		c.logger.Info("Starting MCP server on stdio")
		return mcpserver.New(sess, app.version).ServeStdio()
	})
}

// RunEditor opens the terminal editor on the current note, through the
// daemon when one is reachable.
func RunEditor(ctx context.Context, opts ...Option) error {
	_, c, err := setup(opts)
	if err != nil {
		return err
	}
	if cl, ok := connectDaemon(ctx, c); ok {
		return tui.Run(ctx, cl, c.logger)
	}
	return runStandalone(ctx, c, func(sess *session.Session) error {
		return tui.Run(ctx, sess, c.logger)
	})
}
