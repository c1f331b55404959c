package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/samber/do/v2"

	analyticsinadapter "studytrack/internal/modules/analytics/adapter/in"
	analyticsin "studytrack/internal/modules/analytics/port/in"
	focusinadapter "studytrack/internal/modules/focus/adapter/in"
	focusin "studytrack/internal/modules/focus/port/in"
	subjectinadapter "studytrack/internal/modules/subject/adapter/in"
	subjectin "studytrack/internal/modules/subject/port/in"
	"studytrack/internal/platform/config"
	"studytrack/internal/platform/logging"
	uiapp "studytrack/internal/ui/app"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	DataDir string
	// LogOutput defaults to stderr.
	LogOutput io.Writer
	// Environ overrides the process environment, mostly for tests.
	Environ map[string]string
}

type App struct {
	Config       config.Config
	Logger       *slog.Logger
	SubjectCLI   subjectinadapter.CLIHandler
	FocusCLI     focusinadapter.CLIHandler
	AnalyticsCLI analyticsinadapter.CLIHandler

	subjects  subjectin.Usecase
	focus     focusin.Usecase
	analytics analyticsin.Usecase
	injector  *do.RootScope
}

func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.DataDir, opts.Environ)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger := logging.New(out, cfg.LogLevel, cfg.IsDevelopment())

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	registerPlatform(injector)
	registerSubject(injector)
	registerFocus(injector)
	registerAnalytics(injector)
	registerHTTP(injector)

	app := &App{Config: cfg, Logger: logger, injector: injector}
	if app.subjects, err = do.Invoke[subjectin.Usecase](injector); err != nil {
		app.Close()
		return nil, fmt.Errorf("resolve subject module: %w", err)
	}
	if app.focus, err = do.Invoke[focusin.Usecase](injector); err != nil {
		app.Close()
		return nil, fmt.Errorf("resolve focus module: %w", err)
	}
	if app.analytics, err = do.Invoke[analyticsin.Usecase](injector); err != nil {
		app.Close()
		return nil, fmt.Errorf("resolve analytics module: %w", err)
	}
	app.SubjectCLI = subjectinadapter.NewCLIHandler(app.subjects)
	app.FocusCLI = focusinadapter.NewCLIHandler(app.focus)
	app.AnalyticsCLI = analyticsinadapter.NewCLIHandler(app.analytics)
	return app, nil
}

// Close shuts down every resolved service in reverse dependency order.
func (a *App) Close() {
	if report := a.injector.Shutdown(); report != nil && !report.Succeed {
		a.Logger.Warn("shutdown incomplete", "error", report.Error())
	}
}

func (a *App) RunTUI() error {
	if _, err := a.focus.Restore(context.Background()); err != nil {
		a.Logger.Warn("restore before tui", "error", err)
	}
	model := uiapp.NewModel(a.focus, a.subjects, a.analytics, a.Config.PollInterval)
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// Serve exposes the HTTP API and runs the focus loop until ctx is done.
func (a *App) Serve(ctx context.Context, addr string) error {
	router, err := do.Invoke[*gin.Engine](a.injector)
	if err != nil {
		return fmt.Errorf("resolve router: %w", err)
	}
	if addr == "" {
		addr = a.Config.HTTPAddr
	}
	if _, err := a.focus.Restore(ctx); err != nil {
		a.Logger.Warn("restore before serve", "error", err)
	}

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	loopDone := make(chan error, 1)
	go func() { loopDone <- a.focus.Run(loopCtx) }()

	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info("http api listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var listenErr error
	select {
	case <-ctx.Done():
	case listenErr = <-serveErr:
	}
	stopLoop()
	<-loopDone
	if listenErr != nil {
		return fmt.Errorf("listen %s: %w", addr, listenErr)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warn("http shutdown", "error", err)
	}
	return nil
}
