package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"PapersDigest/internal/analysis"
	"PapersDigest/internal/config"
	"PapersDigest/internal/domain"
	"PapersDigest/internal/httpapi"
	"PapersDigest/internal/infrastructure/googlechat"
	"PapersDigest/internal/infrastructure/llm"
	"PapersDigest/internal/infrastructure/parser"
	"PapersDigest/internal/infrastructure/scheduler"
	"PapersDigest/internal/logging"
	"PapersDigest/internal/ports"
	"PapersDigest/internal/scanner"
	"PapersDigest/internal/usecase"
	"PapersDigest/pkg/kst"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	cron      *scheduler.CronScheduler
	scheduler *usecase.Scheduler
	handler   *httpapi.Handler
	now       func() time.Time
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	client := &http.Client{Timeout: cfg.Source.Timeout}
	registry := scanner.NewRegistry()
	registry.Register(parser.NewHFAPIScanner(client, cfg.Source.ListingURL, cfg.Source.UserAgent))
	registry.Register(parser.NewHFPageScanner(client, cfg.Source.PageURL, cfg.Source.UserAgent))

	source, err := parser.NewStrategySource(registry, cfg.Source.Scanner, cfg.Source.Options, baseLogger.With("component", "source"))
	if err != nil {
		return nil, err
	}

	if err := cfg.AI.Validate(); err != nil {
		return nil, err
	}

	completer, err := newCompleter(cfg.AI)
	switch {
	case errors.Is(err, domain.ErrNoCredential):
		baseLogger.Info("no model credential configured, running in basic mode")
	case err != nil:
		return nil, err
	}

	engine := analysis.NewEngine(completer, cfg.AnalysisOptions(), baseLogger.With("component", "analysis"))

	var notifier ports.Notifier
	if url := cfg.Notifications.GoogleChat.WebhookURL; url != "" {
		notifier = googlechat.NewNotifier(url, cfg.Notifications.GoogleChat.Timeout, baseLogger.With("component", "googlechat"))
	} else {
		baseLogger.Info("no webhook configured, results will only be logged")
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:   source,
		Engine:   engine,
		Notifier: notifier,
		Mode:     usecase.Mode(cfg.AI.Mode),
		Card:     cfg.CardSettings(),
		Logger:   baseLogger.With("component", "pipeline"),
	})

	cron := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		pipeline:  pipeline,
		cron:      cron,
		scheduler: usecase.NewScheduler(cron, pipeline, baseLogger.With("component", "scheduler")),
		handler:   httpapi.NewHandler(pipeline, baseLogger.With("component", "http"), nil),
		now:       time.Now,
	}, nil
}

// Run performs a single pipeline execution. Empty date means yesterday in UTC+9.
func (a *Application) Run(ctx context.Context, date string) error {
	if date == "" {
		date = kst.Yesterday(a.now())
	} else if _, err := kst.ParseDate(date); err != nil {
		return err
	}

	return a.pipeline.ProcessDay(ctx, date)
}

// Serve starts the timer trigger and the HTTP surface until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "next_run", a.cron.Next())

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.scheduler.Stop(stopCtx); err != nil {
			a.logger.Warn("scheduler stop", "error", err)
		}
	}()

	return httpapi.NewServer(a.cfg.Server.Addr, a.handler).Run(ctx)
}

// newCompleter returns a nil interface, never a typed nil, when no credential is set.
func newCompleter(cfg config.AIConfig) (ports.Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		c, err := llm.NewChatGPTCompleter(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderAnthropic, "":
		c, err := llm.NewAnthropicCompleter(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
