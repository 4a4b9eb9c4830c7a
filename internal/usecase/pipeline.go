package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"PapersDigest/internal/analysis"
	"PapersDigest/internal/chatcard"
	"PapersDigest/internal/domain"
	"PapersDigest/internal/ports"
)

// Mode selects which card the pipeline delivers.
type Mode string

const (
	// ModeStructured delivers per-paper analysis.
	ModeStructured Mode = "structured"
	// ModeText delivers the free-text summary split per paper.
	ModeText Mode = "text"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source   ports.PaperSource
	Engine   *analysis.Engine
	Notifier ports.Notifier
	Mode     Mode
	Card     chatcard.Settings
	Logger   *slog.Logger
}

// Pipeline implements the fetch, analyze, format and deliver workflow.
type Pipeline struct {
	source   ports.PaperSource
	engine   *analysis.Engine
	notifier ports.Notifier
	mode     Mode
	card     chatcard.Settings
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component. A nil notifier means log-only delivery.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	engine := deps.Engine
	if engine == nil {
		engine = analysis.NewEngine(nil, analysis.DefaultOptions(), logger)
	}
	mode := deps.Mode
	if mode == "" {
		mode = ModeStructured
	}
	return &Pipeline{
		source:   deps.Source,
		engine:   engine,
		notifier: deps.Notifier,
		mode:     mode,
		card:     deps.Card,
		logger:   logger,
	}
}

// ProcessDay runs one full pass for date. Fatal errors are reported to chat before returning.
func (p *Pipeline) ProcessDay(ctx context.Context, date string) error {
	logger := p.logger.With("run_id", uuid.NewString(), "date", date)
	logger.Info("processing papers")

	papers, err := p.Fetch(ctx, date)
	if err != nil {
		return p.fail(ctx, logger, err)
	}
	if len(papers) == 0 {
		logger.Info("no papers found")
		return nil
	}
	logger.Info("papers found", "count", len(papers))

	var msg chatcard.Message
	switch p.mode {
	case ModeText:
		msg = p.textMessage(ctx, logger, date, papers)
	default:
		msg = chatcard.Digest(p.analyze(ctx, logger, date, papers), p.card)
	}

	if err := p.deliver(ctx, logger, msg); err != nil {
		return p.fail(ctx, logger, err)
	}

	logger.Info("run completed")
	return nil
}

// Fetch returns the popularity-ordered papers for date.
func (p *Pipeline) Fetch(ctx context.Context, date string) ([]domain.Paper, error) {
	if p.source == nil {
		return nil, fmt.Errorf("%w: paper source is not configured", domain.ErrSourceFetch)
	}
	papers, err := p.source.FetchDaily(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("fetch daily: %w", err)
	}
	return papers, nil
}

// Analyze fetches and analyzes without delivering. Zero papers is ErrNoPapers.
func (p *Pipeline) Analyze(ctx context.Context, date string) (domain.AnalysisBatchResult, error) {
	papers, err := p.Fetch(ctx, date)
	if err != nil {
		return domain.AnalysisBatchResult{}, err
	}
	if len(papers) == 0 {
		return domain.AnalysisBatchResult{}, domain.ErrNoPapers
	}
	return p.analyze(ctx, p.logger.With("date", date), date, papers), nil
}

// analyze downgrades to the deterministic result exactly once on failure.
func (p *Pipeline) analyze(ctx context.Context, logger *slog.Logger, date string, papers []domain.Paper) domain.AnalysisBatchResult {
	result, err := p.engine.Analyze(ctx, date, papers)
	if err != nil {
		logger.Warn("analysis failed, using basic info", "error", err)
		return p.engine.Fallback(date, papers)
	}
	return result
}

func (p *Pipeline) textMessage(ctx context.Context, logger *slog.Logger, date string, papers []domain.Paper) chatcard.Message {
	summary, err := p.engine.Summarize(ctx, papers)
	if err != nil {
		logger.Warn("summary failed, using simple summary", "error", err)
		summary = p.engine.SimpleSummary(papers)
	}
	return chatcard.TextDigest(date, len(papers), p.engine.Top(papers), summary, p.card)
}

func (p *Pipeline) deliver(ctx context.Context, logger *slog.Logger, msg chatcard.Message) error {
	if p.notifier == nil {
		body, err := chatcard.Encode(msg)
		if err != nil {
			return fmt.Errorf("encode card: %w", err)
		}
		logger.Info("no webhook configured, logging result", "card", string(body))
		return nil
	}
	if err := p.notifier.PublishDigest(ctx, msg); err != nil {
		return fmt.Errorf("publish digest: %w", err)
	}
	return nil
}

func (p *Pipeline) fail(ctx context.Context, logger *slog.Logger, err error) error {
	logger.Error("run failed", "error", err)
	if p.notifier != nil {
		p.notifier.PublishError(context.WithoutCancel(ctx), err)
	}
	return err
}
