// Package analysis turns ranked papers into the enriched digest, asking a language
// model when one is configured and degrading to deterministic text otherwise.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"PapersDigest/internal/domain"
	"PapersDigest/internal/format"
	"PapersDigest/internal/ports"
)

// Strategy selects the request granularity of structured analysis.
type Strategy string

const (
	// StrategyPerItem sends one request per paper; failures degrade that paper only.
	StrategyPerItem Strategy = "per-item"
	// StrategyBatch sends one request for all papers; an unusable reply fails the batch.
	StrategyBatch Strategy = "batch"
)

// Options tunes the engine.
type Options struct {
	Strategy            Strategy
	Limits              format.Limits
	StructuredMaxTokens int
	TextMaxTokens       int
	Concurrency         int
}

// DefaultOptions mirrors the deployed digest.
func DefaultOptions() Options {
	return Options{
		Strategy:            StrategyPerItem,
		Limits:              format.DefaultLimits(),
		StructuredMaxTokens: 2048,
		TextMaxTokens:       4096,
		Concurrency:         3,
	}
}

// Engine produces analysis results. A nil completer means no credential was configured.
type Engine struct {
	completer ports.Completer
	opts      Options
	logger    *slog.Logger
}

// NewEngine wires the model client; completer may be nil.
func NewEngine(completer ports.Completer, opts Options, logger *slog.Logger) *Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyPerItem
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{completer: completer, opts: opts, logger: logger}
}

// HasCredential reports whether model calls will be attempted.
func (e *Engine) HasCredential() bool {
	return e.completer != nil
}

// Analyze enriches the top papers. Without a credential it returns Fallback.
// Only the batch strategy returns errors; per-item failures degrade single papers.
func (e *Engine) Analyze(ctx context.Context, date string, papers []domain.Paper) (domain.AnalysisBatchResult, error) {
	if e.completer == nil {
		e.logger.Info("no model credential, using basic info")
		return e.Fallback(date, papers), nil
	}

	top := format.Top(papers, e.opts.Limits.TopN)

	var (
		analyzed []domain.AnalyzedPaper
		err      error
	)
	switch e.opts.Strategy {
	case StrategyBatch:
		analyzed, err = e.analyzeBatch(ctx, top)
		if err != nil {
			return domain.AnalysisBatchResult{}, err
		}
	default:
		analyzed = e.analyzePerItem(ctx, top)
	}

	return domain.AnalysisBatchResult{Date: date, Count: len(papers), Papers: analyzed}, nil
}

// Fallback builds the deterministic result without any model call.
func (e *Engine) Fallback(date string, papers []domain.Paper) domain.AnalysisBatchResult {
	top := format.Top(papers, e.opts.Limits.TopN)
	analyzed := make([]domain.AnalyzedPaper, 0, len(top))
	for _, p := range top {
		analyzed = append(analyzed, e.simple(p))
	}
	return domain.AnalysisBatchResult{Date: date, Count: len(papers), Papers: analyzed}
}

// Summarize produces the free-text digest with paper links substituted.
// Without a credential it returns SimpleSummary.
func (e *Engine) Summarize(ctx context.Context, papers []domain.Paper) (string, error) {
	if e.completer == nil {
		e.logger.Info("no model credential, using simple summary")
		return e.SimpleSummary(papers), nil
	}

	top := format.Top(papers, e.opts.Limits.TopN)
	prompt, err := render(textPrompt, papersVars{Papers: format.PapersForPrompt(top)})
	if err != nil {
		return "", err
	}

	reply, err := e.completer.Complete(ctx, prompt, e.opts.TextMaxTokens)
	if err != nil {
		return "", fmt.Errorf("summarize papers: %w", err)
	}

	urls := make([]string, 0, len(top))
	for _, p := range top {
		urls = append(urls, p.PaperURL)
	}
	return format.ReplacePaperURLs(reply, urls), nil
}

// Top returns the papers the engine would analyze.
func (e *Engine) Top(papers []domain.Paper) []domain.Paper {
	return format.Top(papers, e.opts.Limits.TopN)
}

// SimpleSummary is the deterministic free-text digest.
func (e *Engine) SimpleSummary(papers []domain.Paper) string {
	return format.SimpleSummary(papers, e.opts.Limits)
}

func (e *Engine) analyzePerItem(ctx context.Context, top []domain.Paper) []domain.AnalyzedPaper {
	results := make([]domain.AnalyzedPaper, len(top))

	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)
	for i, paper := range top {
		i, paper := i, paper
		g.Go(func() error {
			results[i] = e.analyzeOne(ctx, paper)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (e *Engine) analyzeOne(ctx context.Context, paper domain.Paper) domain.AnalyzedPaper {
	prompt, err := render(structuredPrompt, paperVars{
		Title:    paper.Title,
		Authors:  format.Authors(paper.Authors, e.opts.Limits.AuthorsLong),
		Abstract: paper.Abstract,
	})
	if err != nil {
		e.logger.Warn("render prompt failed, using basic info", "paper", paper.ID, "error", err)
		return e.simple(paper)
	}

	reply, err := e.completer.Complete(ctx, prompt, e.opts.StructuredMaxTokens)
	if err != nil {
		e.logger.Warn("analyze paper failed, using basic info", "paper", paper.ID, "error", err)
		return e.simple(paper)
	}

	rec, err := parseObject(reply)
	if err != nil {
		e.logger.Warn("parse paper analysis failed, using basic info", "paper", paper.ID, "error", err)
		return e.simple(paper)
	}

	return e.enrich(paper, rec)
}

func (e *Engine) analyzeBatch(ctx context.Context, top []domain.Paper) ([]domain.AnalyzedPaper, error) {
	prompt, err := render(batchPrompt, papersVars{Papers: format.PapersForPrompt(top)})
	if err != nil {
		return nil, err
	}

	reply, err := e.completer.Complete(ctx, prompt, e.opts.StructuredMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("analyze batch: %w", err)
	}

	recs, err := parseArray(reply)
	if err != nil {
		return nil, fmt.Errorf("analyze batch: %w", err)
	}
	if len(recs) != len(top) {
		e.logger.Warn("batch analysis size mismatch", "expected", len(top), "got", len(recs))
	}

	analyzed := make([]domain.AnalyzedPaper, len(top))
	for i, paper := range top {
		if i < len(recs) {
			analyzed[i] = e.enrich(paper, recs[i])
			continue
		}
		analyzed[i] = e.simple(paper)
	}
	return analyzed, nil
}

func (e *Engine) enrich(paper domain.Paper, rec record) domain.AnalyzedPaper {
	out := e.simple(paper)
	out.TitleKo = rec.TitleKo
	if rec.Summary != "" {
		out.Summary = rec.Summary
	}
	if rec.KeyPoints != nil {
		out.KeyPoints = rec.KeyPoints
	}
	out.Significance = rec.Significance
	out.EliFor5 = rec.EliFor5
	return out
}

func (e *Engine) simple(paper domain.Paper) domain.AnalyzedPaper {
	return domain.AnalyzedPaper{
		Title:        paper.Title,
		Authors:      e.displayAuthors(paper.Authors),
		Organization: paper.Organization,
		Summary:      format.Preview(paper.Abstract, e.opts.Limits.PreviewLong),
		KeyPoints:    []string{},
		Significance: "",
		PaperURL:     paper.PaperURL,
		Upvotes:      paper.Upvotes,
	}
}

func (e *Engine) displayAuthors(authors []string) string {
	if display := format.Authors(authors, e.opts.Limits.AuthorsShort); display != "" {
		return display
	}
	return domain.Unknown
}
