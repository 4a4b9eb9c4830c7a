package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"PapersDigest/internal/domain"
	"PapersDigest/internal/ports"
	"PapersDigest/internal/scanner"
)

// StrategySource implements PaperSource via the configured scanner strategy.
type StrategySource struct {
	strategy scanner.Scanner
	options  map[string]string
	logger   *slog.Logger
}

var _ ports.PaperSource = (*StrategySource)(nil)

// NewStrategySource resolves the named scanner from the registry.
func NewStrategySource(reg *scanner.Registry, name string, options map[string]string, log *slog.Logger) (*StrategySource, error) {
	if reg == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	strategy, err := reg.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("source: %w (known: %v)", err, reg.Names())
	}
	return &StrategySource{strategy: strategy, options: options, logger: log}, nil
}

// FetchDaily runs the scanner for date and ranks the result by upvotes, stable on ties.
func (s *StrategySource) FetchDaily(ctx context.Context, date string) ([]domain.Paper, error) {
	s.debug("fetch daily", "scanner", s.strategy.Name(), "date", date)

	papers, err := s.strategy.Scan(ctx, scanner.Request{Date: date, Options: s.options})
	if err != nil {
		if !errors.Is(err, domain.ErrSourceFetch) {
			err = fmt.Errorf("%w: %w", domain.ErrSourceFetch, err)
		}
		return nil, fmt.Errorf("scan %s: %w", s.strategy.Name(), err)
	}

	SortByUpvotes(papers)
	s.debug("strategy source done", "total_papers", len(papers))
	return papers, nil
}

// SortByUpvotes orders papers by popularity, highest first, keeping fetch order on ties.
func SortByUpvotes(papers []domain.Paper) {
	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].Upvotes > papers[j].Upvotes
	})
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
