package ports

import (
	"context"
	"time"

	"PapersDigest/internal/chatcard"
	"PapersDigest/internal/domain"
)

// PaperSource pulls the day's ranked papers from the upstream listing.
type PaperSource interface {
	FetchDaily(ctx context.Context, date string) ([]domain.Paper, error)
}

// Completer sends one prompt to a language model and returns its free-text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Notifier delivers cards to the chat channel.
type Notifier interface {
	PublishDigest(ctx context.Context, msg chatcard.Message) error
	// PublishError is best-effort; delivery problems are logged, never returned.
	PublishError(ctx context.Context, cause error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
