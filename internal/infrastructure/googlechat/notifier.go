package googlechat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"PapersDigest/internal/chatcard"
	"PapersDigest/internal/domain"
	"PapersDigest/internal/ports"
)

const contentType = "application/json; charset=UTF-8"

// Notifier posts cards to a Google Chat incoming webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the webhook URL.
func NewNotifier(webhookURL string, timeout time.Duration, logger *slog.Logger) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}
}

// PublishDigest posts the card; any non-2xx reply is ErrDelivery.
func (n *Notifier) PublishDigest(ctx context.Context, msg chatcard.Message) error {
	if err := n.post(ctx, msg); err != nil {
		return err
	}
	n.logger.Info("message sent to google chat")
	return nil
}

// PublishError reports cause as an error card. Delivery problems are only logged.
func (n *Notifier) PublishError(ctx context.Context, cause error) {
	if cause == nil {
		return
	}
	if err := n.post(ctx, chatcard.Error(cause, n.now())); err != nil {
		n.logger.Error("failed to send error notification", "error", err)
	}
}

func (n *Notifier) post(ctx context.Context, msg chatcard.Message) error {
	if n.webhookURL == "" || n.client == nil {
		return fmt.Errorf("%w: google chat notifier misconfigured", domain.ErrDelivery)
	}

	body, err := chatcard.Encode(msg)
	if err != nil {
		return fmt.Errorf("encode card: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: do request: %v", domain.ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: google chat error %s: %s", domain.ErrDelivery, resp.Status, strings.TrimSpace(string(detail)))
	}

	return nil
}
