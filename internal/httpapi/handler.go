// Package httpapi exposes the pipeline over HTTP for manual and platform-driven triggers.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"PapersDigest/internal/domain"
	"PapersDigest/pkg/kst"
)

const (
	inspectLimit = 5
	banner       = "Hugging Face Daily Papers digest. Routes: /health, /trigger, /test, /analyze"
)

// Runner is the slice of the pipeline the handlers drive.
type Runner interface {
	ProcessDay(ctx context.Context, date string) error
	Fetch(ctx context.Context, date string) ([]domain.Paper, error)
	Analyze(ctx context.Context, date string) (domain.AnalysisBatchResult, error)
}

// Handler serves the trigger and inspection routes.
type Handler struct {
	runner Runner
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler wires the pipeline; now may be nil.
func NewHandler(runner Runner, logger *slog.Logger, now func() time.Time) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Handler{runner: runner, logger: logger, now: now}
}

type TriggerResponse struct {
	Success bool   `json:"success"`
	Date    string `json:"date,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type PapersResponse struct {
	Date   string         `json:"date"`
	Count  int            `json:"count"`
	Papers []domain.Paper `json:"papers"`
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/", h.Index)
	r.GET("/health", h.Health)
	r.GET("/trigger", h.Trigger)
	r.POST("/trigger", h.Trigger)
	r.GET("/test", h.Test)
	r.GET("/analyze", h.Analyze)
}

func (h *Handler) Index(c *gin.Context) {
	c.String(http.StatusOK, banner)
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Trigger runs the full pipeline for ?date= (default yesterday in UTC+9).
func (h *Handler) Trigger(c *gin.Context) {
	date, ok := h.date(c, func(err error) any {
		return TriggerResponse{Success: false, Error: err.Error()}
	})
	if !ok {
		return
	}

	// a client disconnect must not abort a run halfway
	if err := h.runner.ProcessDay(context.WithoutCancel(c.Request.Context()), date); err != nil {
		h.logger.Error("trigger failed", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, TriggerResponse{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, TriggerResponse{
		Success: true,
		Date:    date,
		Message: "Papers processed successfully",
	})
}

// Test returns the raw fetch for inspection, capped at five papers.
func (h *Handler) Test(c *gin.Context) {
	date, ok := h.date(c, errorBody)
	if !ok {
		return
	}

	papers, err := h.runner.Fetch(c.Request.Context(), date)
	if err != nil {
		h.logger.Error("test fetch failed", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, errorBody(err))
		return
	}

	preview := papers
	if len(preview) > inspectLimit {
		preview = preview[:inspectLimit]
	}
	if preview == nil {
		preview = []domain.Paper{}
	}
	c.JSON(http.StatusOK, PapersResponse{Date: date, Count: len(papers), Papers: preview})
}

// Analyze returns the analysis result without delivering it.
func (h *Handler) Analyze(c *gin.Context) {
	date, ok := h.date(c, errorBody)
	if !ok {
		return
	}

	result, err := h.runner.Analyze(c.Request.Context(), date)
	if errors.Is(err, domain.ErrNoPapers) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No papers found for this date"})
		return
	}
	if err != nil {
		h.logger.Error("analyze failed", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, errorBody(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// date resolves ?date=, answering 400 with body(err) when it is not a calendar date.
func (h *Handler) date(c *gin.Context, body func(error) any) (string, bool) {
	date := c.Query("date")
	if date == "" {
		return kst.Yesterday(h.now()), true
	}
	if _, err := kst.ParseDate(date); err != nil {
		c.JSON(http.StatusBadRequest, body(err))
		return "", false
	}
	return date, true
}

func errorBody(err error) any {
	return gin.H{"error": err.Error()}
}
