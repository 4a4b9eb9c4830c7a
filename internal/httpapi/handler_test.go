package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"PapersDigest/internal/domain"
	"PapersDigest/internal/logging"
)

type fakeRunner struct {
	dates  []string
	papers []domain.Paper
	result domain.AnalysisBatchResult
	err    error
	ctxErr error
}

func (f *fakeRunner) ProcessDay(ctx context.Context, date string) error {
	f.dates = append(f.dates, date)
	f.ctxErr = ctx.Err()
	return f.err
}

func (f *fakeRunner) Fetch(_ context.Context, date string) ([]domain.Paper, error) {
	f.dates = append(f.dates, date)
	return f.papers, f.err
}

func (f *fakeRunner) Analyze(_ context.Context, date string) (domain.AnalysisBatchResult, error) {
	f.dates = append(f.dates, date)
	return f.result, f.err
}

// 2025-01-16 09:00 in UTC+9
var fixedNow = func() time.Time { return time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC) }

func newTestRouter(runner Runner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(NewHandler(runner, logging.Discard(), fixedNow))
}

func serve(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := serve(newTestRouter(&fakeRunner{}), "GET", "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestIndex(t *testing.T) {
	w := serve(newTestRouter(&fakeRunner{}), "GET", "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, banner, w.Body.String())
}

func TestTrigger_DefaultsToYesterday(t *testing.T) {
	runner := &fakeRunner{}
	r := newTestRouter(runner)

	for _, method := range []string{"GET", "POST"} {
		w := serve(r, method, "/trigger")
		assert.Equal(t, http.StatusOK, w.Code)

		var res TriggerResponse
		_ = json.Unmarshal(w.Body.Bytes(), &res)
		assert.Equal(t, true, res.Success)
		assert.Equal(t, "2025-01-15", res.Date)
	}
	assert.Equal(t, []string{"2025-01-15", "2025-01-15"}, runner.dates)
}

func TestTrigger_ExplicitDate(t *testing.T) {
	runner := &fakeRunner{}
	w := serve(newTestRouter(runner), "GET", "/trigger?date=2024-12-31")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"2024-12-31"}, runner.dates)
}

func TestTrigger_Failure(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("%w: failed to fetch papers: 500 Internal Server Error", domain.ErrSourceFetch)}
	w := serve(newTestRouter(runner), "POST", "/trigger")

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var res TriggerResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, false, res.Success)
	assert.Equal(t, runner.err.Error(), res.Error)
}

func TestTrigger_DetachedFromRequestContext(t *testing.T) {
	runner := &fakeRunner{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/trigger?date=2025-01-10", nil).WithContext(ctx)
	newTestRouter(runner).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, nil, runner.ctxErr)
}

func TestTrigger_InvalidDate(t *testing.T) {
	runner := &fakeRunner{}
	w := serve(newTestRouter(runner), "GET", "/trigger?date=2025-13-40")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, len(runner.dates))
}

func TestTest_CapsPapers(t *testing.T) {
	papers := make([]domain.Paper, 7)
	for i := range papers {
		papers[i] = domain.Paper{ID: fmt.Sprintf("p%d", i), Authors: []string{}}
	}
	w := serve(newTestRouter(&fakeRunner{papers: papers}), "GET", "/test?date=2025-01-15")

	assert.Equal(t, http.StatusOK, w.Code)

	var res PapersResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "2025-01-15", res.Date)
	assert.Equal(t, 7, res.Count)
	assert.Equal(t, 5, len(res.Papers))
}

func TestTest_Empty(t *testing.T) {
	w := serve(newTestRouter(&fakeRunner{}), "GET", "/test")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"date":"2025-01-15","count":0,"papers":[]}`, w.Body.String())
}

func TestAnalyze_NotFound(t *testing.T) {
	w := serve(newTestRouter(&fakeRunner{err: domain.ErrNoPapers}), "GET", "/analyze")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, `{"error":"No papers found for this date"}`, w.Body.String())
}

func TestAnalyze_Failure(t *testing.T) {
	w := serve(newTestRouter(&fakeRunner{err: errors.New("listing down")}), "GET", "/analyze")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, `{"error":"listing down"}`, w.Body.String())
}

func TestAnalyze_Success(t *testing.T) {
	result := domain.AnalysisBatchResult{
		Date:  "2025-01-15",
		Count: 1,
		Papers: []domain.AnalyzedPaper{{
			Title: "T", Authors: "A", Summary: "S...", KeyPoints: []string{}, PaperURL: "https://huggingface.co/papers/1",
		}},
	}
	w := serve(newTestRouter(&fakeRunner{result: result}), "GET", "/analyze?date=2025-01-15")

	assert.Equal(t, http.StatusOK, w.Code)

	var res domain.AnalysisBatchResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "S...", res.Papers[0].Summary)
}
