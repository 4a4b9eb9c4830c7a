package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"PapersDigest/internal/domain"
	"PapersDigest/internal/scanner"
)

const samplePage = `
<html><body>
  <article>
    <div><div class="leading-none">17</div></div>
    <h3><a href="/papers/2501.00010">  Video Diffusion at Scale </a></h3>
  </article>
  <article>
    <div class="leading-none">not a number</div>
    <h3><a href="/papers/2501.00011#community">Tiny Agents</a></h3>
  </article>
  <article>
    <h3><a href="/papers/2501.00010">Video Diffusion at Scale</a></h3>
  </article>
  <article>
    <h3><a href="/spaces/demo">Not a paper</a></h3>
  </article>
</body></html>`

func TestExtractPapers(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	papers := extractPapers(doc, "2025-01-15")
	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %d", len(papers))
	}

	if papers[0].ID != "2501.00010" || papers[0].Title != "Video Diffusion at Scale" || papers[0].Upvotes != 17 {
		t.Fatalf("unexpected first paper: %+v", papers[0])
	}
	if papers[1].ID != "2501.00011" || papers[1].Upvotes != 0 {
		t.Fatalf("unexpected second paper: %+v", papers[1])
	}
	if papers[1].Organization != domain.Unknown || papers[1].PaperURL != "https://huggingface.co/papers/2501.00011" {
		t.Fatalf("defaults not applied: %+v", papers[1])
	}
}

func TestHFPageScannerScan(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(samplePage))
	}))
	defer server.Close()

	sc := NewHFPageScanner(server.Client(), server.URL+"/papers/", "")
	papers, err := sc.Scan(context.Background(), scanner.Request{Date: "2025-01-15"})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if gotPath != "/papers/date/2025-01-15" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %d", len(papers))
	}
}

func TestHFPageScannerStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewHFPageScanner(server.Client(), server.URL, "").Scan(context.Background(), scanner.Request{Date: "2025-01-15"})
	if !errors.Is(err, domain.ErrSourceFetch) {
		t.Fatalf("expected ErrSourceFetch, got %v", err)
	}
}
