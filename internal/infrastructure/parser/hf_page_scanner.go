package parser

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"PapersDigest/internal/domain"
	"PapersDigest/internal/scanner"
)

// DefaultPageURL is the HTML listing of daily papers.
const DefaultPageURL = "https://huggingface.co/papers"

// HFPageScanner scrapes the daily papers HTML page. The page carries no abstracts
// or authors, so papers from it render with the deterministic shape only.
type HFPageScanner struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewHFPageScanner wires an HTTP client; empty base URL and user agent take defaults.
func NewHFPageScanner(client *http.Client, baseURL, userAgent string) *HFPageScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultPageURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HFPageScanner{client: client, baseURL: strings.TrimSuffix(baseURL, "/"), userAgent: userAgent}
}

// Name identifies the strategy inside the registry.
func (s *HFPageScanner) Name() string {
	return "hf-page"
}

// Scan walks every article card on the page for req.Date.
func (s *HFPageScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Paper, error) {
	doc, err := s.fetchDocument(ctx, fmt.Sprintf("%s/date/%s", s.baseURL, req.Date))
	if err != nil {
		return nil, err
	}
	return extractPapers(doc, req.Date), nil
}

func (s *HFPageScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request page: %v", domain.ErrSourceFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: papers page returned %s", domain.ErrSourceFetch, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse page: %v", domain.ErrSourceFetch, err)
	}

	return doc, nil
}

func extractPapers(doc *goquery.Document, date string) []domain.Paper {
	var papers []domain.Paper
	seen := map[string]struct{}{}

	doc.Find("article").Each(func(_ int, article *goquery.Selection) {
		link := article.Find(`h3 a[href^="/papers/"]`).First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}

		id := paperID(href)
		if id == "" {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}

		upvotes, _ := strconv.Atoi(strings.TrimSpace(article.Find(".leading-none").First().Text()))
		papers = append(papers, newPaper(id, link.Text(), []string{}, "", "", date, upvotes))
	})

	return papers
}

func paperID(href string) string {
	id := strings.TrimPrefix(href, "/papers/")
	if i := strings.IndexAny(id, "?#/"); i >= 0 {
		id = id[:i]
	}
	return strings.TrimSpace(id)
}
