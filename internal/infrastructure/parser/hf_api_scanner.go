package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"PapersDigest/internal/domain"
	"PapersDigest/internal/scanner"
)

const (
	// DefaultListingURL is the daily papers JSON endpoint.
	DefaultListingURL = "https://huggingface.co/api/daily_papers"
	// PaperBaseURL prefixes paper identifiers to build display links.
	PaperBaseURL = "https://huggingface.co/papers/"

	defaultUserAgent = "Mozilla/5.0 (compatible; HuggingFaceDailyBot/1.0)"
)

// HFAPIScanner reads the daily listing API.
type HFAPIScanner struct {
	client    *http.Client
	endpoint  string
	userAgent string
}

// NewHFAPIScanner wires an HTTP client; empty endpoint and user agent take defaults.
func NewHFAPIScanner(client *http.Client, endpoint, userAgent string) *HFAPIScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if endpoint == "" {
		endpoint = DefaultListingURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HFAPIScanner{client: client, endpoint: endpoint, userAgent: userAgent}
}

// Name identifies the strategy inside the registry.
func (s *HFAPIScanner) Name() string {
	return "hf-api"
}

// Scan fetches the listing for req.Date. Records without a nested paper are skipped.
func (s *HFAPIScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Paper, error) {
	listURL, err := buildListingURL(s.endpoint, req.Date)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", s.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: request listing: %v", domain.ErrSourceFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: failed to fetch papers: %s", domain.ErrSourceFetch, resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read listing: %v", domain.ErrSourceFetch, err)
	}

	var records []listingRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: decode listing: %v", domain.ErrSourceFetch, err)
	}

	return parseListing(records, req.Date), nil
}

type listingRecord struct {
	Paper   *listingPaper `json:"paper"`
	Title   string        `json:"title"`
	Summary string        `json:"summary"`
}

type listingPaper struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Summary      string          `json:"summary"`
	Authors      []listingAuthor `json:"authors"`
	Organization *struct {
		Name string `json:"name"`
	} `json:"organization"`
	Upvotes int `json:"upvotes"`
}

// listingAuthor accepts either a plain string or an object with name/fullname.
// Any other JSON value decodes to an empty name.
type listingAuthor string

func (a *listingAuthor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || (data[0] != '"' && data[0] != '{') {
		*a = ""
		return nil
	}
	if data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*a = listingAuthor(name)
		return nil
	}

	var obj struct {
		Name     string `json:"name"`
		Fullname string `json:"fullname"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Name != "" {
		*a = listingAuthor(obj.Name)
	} else {
		*a = listingAuthor(obj.Fullname)
	}
	return nil
}

func parseListing(records []listingRecord, date string) []domain.Paper {
	papers := make([]domain.Paper, 0, len(records))
	for _, rec := range records {
		if rec.Paper == nil {
			continue
		}
		p := rec.Paper

		authors := make([]string, 0, len(p.Authors))
		for _, a := range p.Authors {
			authors = append(authors, clean(string(a)))
		}

		organization := ""
		if p.Organization != nil {
			organization = p.Organization.Name
		}

		papers = append(papers, newPaper(
			p.ID,
			firstNonEmpty(rec.Title, p.Title),
			authors,
			organization,
			firstNonEmpty(rec.Summary, p.Summary),
			date,
			p.Upvotes,
		))
	}
	return papers
}

func newPaper(id, title string, authors []string, organization, abstract, date string, upvotes int) domain.Paper {
	if organization == "" {
		organization = domain.Unknown
	}
	if upvotes < 0 {
		upvotes = 0
	}
	link := PaperBaseURL + id
	return domain.Paper{
		ID:            id,
		Title:         clean(title),
		Authors:       authors,
		Organization:  organization,
		Abstract:      strings.TrimSpace(abstract),
		PublishedDate: date,
		PDFURL:        link,
		PaperURL:      link,
		Upvotes:       upvotes,
	}
}

// clean trims and NFC-normalizes display text.
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func buildListingURL(base, date string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid listing url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("date", date)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
