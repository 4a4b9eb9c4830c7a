// Package format renders papers as plain text for model prompts and fallback notices.
package format

import (
	"fmt"
	"regexp"
	"strings"

	"PapersDigest/internal/domain"
)

const (
	// OthersSuffix marks a truncated author list.
	OthersSuffix = " 외"
	// Ellipsis follows every abstract preview.
	Ellipsis = "..."
	// LinkPlaceholder is the marker a model reply uses where a paper link belongs.
	LinkPlaceholder = "[논문 보기]"

	authorSeparator = ", "
	promptAuthors   = 3
)

// Limits holds the truncation constants shared by the formatter, the engine and the cards.
type Limits struct {
	TopN         int
	AuthorsShort int
	AuthorsLong  int
	PreviewShort int
	PreviewLong  int
}

// DefaultLimits mirrors the deployed digest.
func DefaultLimits() Limits {
	return Limits{
		TopN:         5,
		AuthorsShort: 3,
		AuthorsLong:  5,
		PreviewShort: 200,
		PreviewLong:  300,
	}
}

// Authors joins at most max names and appends OthersSuffix when the list was cut.
func Authors(authors []string, max int) string {
	if max < 0 {
		max = 0
	}
	if len(authors) <= max {
		return strings.Join(authors, authorSeparator)
	}
	return strings.Join(authors[:max], authorSeparator) + OthersSuffix
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Preview returns the first n runes of s followed by Ellipsis.
func Preview(s string, n int) string {
	return Truncate(s, n) + Ellipsis
}

// Top returns at most n papers from the head of the ranked list.
func Top(papers []domain.Paper, n int) []domain.Paper {
	if n < 0 {
		n = 0
	}
	if len(papers) > n {
		return papers[:n]
	}
	return papers
}

// PaperForPrompt renders the block sent to the model. The abstract is never truncated.
func PaperForPrompt(p domain.Paper, index int) string {
	var sb strings.Builder
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "논문 %d:\n", index+1)
	fmt.Fprintf(&sb, "제목: %s\n", p.Title)
	fmt.Fprintf(&sb, "저자: %s\n", Authors(p.Authors, promptAuthors))
	fmt.Fprintf(&sb, "초록: %s\n", p.Abstract)
	fmt.Fprintf(&sb, "추천수: %d\n", p.Upvotes)
	return sb.String()
}

// PapersForPrompt joins the prompt blocks of papers with a separator line.
func PapersForPrompt(papers []domain.Paper) string {
	blocks := make([]string, 0, len(papers))
	for i, p := range papers {
		blocks = append(blocks, PaperForPrompt(p, i))
	}
	return strings.Join(blocks, "\n---\n")
}

// SimpleSummary builds the deterministic digest text used when no model output is available.
// Papers are numbered with the **[n] marker the text card splits on.
func SimpleSummary(papers []domain.Paper, limits Limits) string {
	var sb strings.Builder
	sb.WriteString("📊 **오늘의 Hugging Face 인기 논문**\n\n")

	for i, p := range Top(papers, limits.TopN) {
		fmt.Fprintf(&sb, "**[%d] %s**\n", i+1, p.Title)
		fmt.Fprintf(&sb, "👥 저자: %s\n", Authors(p.Authors, limits.AuthorsShort))
		fmt.Fprintf(&sb, "📝 초록: %s\n", Preview(p.Abstract, limits.PreviewShort))
		fmt.Fprintf(&sb, "🔗 링크: %s\n", p.PaperURL)
		if p.Upvotes > 0 {
			fmt.Fprintf(&sb, "👍 추천: %d\n", p.Upvotes)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\n총 %d개의 논문이 발견되었습니다.", len(papers))
	return sb.String()
}

var placeholderExpr = regexp.MustCompile(regexp.QuoteMeta(LinkPlaceholder))

// ReplacePaperURLs substitutes LinkPlaceholder occurrences in order with urls.
// Placeholders beyond len(urls) are left untouched.
func ReplacePaperURLs(summary string, urls []string) string {
	next := 0
	return placeholderExpr.ReplaceAllStringFunc(summary, func(match string) string {
		if next < len(urls) {
			url := urls[next]
			next++
			return url
		}
		return match
	})
}
