package chatcard

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"PapersDigest/internal/domain"
	"PapersDigest/internal/format"
	"PapersDigest/pkg/kst"
)

const (
	digestTitle   = "🤗 Hugging Face 데일리 논문"
	errorTitle    = "⚠️ 오류 발생"
	errorSubtitle = "Hugging Face 논문 수집 중 오류"
	moreLabel     = "더 많은 논문 보기"
	paperLink     = "논문 보기 →"
)

// Settings tunes card layout.
type Settings struct {
	MaxAuthors       int
	MaxSummaryLength int
	MoreURL          string
}

// DefaultSettings mirrors the deployed digest.
func DefaultSettings() Settings {
	return Settings{
		MaxAuthors:       2,
		MaxSummaryLength: 300,
		MoreURL:          "https://huggingface.co/papers",
	}
}

// Digest renders a structured analysis result as a single card.
func Digest(result domain.AnalysisBatchResult, settings Settings) Message {
	sections := make([]Section, 0, len(result.Papers)+2)
	sections = append(sections, textSection(fmt.Sprintf(
		"오늘 %d개의 인기 논문 중 상위 %d개를 AI가 분석했습니다.", result.Count, len(result.Papers))))

	for i, paper := range result.Papers {
		sections = append(sections, textSection(renderAnalyzed(i, paper)))
	}
	sections = append(sections, linkSection(moreLabel, settings.MoreURL))

	return Message{Cards: []Card{{
		Header:   &Header{Title: digestTitle, Subtitle: kst.LongDate(result.Date)},
		Sections: sections,
	}}}
}

func renderAnalyzed(index int, paper domain.AnalyzedPaper) string {
	title := paper.Title
	if paper.TitleKo != "" {
		title = fmt.Sprintf("%s\n<i>%s</i>", paper.TitleKo, paper.Title)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%d. %s</b>\n", index+1, title)
	fmt.Fprintf(&sb, "⭐ %d | 👥 %s", paper.Upvotes, paper.Authors)
	if paper.Organization != "" {
		fmt.Fprintf(&sb, " | 🏢 %s", paper.Organization)
	}
	fmt.Fprintf(&sb, "\n\n%s", paper.Summary)

	if len(paper.KeyPoints) > 0 {
		sb.WriteString("\n\n<b>주요 포인트:</b>")
		for _, point := range paper.KeyPoints {
			fmt.Fprintf(&sb, "\n• %s", point)
		}
	}
	if paper.Significance != "" {
		fmt.Fprintf(&sb, "\n\n<b>의의:</b> %s", paper.Significance)
	}
	if paper.EliFor5 != "" {
		fmt.Fprintf(&sb, "\n\n<b>쉽게 설명하면:</b> %s", paper.EliFor5)
	}
	fmt.Fprintf(&sb, "\n\n<a href=\"%s\">%s</a>", paper.PaperURL, paperLink)
	return sb.String()
}

var chunkMarker = regexp.MustCompile(`\*\*\[\d+\]`)

// SplitSummary cuts a free-text digest on its **[n] markers into the intro and one chunk per paper.
func SplitSummary(summary string) (string, []string) {
	parts := chunkMarker.Split(summary, -1)
	intro := strings.TrimSpace(parts[0])
	chunks := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		// Chat does not render markdown bold.
		chunks = append(chunks, strings.TrimSpace(strings.ReplaceAll(part, "**", "")))
	}
	return intro, chunks
}

// TextDigest renders a free-text summary next to the raw top papers.
// Chunk i is paired with papers[i]; a missing chunk renders empty.
func TextDigest(date string, count int, papers []domain.Paper, summary string, settings Settings) Message {
	intro, chunks := SplitSummary(summary)

	head := textSection(fmt.Sprintf("오늘 %d개의 인기 논문 중 상위 %d개를 소개합니다.", count, len(papers)))
	if intro != "" {
		head.Widgets = append(head.Widgets, Widget{TextParagraph: &TextParagraph{Text: strings.ReplaceAll(intro, "**", "")}})
	}

	sections := make([]Section, 0, len(papers)+2)
	sections = append(sections, head)
	for i, paper := range papers {
		chunk := ""
		if i < len(chunks) {
			chunk = clip(chunks[i], settings.MaxSummaryLength)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "<b>%d. %s</b>\n", i+1, paper.Title)
		fmt.Fprintf(&sb, "⭐ %d | 👥 %s", paper.Upvotes, format.Authors(paper.Authors, settings.MaxAuthors))
		fmt.Fprintf(&sb, "\n\n%s", chunk)
		fmt.Fprintf(&sb, "\n\n<a href=\"%s\">%s</a>", paper.PaperURL, paperLink)
		sections = append(sections, textSection(sb.String()))
	}
	sections = append(sections, linkSection(moreLabel, settings.MoreURL))

	return Message{Cards: []Card{{
		Header:   &Header{Title: digestTitle, Subtitle: kst.LongDate(date)},
		Sections: sections,
	}}}
}

func clip(text string, max int) string {
	cut := format.Truncate(text, max)
	if cut == text {
		return text
	}
	return cut + format.Ellipsis
}

// Error renders the failure card.
func Error(cause error, at time.Time) Message {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return Message{Cards: []Card{{
		Header: &Header{Title: errorTitle, Subtitle: errorSubtitle},
		Sections: []Section{
			textSection(fmt.Sprintf("오류 내용: %s\n\n시간: %s", msg, kst.Timestamp(at))),
		},
	}}}
}
