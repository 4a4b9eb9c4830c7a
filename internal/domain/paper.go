package domain

import (
	"errors"
	"fmt"
)

// Unknown stands in for a missing organization or an empty author list.
const Unknown = "Unknown"

// Error kinds shared by every stage of a run.
var (
	ErrSourceFetch = errors.New("source fetch failed")
	ErrAnalysis    = errors.New("analysis failed")
	ErrDelivery    = errors.New("delivery failed")
	ErrNoPapers    = errors.New("no papers found for this date")

	// ErrNoCredential selects the deterministic path; it is never a run failure.
	ErrNoCredential = errors.New("model credential not configured")
	// ErrModelCall covers transport failures, timeouts and non-2xx replies of the model service.
	ErrModelCall = fmt.Errorf("%w: model call failed", ErrAnalysis)
)

// Paper is one entry of the daily listing, normalized at the source boundary.
type Paper struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Organization  string   `json:"organization"`
	Abstract      string   `json:"abstract"`
	PublishedDate string   `json:"publishedDate"`
	PDFURL        string   `json:"pdfUrl"`
	PaperURL      string   `json:"paperUrl"`
	Upvotes       int      `json:"upvotes"`
}

// AnalyzedPaper is the user-facing form of a Paper after the analysis stage.
type AnalyzedPaper struct {
	Title        string   `json:"title"`
	TitleKo      string   `json:"titleKo,omitempty"`
	Authors      string   `json:"authors"`
	Organization string   `json:"organization,omitempty"`
	Summary      string   `json:"summary"`
	KeyPoints    []string `json:"keyPoints"`
	Significance string   `json:"significance"`
	EliFor5      string   `json:"eliFor5,omitempty"`
	PaperURL     string   `json:"paperUrl"`
	Upvotes      int      `json:"upvotes"`
}

// AnalysisBatchResult is the output of one run's analysis stage.
// Count is the number of papers found that day and may exceed len(Papers).
type AnalysisBatchResult struct {
	Date   string          `json:"date"`
	Count  int             `json:"count"`
	Papers []AnalyzedPaper `json:"papers"`
}
