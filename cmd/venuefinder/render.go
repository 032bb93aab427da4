package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/poiesic/venuefinder"
	"github.com/poiesic/venuefinder/core"
	"github.com/poiesic/venuefinder/indexer"
	"github.com/poiesic/venuefinder/search"
)

// styles holds the terminal styles. Colors degrade to plain text when the
// output is not a terminal.
type styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
	Match    lipgloss.Style
	Positive lipgloss.Style
	Neutral  lipgloss.Style
	Negative lipgloss.Style
	Evidence lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		Title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Label:    r.NewStyle().Bold(true),
		Muted:    r.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Match:    r.NewStyle().Bold(true).Underline(true),
		Positive: r.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		Neutral:  r.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Negative: r.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		Evidence: r.NewStyle().PaddingLeft(4),
	}
}

func (s styles) sentiment(label core.SentimentLabel) lipgloss.Style {
	switch label {
	case core.SentimentPositive:
		return s.Positive
	case core.SentimentNegative:
		return s.Negative
	default:
		return s.Neutral
	}
}

func renderResults(w io.Writer, st styles, query string, results []core.RankedResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, st.Muted.Render(fmt.Sprintf("No venues found for %q", query)))
		return
	}

	terms := search.QueryTerms(query)
	mark := func(word string) string { return st.Match.Render(word) }

	for i, r := range results {
		title := fmt.Sprintf("%d. %s", i+1, r.Venue.Name)
		fmt.Fprintf(w, "%s  %s\n", st.Title.Render(title), st.Muted.Render(fmt.Sprintf("score %.3f", r.Score)))

		var meta []string
		if r.Venue.Category != "" {
			meta = append(meta, r.Venue.Category)
		}
		if r.Venue.Address != "" {
			meta = append(meta, r.Venue.Address)
		}
		if r.Venue.Rating > 0 {
			meta = append(meta, fmt.Sprintf("★ %.1f", r.Venue.Rating))
		}
		if len(meta) > 0 {
			fmt.Fprintln(w, "   "+st.Muted.Render(strings.Join(meta, " · ")))
		}
		fmt.Fprintf(w, "   %s %d  %s %s %s\n",
			st.Label.Render("matches"), r.MatchCount,
			st.Positive.Render(fmt.Sprintf("+%d", r.Positive)),
			st.Neutral.Render(fmt.Sprintf("~%d", r.Neutral)),
			st.Negative.Render(fmt.Sprintf("-%d", r.Negative)))

		for _, ev := range r.Evidence {
			tag := st.sentiment(ev.Sentiment.Label).Render(fmt.Sprintf("[%s %.2f]", ev.Sentiment.Label, ev.Score))
			fmt.Fprintln(w, st.Evidence.Render(tag+" "+search.Highlight(ev.Text, terms, mark)))
		}
		fmt.Fprintln(w)
	}
}

func renderReport(w io.Writer, st styles, report *indexer.BuildReport) {
	m := report.Manifest
	if report.Skipped {
		fmt.Fprintf(w, "%s %s\n", st.Title.Render("Index is up to date"), st.Muted.Render(m.Version))
	} else {
		fmt.Fprintf(w, "%s %s\n", st.Title.Render("Index built"), st.Muted.Render(m.Version))
	}
	fmt.Fprintf(w, "  %s %d reviews, %d venues (%s, dim %d)\n", st.Label.Render("indexed"), m.ReviewCount, m.VenueCount, m.IndexKind, m.Dim)
	fmt.Fprintf(w, "  %s %d accepted, %d rejected, %d filtered\n", st.Label.Render("dataset"), report.Accepted, report.RejectedTotal(), report.Filtered)
	for reason, n := range report.Rejected {
		fmt.Fprintf(w, "    %s %d\n", st.Muted.Render(reason), n)
	}
	fmt.Fprintf(w, "  %s %s\n", st.Label.Render("took"), report.Duration.Round(time.Millisecond))
}

func renderStatus(w io.Writer, st styles, path string, status *venuefinder.Status) {
	fmt.Fprintf(w, "%s %s\n", st.Title.Render("Store"), path)
	if m := status.Active; m != nil {
		fmt.Fprintf(w, "  %s %s\n", st.Label.Render("version"), m.Version)
		fmt.Fprintf(w, "  %s %s\n", st.Label.Render("built"), m.BuiltAt.Format(time.RFC3339))
		fmt.Fprintf(w, "  %s %s (dim %d)\n", st.Label.Render("model"), m.EmbeddingModel, m.Dim)
		fmt.Fprintf(w, "  %s %s, %d reviews, %d venues, %d skipped\n", st.Label.Render("index"), m.IndexKind, m.ReviewCount, m.VenueCount, m.SkippedRows)
		fmt.Fprintf(w, "  %s %s\n", st.Label.Render("dataset"), m.DatasetID)
	} else {
		fmt.Fprintln(w, "  "+st.Muted.Render("no index has been built"))
	}
	if b := status.LastBuild; b != nil {
		line := fmt.Sprintf("%s at %s", b.Outcome, b.FinishedAt.Format(time.RFC3339))
		if b.Error != "" {
			line += ": " + st.Negative.Render(b.Error)
		}
		fmt.Fprintf(w, "  %s %s\n", st.Label.Render("last build"), line)
	}
}

type evidenceJSON struct {
	Position   uint32  `json:"position"`
	Text       string  `json:"text"`
	Rating     int     `json:"rating,omitempty"`
	Similarity float32 `json:"similarity"`
	Sentiment  string  `json:"sentiment"`
	Confidence float32 `json:"confidence"`
	Score      float32 `json:"score"`
}

type resultJSON struct {
	VenueID  core.VenueID   `json:"venue_id"`
	Name     string         `json:"name"`
	Address  string         `json:"address,omitempty"`
	Category string         `json:"category,omitempty"`
	Rating   float64        `json:"rating,omitempty"`
	Score    float32        `json:"score"`
	Matches  int            `json:"matches"`
	Positive int            `json:"positive"`
	Neutral  int            `json:"neutral"`
	Negative int            `json:"negative"`
	Evidence []evidenceJSON `json:"evidence"`
}

func toResultsJSON(results []core.RankedResult) []resultJSON {
	out := make([]resultJSON, 0, len(results))
	for _, r := range results {
		res := resultJSON{
			VenueID:  r.Venue.Id,
			Name:     r.Venue.Name,
			Address:  r.Venue.Address,
			Category: r.Venue.Category,
			Rating:   r.Venue.Rating,
			Score:    r.Score,
			Matches:  r.MatchCount,
			Positive: r.Positive,
			Neutral:  r.Neutral,
			Negative: r.Negative,
			Evidence: make([]evidenceJSON, 0, len(r.Evidence)),
		}
		for _, ev := range r.Evidence {
			res.Evidence = append(res.Evidence, evidenceJSON{
				Position:   ev.Position,
				Text:       ev.Text,
				Rating:     ev.Rating,
				Similarity: ev.Similarity,
				Sentiment:  ev.Sentiment.Label.String(),
				Confidence: ev.Sentiment.Confidence,
				Score:      ev.Score,
			})
		}
		out = append(out, res)
	}
	return out
}

type reportJSON struct {
	Version  string         `json:"version"`
	Skipped  bool           `json:"skipped"`
	Kind     string         `json:"index_kind"`
	Dim      int            `json:"dim"`
	Reviews  int            `json:"reviews"`
	Venues   int            `json:"venues"`
	Accepted int            `json:"accepted"`
	Rejected map[string]int `json:"rejected"`
	Filtered int            `json:"filtered"`
	Seconds  float64        `json:"seconds"`
}

func toReportJSON(report *indexer.BuildReport) reportJSON {
	m := report.Manifest
	return reportJSON{
		Version:  m.Version,
		Skipped:  report.Skipped,
		Kind:     m.IndexKind,
		Dim:      m.Dim,
		Reviews:  m.ReviewCount,
		Venues:   m.VenueCount,
		Accepted: report.Accepted,
		Rejected: report.Rejected,
		Filtered: report.Filtered,
		Seconds:  report.Duration.Seconds(),
	}
}

type statusJSON struct {
	Store     string            `json:"store"`
	Active    *core.Manifest    `json:"active"`
	LastBuild *core.BuildRecord `json:"last_build"`
}

func toStatusJSON(path string, st *venuefinder.Status) statusJSON {
	return statusJSON{Store: path, Active: st.Active, LastBuild: st.LastBuild}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
