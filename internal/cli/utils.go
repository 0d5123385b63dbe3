// Package cli renders answers, hits and documents for the kotae command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is indented JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" or "json" (case-insensitive, empty means text).
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("invalid output format %q (use text or json)", s)
	}
}

const snippetLen = 200

// WriteAnswer writes an answer to w. Text output prints the answer first and the
// supporting documents below it.
func WriteAnswer(w io.Writer, ans *models.Answer, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, ans)
	}
	fmt.Fprintln(w, ans.Text)
	if len(ans.Hits) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "--- Retrieved ---")
		for _, h := range ans.Hits {
			writeHit(w, h)
		}
	}
	fmt.Fprintf(w, "\n(%s, %s, %dms)\n", ans.Mode, ans.Model, ans.ElapsedMs)
	return nil
}

// WriteHits writes retrieval results to w.
func WriteHits(w io.Writer, resp *models.RetrieveResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "\nFound %d documents in %dms\n\n", len(resp.Hits), resp.ElapsedMs)
	for _, h := range resp.Hits {
		writeHit(w, h)
	}
	return nil
}

// WriteDocuments lists loaded documents in index order.
func WriteDocuments(w io.Writer, docs []models.Document, format OutputFormat) error {
	if format == OutputJSON {
		if docs == nil {
			docs = []models.Document{}
		}
		return writeJSON(w, docs)
	}
	for _, d := range docs {
		fmt.Fprintf(w, "[%d] %s\n", d.Position, utils.Truncate(d.Text, snippetLen))
		if d.Source != models.SourceInline && d.Source != "" {
			fmt.Fprintf(w, "    %s\n", d.Source)
		}
	}
	return nil
}

func writeHit(w io.Writer, h models.Hit) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Position: %d | Distance: %.4f\n", h.Rank, h.Document.Position, h.Distance)
	if h.Document.Source != models.SourceInline && h.Document.Source != "" {
		fmt.Fprintf(w, "Source: %s\n", h.Document.Source)
	}
	fmt.Fprintf(w, "%s\n", utils.Truncate(h.Document.Text, snippetLen))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
