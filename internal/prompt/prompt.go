// Package prompt renders the user prompt sent to the generation model.
package prompt

import (
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// Build renders the question prompt. With no context it is the plain
// "Question: ...\nAnswer:" form; otherwise the context texts are joined by a
// single space on a Retrieved Information line. Text is inserted verbatim.
func Build(query string, context []string) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\n")
	if len(context) > 0 {
		b.WriteString("Retrieved Information: ")
		b.WriteString(strings.Join(context, " "))
		b.WriteString("\n")
	}
	b.WriteString("Answer:")
	return b.String()
}

// Contexts returns the document texts of hits in rank order.
func Contexts(hits []models.Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Document.Text
	}
	return out
}
