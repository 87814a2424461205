package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/harrison/delegate/internal/models"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Items      []string // Numbered detail lines (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning in yellow
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("\x1b[33m")
	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	for i, item := range w.Items {
		fmt.Fprintf(&b, "      %d. %s\n", i+1, item)
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	b.WriteString("\x1b[0m")
	fmt.Fprint(out, b.String())
}

// WarnValidation builds a warning listing a report's errors, then its
// warnings. ok is false when there is nothing to show.
func WarnValidation(title string, result models.ValidationResult) (Warning, bool) {
	if len(result.Errors) == 0 && len(result.Warnings) == 0 {
		return Warning{}, false
	}

	w := Warning{Title: title}
	for _, e := range result.Errors {
		w.Items = append(w.Items, "error: "+e)
	}
	for _, warn := range result.Warnings {
		w.Items = append(w.Items, "warning: "+warn)
	}

	switch {
	case len(result.Errors) == 1:
		w.Message = "1 rule violated"
	case len(result.Errors) > 1:
		w.Message = fmt.Sprintf("%d rules violated", len(result.Errors))
	}
	if !result.Valid {
		w.Suggestion = "Run 'delegate repair' to fix the report automatically"
	}
	return w, true
}
