package generator

import (
	"encoding/json"
	"strings"

	"github.com/harrison/delegate/internal/models"
)

const previewLength = 200

type wireTask struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Owner       models.Owner             `json:"owner"`
	Delegated   *bool                    `json:"delegated"`
	IsEA        *bool                    `json:"isEA"`
	Category    string                   `json:"category"`
	Priority    models.Priority          `json:"priority"`
	Mandatory   models.MandatoryCategory `json:"mandatory_category"`
}

type wireTasks struct {
	Daily   []wireTask `json:"daily"`
	Weekly  []wireTask `json:"weekly"`
	Monthly []wireTask `json:"monthly"`
}

// wireReport keeps only the tasks and summary. Delegation metrics are
// always recomputed from the tasks; the model's own numbers are ignored.
type wireReport struct {
	Tasks   *wireTasks `json:"tasks"`
	Summary string     `json:"summary"`
}

// ParseReport decodes a backend reply into a Report. Code fences, a bare
// "json" language tag and surrounding prose are tolerated. Delegated count,
// total and percentage are computed from the parsed tasks.
func ParseReport(raw string) (models.Report, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return models.Report{}, &ParseError{Reason: "empty response"}
	}

	var wire wireReport
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		extracted := ExtractJSON(cleaned)
		if extracted == "" || extracted == cleaned {
			return models.Report{}, &ParseError{Reason: "invalid JSON", Err: err, Preview: truncate(cleaned, previewLength)}
		}
		if err := json.Unmarshal([]byte(extracted), &wire); err != nil {
			return models.Report{}, &ParseError{Reason: "invalid JSON", Err: err, Preview: truncate(cleaned, previewLength)}
		}
	}

	if wire.Tasks == nil {
		return models.Report{}, &ParseError{Reason: "missing tasks object", Preview: truncate(cleaned, previewLength)}
	}

	r := models.Report{
		Tasks: models.TaskSet{
			Daily:   convertTasks(wire.Tasks.Daily, models.CadenceDaily),
			Weekly:  convertTasks(wire.Tasks.Weekly, models.CadenceWeekly),
			Monthly: convertTasks(wire.Tasks.Monthly, models.CadenceMonthly),
		},
		Summary: strings.TrimSpace(wire.Summary),
	}

	return r.Recounted(), nil
}

func convertTasks(in []wireTask, cadence models.Cadence) []models.Task {
	out := make([]models.Task, 0, len(in))
	for _, w := range in {
		t := models.Task{
			Title:       strings.TrimSpace(w.Title),
			Description: strings.TrimSpace(w.Description),
			Owner:       w.Owner,
			Category:    w.Category,
			Cadence:     cadence,
			Priority:    models.Priority(strings.ToLower(string(w.Priority))),
			Mandatory:   w.Mandatory,
		}
		switch {
		case w.Delegated != nil:
			t.Delegated = *w.Delegated
		case w.IsEA != nil:
			t.Delegated = *w.IsEA
		default:
			t.Delegated = w.Owner == models.OwnerAssistant
		}
		out = append(out, t)
	}
	return out
}

// StripFences removes markdown code fences, a leading "json" tag and
// surrounding whitespace from s.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	s = strings.TrimSpace(s)

	if len(s) > 4 && strings.EqualFold(s[:4], "json") {
		if rest := strings.TrimLeft(s[4:], " \t\r\n"); len(rest) < len(s)-4 {
			s = rest
		}
	}
	return strings.TrimSpace(s)
}

// ExtractJSON returns the substring from the first '{' to the last '}',
// or "" when there is no such span.
func ExtractJSON(content string) string {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return ""
}

// truncate cuts s to maxLen runes and appends "..." when it was longer.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
