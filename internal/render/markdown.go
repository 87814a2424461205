// Package render formats reports for people: Markdown for files and email
// bodies, HTML for the web.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrison/delegate/internal/models"
)

// Document is a report with the context it is presented in.
type Document struct {
	ID          string
	Lead        models.LeadContext
	Report      models.Report
	GeneratedAt time.Time
}

// Field labels used in task bullet lists.
const (
	LabelOwner     = "Owner"
	LabelDelegated = "Delegated"
	LabelPriority  = "Priority"
	LabelCategory  = "Category"
	LabelMandatory = "Mandatory"
)

// Title returns the document heading text.
func (d Document) Title() string {
	name := d.Lead.FullName()
	if name == "" {
		return "Delegation Report"
	}
	return "Delegation Report: " + name
}

// Markdown renders d with one section per cadence and one subsection per task.
func Markdown(d Document) string {
	var sb strings.Builder
	r := d.Report

	fmt.Fprintf(&sb, "# %s\n\n", d.Title())
	fmt.Fprintf(&sb, "Delegation: %d/%d tasks (%d%%)\n\n", r.DelegatedCount, r.TotalCount, r.DelegationPercent)
	if d.ID != "" || !d.GeneratedAt.IsZero() {
		var meta []string
		if d.ID != "" {
			meta = append(meta, "Report "+d.ID)
		}
		if !d.GeneratedAt.IsZero() {
			meta = append(meta, "generated "+d.GeneratedAt.UTC().Format(time.RFC3339))
		}
		fmt.Fprintf(&sb, "_%s_\n\n", strings.Join(meta, ", "))
	}
	if s := oneLine(r.Summary); s != "" {
		fmt.Fprintf(&sb, "%s\n\n", s)
	}

	for _, c := range models.Cadences {
		tasks := r.Tasks.Get(c)
		fmt.Fprintf(&sb, "## %s Tasks\n\n", cadenceTitle(c))
		if len(tasks) == 0 {
			sb.WriteString("_No tasks._\n\n")
			continue
		}
		for i, t := range tasks {
			fmt.Fprintf(&sb, "### %d. %s\n\n", i+1, oneLine(t.Title))
			fmt.Fprintf(&sb, "- %s: %s\n", LabelOwner, t.Owner)
			fmt.Fprintf(&sb, "- %s: %s\n", LabelDelegated, yesNo(t.Delegated))
			if t.Priority != "" {
				fmt.Fprintf(&sb, "- %s: %s\n", LabelPriority, t.Priority)
			}
			if t.Category != "" {
				fmt.Fprintf(&sb, "- %s: %s\n", LabelCategory, oneLine(t.Category))
			}
			if t.Mandatory != "" {
				fmt.Fprintf(&sb, "- %s: %s\n", LabelMandatory, t.Mandatory)
			}
			sb.WriteString("\n")
			if desc := oneLine(t.Description); desc != "" {
				fmt.Fprintf(&sb, "%s\n\n", desc)
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// cadenceTitle returns "Daily", "Weekly" or "Monthly".
func cadenceTitle(c models.Cadence) string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
