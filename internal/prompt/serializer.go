// Package prompt turns lead context into prompts for the text-generation backend.
package prompt

import (
	"fmt"
	"strings"

	"github.com/harrison/delegate/internal/models"
)

// WebsiteContentBudget bounds how much scraped website text reaches a prompt.
const WebsiteContentBudget = 4000

// TruncationMarker is appended when website content was cut to the budget.
const TruncationMarker = "[... website content truncated ...]"

// Serialize flattens lead into the text block substituted into the primary
// template. Empty fields are skipped; the lead context section always closes
// the block.
func Serialize(lead models.LeadContext) string {
	var lines []string
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", label, value))
		}
	}

	add("Founder's Name", lead.FullName())
	add("Role", lead.Title)
	add("Email", lead.Email)
	add("Phone", lead.PhoneValue())
	if site := lead.WebsiteURL(); site != "" {
		add("Company Website", site+" (use it to understand their business, industry, services, and target audience)")
	}
	add("Business Type", lead.BusinessType)
	add("Revenue", lead.Revenue)
	add("Team Size", lead.TeamSize())
	add("Primary Challenges", lead.ChallengeText())
	add("Biggest Time Bottleneck", lead.TimeBottleneck)
	add("Additional Info/Context", lead.SupportNotes)
	add("Admin Time Per Week", lead.AdminTimePerWeek)
	add("Communication Preference", lead.CommunicationPreference)
	add("Instagram", lead.Instagram)

	if ws := lead.WebsiteSummary; ws != nil {
		lines = append(lines, "", "--- COMPANY WEBSITE CONTENT ---")
		add("Website URL", ws.URL)
		add("Website Title", ws.Title)
		add("Website Description", ws.Description)
		add("Industry", ws.Industry)
		if len(ws.Services) > 0 {
			add("Services", strings.Join(ws.Services, ", "))
		}
		if content := strings.TrimSpace(ws.Content); content != "" {
			lines = append(lines,
				"",
				"--- RAW WEBSITE CONTENT ---",
				truncate(content, WebsiteContentBudget),
				"--- END WEBSITE CONTENT ---",
				"",
				"IMPORTANT: Use the website content above to tailor every task to this founder's actual business operations.",
			)
		}
	}

	lines = append(lines, "", "--- LEAD CONTEXT ---")
	lines = append(lines, fmt.Sprintf("Lead Type: %s", lead.LeadType))
	lines = append(lines, fmt.Sprintf("Timestamp: %s", lead.Timestamp))
	lines = append(lines, fmt.Sprintf("Engagement Level: %s (%d fields provided)", lead.Engagement(), lead.FieldCount()))

	return strings.Join(lines, "\n")
}

// truncate cuts s to limit runes and appends TruncationMarker when it did.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "\n" + TruncationMarker
}
