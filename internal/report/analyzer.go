// Package report analyzes, validates and repairs generated delegation reports.
//
// Every function in this package is pure: inputs are never mutated and each
// fixer returns a fresh Report with its metrics recomputed.
package report

import (
	"strings"

	"github.com/harrison/delegate/internal/models"
)

// categoryKeywords are matched case-insensitively against "title description".
var categoryKeywords = map[models.MandatoryCategory][]string{
	models.CategoryCorrespondence: {"email", "inbox", "correspondence"},
	models.CategoryScheduling:     {"calendar", "schedule", "scheduling", "appointment", "meeting"},
	models.CategoryPersonalLife:   {"personal", "travel", "booking", "reservation", "vendor", "appointment", "family"},
	models.CategoryProcesses:      {"process", "recurring", "workflow", "system", "procedure", "automation"},
}

// Analyze computes counts, the delegation percentage and mandatory-category
// presence for r. It never fails.
func Analyze(r models.Report) models.ReportAnalysis {
	all := r.Tasks.All()

	delegated := 0
	for _, t := range all {
		if t.Delegated {
			delegated++
		}
	}

	return models.ReportAnalysis{
		Total:             len(all),
		Daily:             len(r.Tasks.Daily),
		Weekly:            len(r.Tasks.Weekly),
		Monthly:           len(r.Tasks.Monthly),
		Delegated:         delegated,
		Retained:          len(all) - delegated,
		DelegationPercent: models.DelegationPercent(delegated, len(all)),
		Categories:        DetectCategories(all),
	}
}

// DetectCategories reports which mandatory categories tasks cover.
func DetectCategories(tasks []models.Task) models.CategoryPresence {
	var p models.CategoryPresence
	for _, t := range tasks {
		p.Correspondence = p.Correspondence || Satisfies(t, models.CategoryCorrespondence)
		p.Scheduling = p.Scheduling || Satisfies(t, models.CategoryScheduling)
		p.PersonalLife = p.PersonalLife || Satisfies(t, models.CategoryPersonalLife)
		p.Processes = p.Processes || Satisfies(t, models.CategoryProcesses)
	}
	return p
}

// Satisfies reports whether t counts toward category c. Only
// assistant-owned tasks count; the explicit marker or any keyword suffices.
func Satisfies(t models.Task, c models.MandatoryCategory) bool {
	if !t.IsAssistantOwned() {
		return false
	}
	if t.Mandatory == c {
		return true
	}
	return containsAny(taskText(t), categoryKeywords[c])
}

func taskText(t models.Task) string {
	return strings.ToLower(t.Title + " " + t.Description)
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
