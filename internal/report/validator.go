package report

import (
	"fmt"
	"unicode/utf8"

	"github.com/harrison/delegate/internal/models"
)

// Substrings FixIssues keys on. They appear verbatim in validator errors.
const (
	issueLowDelegation = "EA percentage too low"
	issueTotalTasks    = "total tasks"
)

const (
	minTitleLength       = 3
	maxTitleLength       = 60
	minDescriptionLength = 20
)

// Validate applies the count, percentage, category and quality checks to r.
// Valid is true exactly when no errors were produced; warnings never affect it.
func Validate(r models.Report) models.ValidationResult {
	analysis := Analyze(r)

	var errs, warnings []string

	e, w := checkCounts(analysis)
	errs = append(errs, e...)
	warnings = append(warnings, w...)

	errs = append(errs, checkPercentage(analysis)...)
	errs = append(errs, checkCategories(analysis)...)
	warnings = append(warnings, CheckQuality(r)...)

	return models.ValidationResult{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}
}

func checkCounts(a models.ReportAnalysis) (errs, warnings []string) {
	if a.Total != models.TargetTaskCount {
		errs = append(errs, fmt.Sprintf("Expected %d %s, got %d", models.TargetTaskCount, issueTotalTasks, a.Total))
	}
	for _, c := range models.Cadences {
		if n := a.CountFor(c); n != models.TasksPerCadence {
			warnings = append(warnings, fmt.Sprintf("Expected %d %s tasks, got %d", models.TasksPerCadence, c, n))
		}
	}
	return errs, warnings
}

func checkPercentage(a models.ReportAnalysis) []string {
	if a.DelegationPercent >= models.MinDelegationPercent {
		return nil
	}
	return []string{fmt.Sprintf("%s: %d%% (minimum %d%%)", issueLowDelegation, a.DelegationPercent, models.MinDelegationPercent)}
}

func checkCategories(a models.ReportAnalysis) []string {
	var errs []string
	for _, c := range a.Categories.Missing() {
		errs = append(errs, MissingCategoryMessage(c))
	}
	return errs
}

// MissingCategoryMessage is the validation error for an absent category.
func MissingCategoryMessage(c models.MandatoryCategory) string {
	return "Missing core EA task: " + c.Label()
}

// CheckQuality returns per-task warnings, numbering tasks from 1 across
// daily, weekly and monthly in that order.
func CheckQuality(r models.Report) []string {
	var warnings []string
	for i, t := range r.Tasks.All() {
		n := i + 1

		switch titleLen := utf8.RuneCountInString(t.Title); {
		case titleLen < minTitleLength:
			warnings = append(warnings, fmt.Sprintf("Task %d: Title too short", n))
		case titleLen > maxTitleLength:
			warnings = append(warnings, fmt.Sprintf("Task %d: Title too long", n))
		}

		if utf8.RuneCountInString(t.Description) < minDescriptionLength {
			warnings = append(warnings, fmt.Sprintf("Task %d: Description too short", n))
		}

		if !t.Owner.Valid() {
			warnings = append(warnings, fmt.Sprintf("Task %d: Invalid owner %q", n, t.Owner))
			continue
		}

		if !t.OwnershipConsistent() {
			warnings = append(warnings, fmt.Sprintf("Task %d: Owner is %s but delegated is %t", n, t.Owner, t.Delegated))
		}
	}
	return warnings
}
