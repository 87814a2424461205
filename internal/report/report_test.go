package report

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/harrison/delegate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const neutralDescription = "Set the long-term vision and priorities for the whole company."

// neutral returns a task matching no category or delegation keyword.
func neutral(cadence models.Cadence, i int, owner models.Owner, priority models.Priority) models.Task {
	return models.Task{
		Title:       fmt.Sprintf("Strategic Focus %s %d", cadence, i),
		Description: neutralDescription,
		Owner:       owner,
		Delegated:   owner == models.OwnerAssistant,
		Category:    "Strategy",
		Cadence:     cadence,
		Priority:    priority,
	}
}

func bucket(cadence models.Cadence, n int, owner models.Owner, priority models.Priority) []models.Task {
	tasks := make([]models.Task, n)
	for i := range tasks {
		tasks[i] = neutral(cadence, i, owner, priority)
	}
	return tasks
}

// validReport has 30 tasks, 12 delegated, and all four categories.
func validReport() models.Report {
	daily := bucket(models.CadenceDaily, 10, models.OwnerPrincipal, models.PriorityMedium)
	weekly := bucket(models.CadenceWeekly, 10, models.OwnerPrincipal, models.PriorityMedium)
	monthly := bucket(models.CadenceMonthly, 10, models.OwnerPrincipal, models.PriorityMedium)

	daily[0] = models.Task{Title: "Inbox Zero Triage", Description: "Sort and answer incoming email every morning.", Owner: models.OwnerAssistant, Delegated: true, Priority: models.PriorityHigh}
	daily[1] = models.Task{Title: "Calendar Gatekeeping", Description: "Protect focus time and confirm each meeting.", Owner: models.OwnerAssistant, Delegated: true, Priority: models.PriorityHigh}
	weekly[0] = models.Task{Title: "Family Logistics", Description: "Coordinate travel plans and family errands.", Owner: models.OwnerAssistant, Delegated: true, Priority: models.PriorityMedium}
	monthly[0] = models.Task{Title: "Workflow Documentation", Description: "Write down each recurring workflow as a checklist.", Owner: models.OwnerAssistant, Delegated: true, Priority: models.PriorityMedium}

	for i := 2; i < 6; i++ {
		daily[i] = daily[i].Delegate()
	}
	for i := 1; i < 3; i++ {
		weekly[i] = weekly[i].Delegate()
		monthly[i] = monthly[i].Delegate()
	}

	return models.Report{
		Tasks:   models.TaskSet{Daily: daily, Weekly: weekly, Monthly: monthly},
		Summary: "Delegate the inbox first.",
	}.Recounted()
}

func titles(r models.Report) []string {
	var out []string
	for _, t := range r.Tasks.All() {
		out = append(out, t.Title)
	}
	return out
}

func TestAnalyze(t *testing.T) {
	a := Analyze(validReport())

	assert.Equal(t, 30, a.Total)
	assert.Equal(t, 10, a.Daily)
	assert.Equal(t, 10, a.Weekly)
	assert.Equal(t, 10, a.Monthly)
	assert.Equal(t, 12, a.Delegated)
	assert.Equal(t, 18, a.Retained)
	assert.Equal(t, 40, a.DelegationPercent)
	assert.True(t, a.Categories.Complete())
}

func TestAnalyze_EmptyReport(t *testing.T) {
	a := Analyze(models.Report{})
	assert.Equal(t, 0, a.Total)
	assert.Equal(t, 0, a.DelegationPercent)
	assert.Len(t, a.Categories.Missing(), 4)
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		name     string
		task     models.Task
		category models.MandatoryCategory
		want     bool
	}{
		{"keyword in title", models.Task{Title: "EMAIL triage", Owner: models.OwnerAssistant}, models.CategoryCorrespondence, true},
		{"keyword in description", models.Task{Title: "Mornings", Description: "Confirm every appointment", Owner: models.OwnerAssistant}, models.CategoryScheduling, true},
		{"principal-owned ignored", models.Task{Title: "Email triage", Owner: models.OwnerPrincipal}, models.CategoryCorrespondence, false},
		{"marker without keyword", models.Task{Title: "Ops", Owner: models.OwnerAssistant, Mandatory: models.CategoryProcesses}, models.CategoryProcesses, true},
		{"marker on principal ignored", models.Task{Title: "Ops", Owner: models.OwnerPrincipal, Mandatory: models.CategoryProcesses}, models.CategoryProcesses, false},
		{"no match", models.Task{Title: "Vision", Description: neutralDescription, Owner: models.OwnerAssistant}, models.CategoryPersonalLife, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Satisfies(tt.task, tt.category))
		})
	}
}

func TestValidate_ValidReport(t *testing.T) {
	result := Validate(validReport())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_Errors(t *testing.T) {
	r := models.Report{Tasks: models.TaskSet{
		Daily: bucket(models.CadenceDaily, 12, models.OwnerPrincipal, models.PriorityMedium),
	}}

	result := Validate(r)
	require.False(t, result.Valid)

	assert.Equal(t, []string{
		"Expected 30 total tasks, got 12",
		"EA percentage too low: 0% (minimum 40%)",
		"Missing core EA task: Email Management",
		"Missing core EA task: Calendar Management",
		"Missing core EA task: Personal Life Management",
		"Missing core EA task: Business Process Management",
	}, result.Errors)
	assert.Contains(t, result.Warnings, "Expected 10 daily tasks, got 12")
	assert.Contains(t, result.Warnings, "Expected 10 weekly tasks, got 0")
	assert.Contains(t, result.Warnings, "Expected 10 monthly tasks, got 0")
}

func TestValidate_WarningsDoNotAffectValidity(t *testing.T) {
	r := validReport()
	r.Tasks.Daily[9].Description = "short"
	result := Validate(r)
	assert.True(t, result.Valid)
	assert.Contains(t, result.Warnings, "Task 10: Description too short")
}

func TestCheckQuality(t *testing.T) {
	r := models.Report{Tasks: models.TaskSet{
		Daily: []models.Task{
			{Title: "ok", Description: neutralDescription, Owner: models.OwnerPrincipal},
			{Title: strings.Repeat("x", 61), Description: neutralDescription, Owner: models.OwnerAssistant, Delegated: true},
		},
		Weekly: []models.Task{
			{Title: "Valid title", Description: neutralDescription, Owner: "intern"},
			{Title: "Valid title", Description: neutralDescription, Owner: models.OwnerAssistant, Delegated: false},
		},
	}}

	assert.Equal(t, []string{
		"Task 1: Title too short",
		"Task 2: Title too long",
		`Task 3: Invalid owner "intern"`,
		"Task 4: Owner is assistant but delegated is false",
	}, CheckQuality(r))
}

func TestNormalizeCounts_TruncatesPreservingOrder(t *testing.T) {
	daily := bucket(models.CadenceDaily, 12, models.OwnerPrincipal, models.PriorityMedium)
	r := models.Report{Tasks: models.TaskSet{Daily: daily}}

	got := NormalizeCounts(r)

	require.Len(t, got.Tasks.Daily, 10)
	if diff := cmp.Diff(daily[:10], got.Tasks.Daily); diff != "" {
		t.Errorf("daily tasks mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, r.Tasks.Daily, 12, "input must not be mutated")
}

func TestNormalizeCounts_PadsWithFiller(t *testing.T) {
	r := models.Report{Tasks: models.TaskSet{
		Weekly: bucket(models.CadenceWeekly, 7, models.OwnerAssistant, models.PriorityMedium),
	}}

	got := NormalizeCounts(r)

	assert.Len(t, got.Tasks.Daily, 10)
	assert.Len(t, got.Tasks.Weekly, 10)
	assert.Len(t, got.Tasks.Monthly, 10)
	assert.Equal(t, 30, got.TotalCount)

	assert.Equal(t, "Review Daily Priorities", got.Tasks.Daily[0].Title)
	assert.Equal(t, "Daily Task Review", got.Tasks.Daily[1].Title)
	assert.Equal(t, "Review Daily Priorities", got.Tasks.Daily[2].Title)
	assert.Equal(t, "Weekly Goal Assessment", got.Tasks.Weekly[7].Title)

	for _, task := range got.Tasks.Monthly {
		assert.Equal(t, models.OwnerPrincipal, task.Owner)
		assert.Equal(t, models.PriorityMedium, task.Priority)
	}
	assert.Equal(t, 7, got.DelegatedCount)
	assert.Equal(t, 23, got.DelegationPercent)
}

func TestRaiseDelegation_ConvertsKeywordTask(t *testing.T) {
	daily := bucket(models.CadenceDaily, 10, models.OwnerPrincipal, models.PriorityMedium)
	daily[4].Title = "Schedule investor calls"
	r := models.Report{Tasks: models.TaskSet{Daily: daily}}.Recounted()
	require.Equal(t, 0, r.DelegationPercent)

	got := RaiseDelegation(r)

	assert.Equal(t, models.OwnerAssistant, got.Tasks.Daily[4].Owner)
	assert.True(t, got.Tasks.Daily[4].Delegated)
	assert.GreaterOrEqual(t, got.DelegationPercent, 40)
	assert.Equal(t, 4, got.DelegatedCount)
	assert.False(t, r.Tasks.Daily[4].Delegated, "input must not be mutated")
}

func TestRaiseDelegation_KeywordOrderAcrossCadences(t *testing.T) {
	daily := bucket(models.CadenceDaily, 5, models.OwnerPrincipal, models.PriorityMedium)
	weekly := bucket(models.CadenceWeekly, 5, models.OwnerPrincipal, models.PriorityMedium)
	daily[3].Description = "Research new suppliers."
	weekly[0].Description = "Compile the sales numbers."
	weekly[1].Description = "Draft the investor letter."

	got := RaiseDelegation(models.Report{Tasks: models.TaskSet{Daily: daily, Weekly: weekly}})

	// ceil(10*0.4) = 4: three keyword matches, then the first non-high retained task.
	assert.Equal(t, 4, got.DelegatedCount)
	assert.True(t, got.Tasks.Daily[3].Delegated)
	assert.True(t, got.Tasks.Weekly[0].Delegated)
	assert.True(t, got.Tasks.Weekly[1].Delegated)
	assert.True(t, got.Tasks.Daily[0].Delegated)
}

func TestRaiseDelegation_NoOpWhenAboveTarget(t *testing.T) {
	r := validReport()
	got := RaiseDelegation(r)
	if diff := cmp.Diff(r, got); diff != "" {
		t.Errorf("expected no change (-want +got):\n%s", diff)
	}
}

func TestInjectCategories_AllMissing(t *testing.T) {
	r := models.Report{Tasks: models.TaskSet{
		Daily:   bucket(models.CadenceDaily, 10, models.OwnerPrincipal, models.PriorityMedium),
		Weekly:  bucket(models.CadenceWeekly, 10, models.OwnerPrincipal, models.PriorityMedium),
		Monthly: bucket(models.CadenceMonthly, 10, models.OwnerPrincipal, models.PriorityMedium),
	}}

	got := InjectCategories(r)

	all := titles(got)
	for _, want := range []string{
		"Complete Email Management",
		"Calendar and Schedule Management",
		"Personal Life Coordination",
		"Recurring Business Process Management",
	} {
		assert.Contains(t, all, want)
	}
	assert.Equal(t, 30, got.TotalCount)
	assert.Equal(t, 4, got.DelegatedCount)
	assert.True(t, Analyze(got).Categories.Complete())

	assert.Equal(t, "Complete Email Management", got.Tasks.Daily[0].Title)
	assert.Equal(t, "Calendar and Schedule Management", got.Tasks.Daily[1].Title)
	assert.Equal(t, "Personal Life Coordination", got.Tasks.Weekly[0].Title)
	assert.Equal(t, "Recurring Business Process Management", got.Tasks.Monthly[0].Title)
}

func TestInjectCategories_ReplacementPriority(t *testing.T) {
	base := func() []models.Task {
		return []models.Task{
			neutral(models.CadenceMonthly, 0, models.OwnerPrincipal, models.PriorityHigh),
			neutral(models.CadenceMonthly, 1, models.OwnerAssistant, models.PriorityMedium),
			neutral(models.CadenceMonthly, 2, models.OwnerAssistant, models.PriorityLow),
			neutral(models.CadenceMonthly, 3, models.OwnerPrincipal, models.PriorityLow),
		}
	}
	others := models.TaskSet{
		Daily: []models.Task{
			{Title: "Inbox care", Description: "Answer email.", Owner: models.OwnerAssistant, Delegated: true, Priority: models.PriorityHigh},
			{Title: "Calendar care", Description: "Book each meeting.", Owner: models.OwnerAssistant, Delegated: true, Priority: models.PriorityHigh},
		},
		Weekly: []models.Task{
			{Title: "Travel", Description: "Plan family travel.", Owner: models.OwnerAssistant, Delegated: true, Priority: models.PriorityHigh},
		},
	}

	tests := []struct {
		name    string
		mutate  func([]models.Task) []models.Task
		wantIdx int
	}{
		{"retained non-high first", func(ts []models.Task) []models.Task { return ts }, 3},
		{"then delegated low", func(ts []models.Task) []models.Task { return ts[:3] }, 2},
		{"then any non-high", func(ts []models.Task) []models.Task { return ts[:2] }, 1},
		{"then last task", func(ts []models.Task) []models.Task { return ts[:1] }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := others.Clone()
			set.Monthly = tt.mutate(base())
			got := InjectCategories(models.Report{Tasks: set})

			require.Len(t, got.Tasks.Monthly, len(set.Monthly))
			assert.Equal(t, "Recurring Business Process Management", got.Tasks.Monthly[tt.wantIdx].Title)
		})
	}
}

func TestInjectCategories_EmptyCadenceAppends(t *testing.T) {
	got := InjectCategories(models.Report{})

	assert.Len(t, got.Tasks.Daily, 2)
	assert.Len(t, got.Tasks.Weekly, 1)
	assert.Len(t, got.Tasks.Monthly, 1)
	assert.True(t, Analyze(got).Categories.Complete())
	assert.Equal(t, 100, got.DelegationPercent)
}

func TestInjectCategories_ReinjectsDisplacedCategory(t *testing.T) {
	// The only email task is the lone delegated low-priority task in daily;
	// injecting the calendar task displaces it, so email must come back too.
	r := models.Report{Tasks: models.TaskSet{
		Daily: []models.Task{
			{Title: "Inbox sweep", Description: "Clear the email backlog.", Owner: models.OwnerAssistant, Delegated: true, Priority: models.PriorityLow},
		},
		Weekly:  []models.Task{{Title: "Trips", Description: "Plan family travel.", Owner: models.OwnerAssistant, Delegated: true}},
		Monthly: []models.Task{{Title: "Ops", Description: "Map every workflow.", Owner: models.OwnerAssistant, Delegated: true}},
	}}

	got := InjectCategories(r)

	assert.True(t, Analyze(got).Categories.Complete())
	assert.Equal(t, []string{"Calendar and Schedule Management", "Complete Email Management"}, titles(models.Report{Tasks: models.TaskSet{Daily: got.Tasks.Daily}}))
}

func TestFixers_Idempotent(t *testing.T) {
	inputs := map[string]models.Report{
		"valid": validReport(),
		"empty": {},
		"over-count retained": {Tasks: models.TaskSet{
			Daily:  bucket(models.CadenceDaily, 14, models.OwnerPrincipal, models.PriorityLow),
			Weekly: bucket(models.CadenceWeekly, 3, models.OwnerPrincipal, models.PriorityHigh),
		}},
		"inconsistent owners": {Tasks: models.TaskSet{
			Daily: []models.Task{
				{Title: "Email", Description: "Handle email", Owner: models.OwnerAssistant, Delegated: false},
				{Title: "Plan", Description: "Plan the quarter", Owner: "bot", Delegated: true},
				{Title: "Vision", Description: neutralDescription, Owner: models.OwnerPrincipal, Delegated: true},
			},
		}},
	}
	fixers := map[string]func(models.Report) models.Report{
		"InjectCategories": InjectCategories,
		"RaiseDelegation":  RaiseDelegation,
		"NormalizeCounts":  NormalizeCounts,
	}

	for inputName, input := range inputs {
		for fixerName, fix := range fixers {
			t.Run(fixerName+"/"+inputName, func(t *testing.T) {
				once := fix(input)
				twice := fix(once)
				if diff := cmp.Diff(once, twice); diff != "" {
					t.Errorf("not idempotent (-once +twice):\n%s", diff)
				}
				for i, task := range twice.Tasks.All() {
					if !task.OwnershipConsistent() {
						t.Errorf("task %d: owner %q disagrees with delegated=%v", i+1, task.Owner, task.Delegated)
					}
				}
			})
		}
	}
}

func TestFixers_Invariants(t *testing.T) {
	r := models.Report{Tasks: models.TaskSet{
		Daily:   bucket(models.CadenceDaily, 13, models.OwnerPrincipal, models.PriorityHigh),
		Monthly: bucket(models.CadenceMonthly, 4, models.OwnerPrincipal, models.PriorityHigh),
	}}

	shaped := NormalizeCounts(r)
	a := Analyze(shaped)
	assert.Equal(t, [4]int{10, 10, 10, 30}, [4]int{a.Daily, a.Weekly, a.Monthly, a.Total})

	raised := RaiseDelegation(shaped)
	assert.GreaterOrEqual(t, Analyze(raised).DelegationPercent, 40)

	injected := InjectCategories(raised)
	assert.True(t, Analyze(injected).Categories.Complete())
}

func TestFixIssues_AppliesInErrorOrder(t *testing.T) {
	r := models.Report{Tasks: models.TaskSet{
		Daily: bucket(models.CadenceDaily, 12, models.OwnerPrincipal, models.PriorityMedium),
	}}
	result := Validate(r)

	got := FixIssues(r, result.Errors)

	a := Analyze(got)
	assert.Equal(t, 30, a.Total)
	assert.GreaterOrEqual(t, a.DelegationPercent, 40)
}

func TestFixIssues_IgnoresUnknownErrors(t *testing.T) {
	r := validReport()
	got := FixIssues(r, []string{"Missing core EA task: Email Management", "something else"})
	if diff := cmp.Diff(r, got); diff != "" {
		t.Errorf("expected unchanged report (-want +got):\n%s", diff)
	}
}

func TestPipeline_Repair(t *testing.T) {
	r := models.Report{Tasks: models.TaskSet{
		Daily:   bucket(models.CadenceDaily, 12, models.OwnerPrincipal, models.PriorityMedium),
		Weekly:  bucket(models.CadenceWeekly, 8, models.OwnerPrincipal, models.PriorityHigh),
		Monthly: bucket(models.CadenceMonthly, 10, models.OwnerPrincipal, models.PriorityLow),
	}}

	out := NewPipeline(nil).Repair(r)

	assert.False(t, out.Before.Valid)
	assert.True(t, out.After.Valid, "errors after repair: %v", out.After.Errors)
	assert.True(t, out.Repaired())
	assert.Contains(t, out.Applied, "normalize_counts")
	assert.Contains(t, out.Applied, "raise_delegation")
	assert.Contains(t, out.Applied, "inject_categories")
	assert.Equal(t, 30, out.Report.TotalCount)
}

func TestPipeline_RepairValidReportUnchanged(t *testing.T) {
	r := validReport()
	out := NewPipeline(nil).Repair(r)

	assert.False(t, out.Repaired())
	if diff := cmp.Diff(r, out.Report); diff != "" {
		t.Errorf("valid report changed (-want +got):\n%s", diff)
	}
}

func TestPipeline_RepairReconcilesOwnersBeforeChecks(t *testing.T) {
	daily := bucket(models.CadenceDaily, 10, models.OwnerPrincipal, models.PriorityMedium)
	weekly := bucket(models.CadenceWeekly, 10, models.OwnerPrincipal, models.PriorityMedium)
	monthly := bucket(models.CadenceMonthly, 10, models.OwnerPrincipal, models.PriorityMedium)

	daily[0] = models.Task{Title: "Calendar Gatekeeping", Description: "Protect focus time and confirm each meeting.", Owner: models.OwnerAssistant, Delegated: true, Priority: models.PriorityHigh}
	weekly[0] = models.Task{Title: "Family Logistics", Description: "Coordinate travel plans and family errands.", Owner: models.OwnerAssistant, Delegated: true, Priority: models.PriorityMedium}
	monthly[0] = models.Task{Title: "Workflow Documentation", Description: "Write down each recurring workflow as a checklist.", Owner: models.OwnerAssistant, Delegated: true, Priority: models.PriorityMedium}
	// Flagged delegated but owned by the principal: 12 of 30 by flag alone.
	for i := 1; i < 10; i++ {
		daily[i].Delegated = true
	}
	r := models.Report{Tasks: models.TaskSet{Daily: daily, Weekly: weekly, Monthly: monthly}}.Recounted()
	require.Equal(t, []string{"Missing core EA task: Email Management"}, Validate(r).Errors)

	out := NewPipeline(nil).Repair(r)

	assert.True(t, out.After.Valid, "errors after repair: %v", out.After.Errors)
	assert.Contains(t, out.Applied, "reconcile_owners")
	assert.Contains(t, out.Applied, "raise_delegation")
	assert.Contains(t, out.Applied, "inject_categories")
	assert.GreaterOrEqual(t, out.Report.DelegationPercent, models.MinDelegationPercent)
	for i, task := range out.Report.Tasks.All() {
		assert.True(t, task.OwnershipConsistent(), "task %d: owner %q delegated=%v", i+1, task.Owner, task.Delegated)
	}
}

func TestPipeline_RepairReconcilesValidReport(t *testing.T) {
	r := validReport()
	r.Tasks.Daily[6].Owner = "bot"
	r.Tasks.Daily[6].Delegated = true
	r.Tasks.Weekly[5].Delegated = true
	r = r.Recounted()
	require.True(t, Validate(r).Valid)

	out := NewPipeline(nil).Repair(r)

	assert.True(t, out.After.Valid, "errors after repair: %v", out.After.Errors)
	assert.Equal(t, []string{"reconcile_owners"}, out.Applied)
	assert.Equal(t, models.OwnerAssistant, out.Report.Tasks.Daily[6].Owner)
	assert.False(t, out.Report.Tasks.Weekly[5].Delegated)
	for i, task := range out.Report.Tasks.All() {
		assert.True(t, task.Owner.Valid(), "task %d: owner %q", i+1, task.Owner)
		assert.True(t, task.OwnershipConsistent(), "task %d: owner %q delegated=%v", i+1, task.Owner, task.Delegated)
	}
}
