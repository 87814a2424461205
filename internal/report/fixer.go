package report

import (
	"strings"

	"github.com/harrison/delegate/internal/models"
)

// normalized returns a deep copy of r with every task's owner and
// delegation flag reconciled.
func normalized(r models.Report) models.Report {
	out := r.Clone()
	for _, c := range models.Cadences {
		tasks := out.Tasks.Get(c)
		for i := range tasks {
			tasks[i] = tasks[i].Reconciled()
		}
	}
	return out
}

// InjectCategories adds one canonical assistant-owned task for every missing
// mandatory category, replacing the least valuable task in the canonical
// task's cadence. Injected tasks are never displaced by later injections.
func InjectCategories(r models.Report) models.Report {
	out := normalized(r)

	// A replacement can remove the only keyword match for a category that was
	// present, so detection repeats. Injected tasks are never replaced, which
	// means each category is injected at most once.
	for {
		missing := DetectCategories(out.Tasks.All()).Missing()
		if len(missing) == 0 {
			break
		}
		for _, c := range missing {
			out.Tasks = injectOne(out.Tasks, CanonicalTask(c))
		}
	}

	return out.Recounted()
}

func injectOne(set models.TaskSet, task models.Task) models.TaskSet {
	tasks := set.Get(task.Cadence)
	if i := replacementIndex(tasks); i >= 0 {
		tasks[i] = task
		return set
	}
	return set.With(task.Cadence, append(tasks, task))
}

// replacementIndex picks the least valuable task in tasks, skipping injected
// canonical tasks. Order: retained non-high, delegated low, any non-high,
// then the last eligible task. Returns -1 when nothing is eligible.
func replacementIndex(tasks []models.Task) int {
	rules := []func(models.Task) bool{
		func(t models.Task) bool { return !t.Delegated && t.Priority != models.PriorityHigh },
		func(t models.Task) bool { return t.Delegated && t.Priority == models.PriorityLow },
		func(t models.Task) bool { return t.Priority != models.PriorityHigh },
	}
	for _, rule := range rules {
		for i, t := range tasks {
			if !isInjected(t) && rule(t) {
				return i
			}
		}
	}
	for i := len(tasks) - 1; i >= 0; i-- {
		if !isInjected(tasks[i]) {
			return i
		}
	}
	return -1
}

func isInjected(t models.Task) bool {
	return t.Mandatory != "" && t.IsAssistantOwned()
}

// RaiseDelegation converts retained tasks to delegated until the report
// reaches ceil(total*0.4) delegated tasks. Tasks matching a delegation
// keyword are converted first, scanning daily, weekly, then monthly; if that
// is not enough the remaining retained tasks are converted in the same order,
// non-high-priority ones first.
func RaiseDelegation(r models.Report) models.Report {
	out := normalized(r)

	total := out.Tasks.Len()
	target := (total*models.MinDelegationPercent + 99) / 100
	shortfall := target - countDelegated(out.Tasks.All())

	passes := []func(models.Task) bool{
		IsDelegationCandidate,
		func(t models.Task) bool { return t.Priority != models.PriorityHigh },
		func(models.Task) bool { return true },
	}
	for _, eligible := range passes {
		if shortfall <= 0 {
			break
		}
		for _, c := range models.Cadences {
			tasks := out.Tasks.Get(c)
			for i := 0; i < len(tasks) && shortfall > 0; i++ {
				if !tasks[i].Delegated && eligible(tasks[i]) {
					tasks[i] = tasks[i].Delegate()
					shortfall--
				}
			}
		}
	}

	return out.Recounted()
}

func countDelegated(tasks []models.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Delegated {
			n++
		}
	}
	return n
}

// NormalizeCounts truncates each cadence to its first ten tasks and pads
// short cadences with retained-owner filler tasks.
func NormalizeCounts(r models.Report) models.Report {
	out := normalized(r)
	for _, c := range models.Cadences {
		tasks := out.Tasks.Get(c)
		if len(tasks) > models.TasksPerCadence {
			tasks = tasks[:models.TasksPerCadence:models.TasksPerCadence]
		}
		for len(tasks) < models.TasksPerCadence {
			tasks = append(tasks, FillerTask(c, len(tasks)))
		}
		out.Tasks = out.Tasks.With(c, tasks)
	}
	return out.Recounted()
}

// FixIssues applies the fixer matching each validation error, in error order.
// Errors without a matching fixer are ignored.
func FixIssues(r models.Report, errs []string) models.Report {
	out := r.Clone()
	for _, e := range errs {
		switch {
		case strings.Contains(e, issueLowDelegation):
			out = RaiseDelegation(out)
		case strings.Contains(e, issueTotalTasks):
			out = NormalizeCounts(out)
		}
	}
	return out
}
