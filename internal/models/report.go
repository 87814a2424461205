package models

import "math"

// MinDelegationPercent is the lowest acceptable share of delegated tasks.
const MinDelegationPercent = 40

// TasksPerCadence is the target bucket size; a complete report holds three buckets.
const TasksPerCadence = 10

// TargetTaskCount is the total number of tasks in a complete report.
const TargetTaskCount = TasksPerCadence * 3

// TaskSet holds tasks grouped by cadence, each bucket in report order.
type TaskSet struct {
	Daily   []Task `json:"daily"`
	Weekly  []Task `json:"weekly"`
	Monthly []Task `json:"monthly"`
}

// Get returns the bucket for c. Unknown cadences yield nil.
func (s TaskSet) Get(c Cadence) []Task {
	switch c {
	case CadenceDaily:
		return s.Daily
	case CadenceWeekly:
		return s.Weekly
	case CadenceMonthly:
		return s.Monthly
	default:
		return nil
	}
}

// With returns a copy of s with the bucket for c replaced by tasks.
func (s TaskSet) With(c Cadence, tasks []Task) TaskSet {
	switch c {
	case CadenceDaily:
		s.Daily = tasks
	case CadenceWeekly:
		s.Weekly = tasks
	case CadenceMonthly:
		s.Monthly = tasks
	}
	return s
}

// All returns every task, daily first, then weekly, then monthly.
func (s TaskSet) All() []Task {
	all := make([]Task, 0, len(s.Daily)+len(s.Weekly)+len(s.Monthly))
	all = append(all, s.Daily...)
	all = append(all, s.Weekly...)
	all = append(all, s.Monthly...)
	return all
}

// Len returns the total number of tasks across all buckets.
func (s TaskSet) Len() int {
	return len(s.Daily) + len(s.Weekly) + len(s.Monthly)
}

// Clone returns a deep copy whose buckets share no backing arrays with s.
func (s TaskSet) Clone() TaskSet {
	return TaskSet{
		Daily:   cloneTasks(s.Daily),
		Weekly:  cloneTasks(s.Weekly),
		Monthly: cloneTasks(s.Monthly),
	}
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

// Report is one generated delegation report.
type Report struct {
	Tasks             TaskSet `json:"tasks"`
	DelegationPercent int     `json:"delegation_percent"`
	DelegatedCount    int     `json:"delegated_count"`
	TotalCount        int     `json:"total_count"`
	Summary           string  `json:"summary"`
}

// Clone returns a deep copy of r.
func (r Report) Clone() Report {
	r.Tasks = r.Tasks.Clone()
	return r
}

// Recounted returns a copy of r with the delegated count, total and
// percentage recomputed from its tasks.
func (r Report) Recounted() Report {
	out := r.Clone()
	delegated := 0
	for _, t := range out.Tasks.All() {
		if t.Delegated {
			delegated++
		}
	}
	out.TotalCount = out.Tasks.Len()
	out.DelegatedCount = delegated
	out.DelegationPercent = DelegationPercent(delegated, out.TotalCount)
	return out
}

// DelegationPercent returns round(delegated/total*100), or 0 when total is 0.
func DelegationPercent(delegated, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(delegated) / float64(total) * 100))
}

// ValidationResult is the outcome of checking a report against the business rules.
// Errors break the report contract; warnings only flag quality issues.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// CategoryPresence records which mandatory categories a report covers.
type CategoryPresence struct {
	Correspondence bool `json:"correspondence"`
	Scheduling     bool `json:"scheduling"`
	PersonalLife   bool `json:"personal_life"`
	Processes      bool `json:"recurring_processes"`
}

// Has reports whether category c is present.
func (p CategoryPresence) Has(c MandatoryCategory) bool {
	switch c {
	case CategoryCorrespondence:
		return p.Correspondence
	case CategoryScheduling:
		return p.Scheduling
	case CategoryPersonalLife:
		return p.PersonalLife
	case CategoryProcesses:
		return p.Processes
	default:
		return false
	}
}

// Missing lists absent categories in MandatoryCategories order.
func (p CategoryPresence) Missing() []MandatoryCategory {
	var missing []MandatoryCategory
	for _, c := range MandatoryCategories {
		if !p.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Complete reports whether all four categories are present.
func (p CategoryPresence) Complete() bool {
	return len(p.Missing()) == 0
}

// ReportAnalysis holds metrics derived from a report's tasks.
type ReportAnalysis struct {
	Total             int              `json:"total"`
	Daily             int              `json:"daily"`
	Weekly            int              `json:"weekly"`
	Monthly           int              `json:"monthly"`
	Delegated         int              `json:"delegated"`
	Retained          int              `json:"retained"`
	DelegationPercent int              `json:"delegation_percent"`
	Categories        CategoryPresence `json:"categories"`
}

// CountFor returns the task count of cadence c.
func (a ReportAnalysis) CountFor(c Cadence) int {
	switch c {
	case CadenceDaily:
		return a.Daily
	case CadenceWeekly:
		return a.Weekly
	case CadenceMonthly:
		return a.Monthly
	default:
		return 0
	}
}
