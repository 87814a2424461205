package report

import (
	"fmt"
	"strings"

	"github.com/harrison/delegate/internal/logger"
	"github.com/harrison/delegate/internal/models"
)

// Outcome is the result of running a report through the repair pipeline.
type Outcome struct {
	Report  models.Report           `json:"report"`
	Before  models.ValidationResult `json:"before"`
	After   models.ValidationResult `json:"after"`
	Applied []string                `json:"applied,omitempty"`
}

// Repaired reports whether any fixer changed the report.
func (o Outcome) Repaired() bool {
	return len(o.Applied) > 0
}

// Pipeline validates a report, fixes what the validator flags, guarantees
// the shape, ratio and category invariants, and validates again.
type Pipeline struct {
	logger logger.Logger
}

// NewPipeline creates a Pipeline. A nil logger discards output.
func NewPipeline(l logger.Logger) *Pipeline {
	return &Pipeline{logger: logger.OrNop(l)}
}

// Repair runs the full repair sequence on r:
//
//  1. validate the report as received (Outcome.Before)
//  2. reconcile every task's owner and delegation flag
//  3. apply FixIssues in the reconciled report's error order
//  4. normalize counts if any cadence is still not ten tasks
//  5. raise delegation if still below the minimum
//  6. inject missing mandatory categories
//  7. validate again
//
// Every check after step 2 sees the same ownership the fixers see.
// Category injection runs last because it never lowers the delegated count
// and never changes a full cadence's length.
func (p *Pipeline) Repair(r models.Report) Outcome {
	before := Validate(r)
	out := Outcome{Before: before}

	fixed := normalized(r).Recounted()
	if !ownershipSettled(r) {
		out.Applied = append(out.Applied, "reconcile_owners")
	}

	if current := Validate(fixed); !current.Valid {
		p.logger.LogInfo(logger.KV("repairing report", "errors", len(current.Errors), "warnings", len(current.Warnings)))
		fixed = FixIssues(fixed, current.Errors)
		for _, name := range appliedFixers(current.Errors) {
			out.Applied = appendOnce(out.Applied, name)
		}
	}

	if a := Analyze(fixed); !shapeComplete(a) {
		fixed = NormalizeCounts(fixed)
		out.Applied = appendOnce(out.Applied, "normalize_counts")
	}

	if a := Analyze(fixed); a.DelegationPercent < models.MinDelegationPercent {
		fixed = RaiseDelegation(fixed)
		out.Applied = appendOnce(out.Applied, "raise_delegation")
	}

	if a := Analyze(fixed); !a.Categories.Complete() {
		missing := a.Categories.Missing()
		fixed = InjectCategories(fixed)
		out.Applied = appendOnce(out.Applied, "inject_categories")
		p.logger.LogInfo(logger.KV("injected mandatory tasks", "missing", fmt.Sprint(missing)))
	}

	out.Report = fixed.Recounted()
	out.After = Validate(out.Report)

	if !out.After.Valid {
		p.logger.LogError(logger.KV("report still invalid after repair", "errors", fmt.Sprint(out.After.Errors)))
	} else if out.Repaired() {
		p.logger.LogInfo(logger.KV("report repaired",
			"fixers", fmt.Sprint(out.Applied),
			"delegation", fmt.Sprintf("%d%%", out.Report.DelegationPercent)))
	}

	return out
}

// ownershipSettled reports whether every task already has a valid owner that
// agrees with its delegation flag.
func ownershipSettled(r models.Report) bool {
	for _, t := range r.Tasks.All() {
		if !t.Owner.Valid() || !t.OwnershipConsistent() {
			return false
		}
	}
	return true
}

func shapeComplete(a models.ReportAnalysis) bool {
	for _, c := range models.Cadences {
		if a.CountFor(c) != models.TasksPerCadence {
			return false
		}
	}
	return true
}

func appliedFixers(errs []string) []string {
	var applied []string
	for _, e := range errs {
		switch {
		case strings.Contains(e, issueLowDelegation):
			applied = appendOnce(applied, "raise_delegation")
		case strings.Contains(e, issueTotalTasks):
			applied = appendOnce(applied, "normalize_counts")
		}
	}
	return applied
}

func appendOnce(list []string, name string) []string {
	for _, existing := range list {
		if existing == name {
			return list
		}
	}
	return append(list, name)
}
