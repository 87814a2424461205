package models

import (
	"encoding/json"
	"strings"
)

// Owner identifies who performs a task.
type Owner string

const (
	// OwnerAssistant marks a task the assistant takes over.
	OwnerAssistant Owner = "assistant"
	// OwnerPrincipal marks a task the business owner keeps.
	OwnerPrincipal Owner = "principal"
)

// Valid reports whether o is one of the two known owners.
func (o Owner) Valid() bool {
	return o == OwnerAssistant || o == OwnerPrincipal
}

// UnmarshalJSON accepts the owner spellings models tend to produce
// ("EA", "You", "founder", ...) and folds them onto the two canonical values.
// Unknown values are kept verbatim so the quality check can report them.
func (o *Owner) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = ParseOwner(raw)
	return nil
}

// ParseOwner maps a free-form owner label onto an Owner.
func ParseOwner(raw string) Owner {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "assistant", "ea", "executive assistant", "va":
		return OwnerAssistant
	case "principal", "you", "founder", "owner":
		return OwnerPrincipal
	default:
		return Owner(raw)
	}
}

// Cadence is how often a task recurs.
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// Cadences lists the three buckets in report order.
var Cadences = []Cadence{CadenceDaily, CadenceWeekly, CadenceMonthly}

// Priority ranks a task's value.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// MandatoryCategory is one of the four task types every report must contain.
type MandatoryCategory string

const (
	CategoryCorrespondence MandatoryCategory = "correspondence"
	CategoryScheduling     MandatoryCategory = "scheduling"
	CategoryPersonalLife   MandatoryCategory = "personal_life"
	CategoryProcesses      MandatoryCategory = "recurring_processes"
)

// MandatoryCategories lists the required categories in check order.
var MandatoryCategories = []MandatoryCategory{
	CategoryCorrespondence,
	CategoryScheduling,
	CategoryPersonalLife,
	CategoryProcesses,
}

// Label returns the human-readable category name used in validation messages.
func (c MandatoryCategory) Label() string {
	switch c {
	case CategoryCorrespondence:
		return "Email Management"
	case CategoryScheduling:
		return "Calendar Management"
	case CategoryPersonalLife:
		return "Personal Life Management"
	case CategoryProcesses:
		return "Business Process Management"
	default:
		return string(c)
	}
}

// Task is one unit of work in a delegation report.
// Delegated must agree with Owner: Delegated == (Owner == OwnerAssistant).
type Task struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Owner       Owner  `json:"owner"`
	Delegated   bool   `json:"delegated"`
	Category    string `json:"category"`

	Cadence   Cadence           `json:"cadence,omitempty"`
	Priority  Priority          `json:"priority,omitempty"`
	Mandatory MandatoryCategory `json:"mandatory_category,omitempty"`
}

// IsAssistantOwned reports whether the assistant owns the task.
func (t Task) IsAssistantOwned() bool {
	return t.Owner == OwnerAssistant
}

// OwnershipConsistent reports whether the delegation flag agrees with the owner.
func (t Task) OwnershipConsistent() bool {
	return t.Delegated == (t.Owner == OwnerAssistant)
}

// Delegate returns a copy of t handed to the assistant.
func (t Task) Delegate() Task {
	t.Owner = OwnerAssistant
	t.Delegated = true
	return t
}

// Reconciled returns a copy of t whose owner and flag agree.
// A valid owner wins; an unknown owner is derived from the flag.
func (t Task) Reconciled() Task {
	if !t.Owner.Valid() {
		if t.Delegated {
			t.Owner = OwnerAssistant
		} else {
			t.Owner = OwnerPrincipal
		}
	}
	t.Delegated = t.Owner == OwnerAssistant
	return t
}
