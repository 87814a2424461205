package report

import "github.com/harrison/delegate/internal/models"

// delegatableKeywords mark retained tasks that are natural delegation candidates.
var delegatableKeywords = []string{
	"schedule", "book", "coordinate", "manage", "organize", "prepare",
	"research", "compile", "update", "maintain", "track", "monitor",
	"draft", "review", "follow up", "arrange", "handle", "process",
}

// IsDelegationCandidate reports whether t's text suggests an assistant could own it.
func IsDelegationCandidate(t models.Task) bool {
	return containsAny(taskText(t), delegatableKeywords)
}

// CanonicalTask returns the assistant-owned task injected when category c is missing.
func CanonicalTask(c models.MandatoryCategory) models.Task {
	t := models.Task{
		Owner:     models.OwnerAssistant,
		Delegated: true,
		Mandatory: c,
	}
	switch c {
	case models.CategoryCorrespondence:
		t.Title = "Complete Email Management"
		t.Description = "Your assistant manages your entire inbox, responses, filtering, and email workflows so you never have to check email directly."
		t.Cadence = models.CadenceDaily
		t.Category = "Communication"
		t.Priority = models.PriorityHigh
	case models.CategoryScheduling:
		t.Title = "Calendar and Schedule Management"
		t.Description = "Your assistant owns your calendar completely, managing appointments, scheduling, conflicts, and optimizing your time and energy."
		t.Cadence = models.CadenceDaily
		t.Category = "Time Management"
		t.Priority = models.PriorityHigh
	case models.CategoryPersonalLife:
		t.Title = "Personal Life Coordination"
		t.Description = "Your assistant manages travel bookings, personal appointments, vendor communications, family logistics, and personal task coordination."
		t.Cadence = models.CadenceWeekly
		t.Category = "Personal Support"
		t.Priority = models.PriorityMedium
	case models.CategoryProcesses:
		t.Title = "Recurring Business Process Management"
		t.Description = "Your assistant identifies, documents, and manages recurring business processes, continuously finding new areas for delegation and optimization."
		t.Cadence = models.CadenceMonthly
		t.Category = "Operations"
		t.Priority = models.PriorityMedium
	}
	return t
}

// fillerPool holds the retained-owner tasks used to pad short buckets.
var fillerPool = map[models.Cadence][]models.Task{
	models.CadenceDaily: {
		filler("Review Daily Priorities", "Review and prioritize daily tasks and objectives to maintain focus and productivity.", models.CadenceDaily, "Planning"),
		filler("Daily Task Review", "Assess completed tasks and plan remaining work for optimal daily output.", models.CadenceDaily, "Planning"),
	},
	models.CadenceWeekly: {
		filler("Weekly Performance Review", "Analyze weekly progress against goals and adjust strategies for improved performance.", models.CadenceWeekly, "Analysis"),
		filler("Weekly Goal Assessment", "Evaluate progress toward weekly objectives and identify areas for improvement.", models.CadenceWeekly, "Analysis"),
	},
	models.CadenceMonthly: {
		filler("Monthly Strategic Planning", "Conduct monthly strategic planning sessions to align business objectives and resource allocation.", models.CadenceMonthly, "Strategy"),
		filler("Monthly Progress Review", "Review monthly achievements and set direction for upcoming month priorities.", models.CadenceMonthly, "Strategy"),
	},
}

func filler(title, description string, cadence models.Cadence, category string) models.Task {
	return models.Task{
		Title:       title,
		Description: description,
		Owner:       models.OwnerPrincipal,
		Delegated:   false,
		Category:    category,
		Cadence:     cadence,
		Priority:    models.PriorityMedium,
	}
}

// FillerTask returns the pad task for position index in cadence c.
func FillerTask(c models.Cadence, index int) models.Task {
	pool, ok := fillerPool[c]
	if !ok {
		pool = fillerPool[models.CadenceDaily]
	}
	return pool[index%len(pool)]
}
