// Package orchestrator drives report generation through escalating prompt
// tiers until a backend reply parses or every tier has failed.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harrison/delegate/internal/generator"
	"github.com/harrison/delegate/internal/logger"
	"github.com/harrison/delegate/internal/models"
	"github.com/harrison/delegate/internal/prompt"
	"github.com/harrison/delegate/internal/report"
)

// Generator turns a prompt into a candidate report. *generator.Client
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (models.Report, error)
}

// PromptBuilder produces the prompt for a tier. *prompt.Builder satisfies it.
type PromptBuilder interface {
	Build(tier prompt.Tier, lead models.LeadContext) string
}

// Enricher looks up a website summary for a lead that has none.
type Enricher interface {
	Enrich(ctx context.Context, lead models.LeadContext) (*models.WebsiteSummary, error)
}

// Repairer brings a parsed report into compliance. *report.Pipeline satisfies it.
type Repairer interface {
	Repair(r models.Report) report.Outcome
}

// Options configure an Orchestrator.
type Options struct {
	// AutoRepair runs the Repairer on every successful report.
	AutoRepair bool

	// Enricher is optional; nil skips website enrichment.
	Enricher Enricher

	// Repairer defaults to report.NewPipeline when AutoRepair is set.
	Repairer Repairer
}

// DefaultOptions enables auto-repair without enrichment.
func DefaultOptions() Options {
	return Options{AutoRepair: true}
}

// Result is a successful generation.
type Result struct {
	Report   models.Report
	Lead     models.LeadContext
	Tier     prompt.Tier
	Attempts []*AttemptError
	Repair   *report.Outcome
	Duration time.Duration
}

// Orchestrator runs the Primary -> Simplified -> Emergency state machine.
// It holds no per-run state and is safe for concurrent use.
type Orchestrator struct {
	generator Generator
	builder   PromptBuilder
	opts      Options
	logger    logger.Logger
}

// New creates an Orchestrator. The logger parameter is optional and can be nil.
func New(gen Generator, builder PromptBuilder, opts Options, l logger.Logger) *Orchestrator {
	if gen == nil {
		panic("generator cannot be nil")
	}
	if builder == nil {
		panic("prompt builder cannot be nil")
	}
	l = logger.OrNop(l)
	if opts.AutoRepair && opts.Repairer == nil {
		opts.Repairer = report.NewPipeline(l)
	}
	return &Orchestrator{generator: gen, builder: builder, opts: opts, logger: l}
}

// Generate produces a report for lead. Attempts run strictly in sequence.
// A *generator.ConfigError is returned as soon as it occurs; otherwise the
// caller gets either a Result or an *ExhaustedError naming every attempt.
func (o *Orchestrator) Generate(ctx context.Context, lead models.LeadContext) (*Result, error) {
	start := time.Now()
	lead = o.enrich(ctx, lead.WithDefaults(start))

	var attempts []*AttemptError
	state := StatePrimary

	for !state.Terminal() {
		tier, _ := state.Tier()
		p := o.builder.Build(tier, lead)

		o.logger.LogInfo(logger.KV("generation attempt", "state", state, "lead_type", lead.LeadType))
		r, err := o.generator.Generate(ctx, p)

		if err == nil {
			res := &Result{Report: r, Lead: lead, Tier: tier, Attempts: attempts}
			if o.opts.AutoRepair {
				outcome := o.opts.Repairer.Repair(r)
				res.Report = outcome.Report
				res.Repair = &outcome
			}
			res.Duration = time.Since(start)
			o.logger.LogInfo(logger.KV("report generated",
				"tier", tier,
				"failed_attempts", len(attempts),
				"tasks", res.Report.Tasks.Len(),
				"delegation", fmt.Sprintf("%d%%", res.Report.DelegationPercent)))
			return res, nil
		}

		var cfgErr *generator.ConfigError
		if errors.As(err, &cfgErr) {
			o.logger.LogError(logger.KV("generation not configured", "error", err))
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("generation cancelled during %s attempt: %w", state, ctxErr)
		}

		attempts = append(attempts, &AttemptError{State: state, Err: err, Timestamp: time.Now()})
		o.logger.LogWarn(logger.KV("generation attempt failed", "state", state, "error", err))
		state = Next(state, err)
	}

	exhausted := &ExhaustedError{LeadType: lead.LeadType, Attempts: attempts}
	o.logger.LogError(exhausted.Error())
	return nil, exhausted
}

// enrich fills WebsiteSummary when an Enricher is configured. Failures are
// logged and the lead is returned unchanged.
func (o *Orchestrator) enrich(ctx context.Context, lead models.LeadContext) models.LeadContext {
	if o.opts.Enricher == nil || lead.WebsiteSummary != nil {
		return lead
	}
	summary, err := o.opts.Enricher.Enrich(ctx, lead)
	if err != nil {
		o.logger.LogWarn(logger.KV("website enrichment failed", "email", lead.Email, "error", err))
		return lead
	}
	if summary != nil {
		lead.WebsiteSummary = summary
		o.logger.LogDebug(logger.KV("website enriched", "url", summary.URL, "content", len(summary.Content)))
	}
	return lead
}
