// Package service ties report generation to its side effects: every
// generated report is validated, archived and announced to the webhook.
// The CLI and the HTTP API both go through it.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/delegate/internal/logger"
	"github.com/harrison/delegate/internal/models"
	"github.com/harrison/delegate/internal/notify"
	"github.com/harrison/delegate/internal/orchestrator"
	"github.com/harrison/delegate/internal/report"
	"github.com/harrison/delegate/internal/store"
)

// Generator produces a report for a lead. *orchestrator.Orchestrator satisfies it.
type Generator interface {
	Generate(ctx context.Context, lead models.LeadContext) (*orchestrator.Result, error)
}

// Archive persists generated reports. *store.Store satisfies it.
type Archive interface {
	Save(ctx context.Context, rec *store.Record) error
}

// InvalidLeadError wraps a lead that failed request validation.
type InvalidLeadError struct {
	Err error
}

func (e *InvalidLeadError) Error() string {
	return fmt.Sprintf("invalid lead: %v", e.Err)
}

func (e *InvalidLeadError) Unwrap() error {
	return e.Err
}

// Options configure a Service. Every field is optional.
type Options struct {
	Archive    Archive
	Notifier   notify.Notifier
	Supervisor *notify.Supervisor
	Backend    string
}

// Service generates reports and runs the follow-up steps.
type Service struct {
	gen    Generator
	opts   Options
	logger logger.Logger
	now    func() time.Time
}

// New creates a Service. The logger parameter is optional and can be nil.
func New(gen Generator, opts Options, l logger.Logger) *Service {
	if gen == nil {
		panic("generator cannot be nil")
	}
	return &Service{gen: gen, opts: opts, logger: logger.OrNop(l), now: time.Now}
}

// Generate validates lead, generates a report and returns the record that
// was archived. Archive and webhook failures are logged, never returned.
func (s *Service) Generate(ctx context.Context, lead models.LeadContext) (*store.Record, error) {
	if err := lead.Validate(); err != nil {
		return nil, &InvalidLeadError{Err: err}
	}

	res, err := s.gen.Generate(ctx, lead)
	if err != nil {
		return nil, err
	}

	rec := NewRecord(res, s.opts.Backend, s.now())

	if s.opts.Archive != nil {
		if err := s.opts.Archive.Save(ctx, rec); err != nil {
			s.logger.LogError(logger.KV("failed to archive report", "id", rec.ID, "error", err))
		}
	}

	if s.opts.Supervisor != nil && s.opts.Notifier != nil {
		notify.Dispatch(s.opts.Supervisor, s.opts.Notifier, EventFor(rec))
	}

	return rec, nil
}

// NewRecord converts an orchestrator result into an archive record with a
// fresh ID. Validation reflects the final report.
func NewRecord(res *orchestrator.Result, backend string, now time.Time) *store.Record {
	rec := &store.Record{
		ID:        uuid.NewString(),
		CreatedAt: now.UTC(),
		Lead:      res.Lead,
		Tier:      res.Tier.String(),
		Backend:   backend,
		Report:    res.Report,
		Duration:  res.Duration,
	}
	if res.Repair != nil {
		rec.Validation = res.Repair.After
		rec.Repaired = res.Repair.Repaired()
		rec.Applied = res.Repair.Applied
	} else {
		rec.Validation = report.Validate(res.Report)
	}
	return rec
}

// EventFor builds the webhook payload for rec.
func EventFor(rec *store.Record) notify.Event {
	return notify.Event{
		Type:              notify.EventReportGenerated,
		ReportID:          rec.ID,
		LeadEmail:         rec.Lead.Email,
		LeadName:          rec.Lead.FullName(),
		LeadType:          string(rec.Lead.LeadType),
		Tier:              rec.Tier,
		DelegationPercent: rec.Report.DelegationPercent,
		Valid:             rec.Validation.Valid,
		Timestamp:         rec.CreatedAt,
	}
}
