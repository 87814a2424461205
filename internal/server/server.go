// Package server exposes report generation over HTTP.
package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/harrison/delegate/internal/logger"
	"github.com/harrison/delegate/internal/models"
	"github.com/harrison/delegate/internal/parser"
	"github.com/harrison/delegate/internal/render"
	"github.com/harrison/delegate/internal/store"
)

// Generator produces and archives a report. *service.Service satisfies it.
type Generator interface {
	Generate(ctx context.Context, lead models.LeadContext) (*store.Record, error)
}

// Reports reads archived reports. *store.Store satisfies it.
type Reports interface {
	Get(ctx context.Context, id string) (*store.Record, error)
	List(ctx context.Context, email string, limit int) ([]store.Summary, error)
}

// Config for the HTTP API handler.
type Config struct {
	Generator Generator
	Reports   Reports
	BasePath  string
	Logger    logger.Logger
}

// DefaultListLimit caps GET /reports when no limit is given.
const DefaultListLimit = 50

// ReportResponse is the body returned for a generated or archived report.
type ReportResponse struct {
	ID         string                  `json:"id"`
	CreatedAt  time.Time               `json:"createdAt"`
	Tier       string                  `json:"tier"`
	Backend    string                  `json:"backend,omitempty"`
	Report     models.Report           `json:"report"`
	Validation models.ValidationResult `json:"validation"`
	Repaired   bool                    `json:"repaired"`
	Applied    []string                `json:"applied,omitempty"`
	DurationMs int64                   `json:"durationMs"`
	Lead       models.LeadContext      `json:"lead"`
}

func newReportResponse(rec *store.Record) ReportResponse {
	return ReportResponse{
		ID:         rec.ID,
		CreatedAt:  rec.CreatedAt,
		Tier:       rec.Tier,
		Backend:    rec.Backend,
		Report:     rec.Report,
		Validation: rec.Validation,
		Repaired:   rec.Repaired,
		Applied:    rec.Applied,
		DurationMs: rec.Duration.Milliseconds(),
		Lead:       rec.Lead,
	}
}

type reportOutput struct {
	Body ReportResponse
}

type htmlOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type listOutput struct {
	Body struct {
		Reports []store.Summary `json:"reports"`
	}
}

type healthOutput struct {
	Body struct {
		Status string `json:"status" example:"ok"`
	}
}

// New returns an HTTP handler exposing the delegate API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if cfg.Reports == nil {
		return nil, fmt.Errorf("report store is required")
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v1"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	log := logger.OrNop(cfg.Logger)

	installErrorEnvelope()

	router := chi.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(accessLogMiddleware(log))
	router.Use(middleware.Recoverer)

	hcfg := huma.DefaultConfig("Delegate API", "1.0.0")
	hcfg.OpenAPIPath = basePath + "/openapi"
	hcfg.DocsPath = ""
	// Plain JSON bodies without $schema links.
	hcfg.CreateHooks = nil
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerGenerate(group, cfg.Generator, log)
	registerReports(group, cfg.Reports)

	return router, nil
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*healthOutput, error) {
		out := &healthOutput{}
		out.Body.Status = "ok"
		return out, nil
	})
}

func registerGenerate(api huma.API, gen Generator, log logger.Logger) {
	huma.Register(api, huma.Operation{
		OperationID: "generate-report",
		Method:      http.MethodPost,
		Path:        "/reports",
		Summary:     "Generate a delegation report for a lead",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusBadGateway,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		RawBody []byte
	}) (*reportOutput, error) {
		leads, err := parser.ParseLeads(bytes.NewReader(input.RawBody), parser.FormatJSON)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		if len(leads) != 1 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request",
				fmt.Sprintf("expected exactly one lead, got %d", len(leads)), nil)
		}

		rec, err := gen.Generate(ctx, leads[0])
		if err != nil {
			log.LogWarn(logger.KV("report request failed", "request_id", RequestID(ctx), "error", err))
			return nil, handleError(err)
		}
		return &reportOutput{Body: newReportResponse(rec)}, nil
	})
}

func registerReports(api huma.API, reports Reports) {
	type reportPath struct {
		ID string `path:"id" doc:"Report ID"`
	}

	huma.Register(api, huma.Operation{
		OperationID: "list-reports",
		Method:      http.MethodGet,
		Path:        "/reports",
		Summary:     "List archived reports, newest first",
	}, func(ctx context.Context, input *struct {
		Email string `query:"email" doc:"Filter by lead email"`
		Limit int    `query:"limit" minimum:"0" maximum:"500"`
	}) (*listOutput, error) {
		limit := input.Limit
		if limit == 0 {
			limit = DefaultListLimit
		}
		summaries, err := reports.List(ctx, input.Email, limit)
		if err != nil {
			return nil, handleError(err)
		}
		out := &listOutput{}
		out.Body.Reports = summaries
		if out.Body.Reports == nil {
			out.Body.Reports = []store.Summary{}
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-report",
		Method:      http.MethodGet,
		Path:        "/reports/{id}",
		Summary:     "Fetch an archived report",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *reportPath) (*reportOutput, error) {
		rec, err := reports.Get(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &reportOutput{Body: newReportResponse(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-report-html",
		Method:      http.MethodGet,
		Path:        "/reports/{id}/html",
		Summary:     "Render an archived report as HTML",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *reportPath) (*htmlOutput, error) {
		rec, err := reports.Get(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		page, err := render.HTML(render.Document{
			ID:          rec.ID,
			Lead:        rec.Lead,
			Report:      rec.Report,
			GeneratedAt: rec.CreatedAt,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &htmlOutput{ContentType: "text/html; charset=utf-8", Body: []byte(page)}, nil
	})
}
