// Package store archives generated reports in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/delegate/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when no report has the requested ID.
var ErrNotFound = errors.New("report not found")

// Record is one archived generation.
type Record struct {
	ID         string                  `json:"id"`
	CreatedAt  time.Time               `json:"created_at"`
	Lead       models.LeadContext      `json:"lead"`
	Tier       string                  `json:"tier"`
	Backend    string                  `json:"backend,omitempty"`
	Report     models.Report           `json:"report"`
	Validation models.ValidationResult `json:"validation"`
	Repaired   bool                    `json:"repaired"`
	Applied    []string                `json:"applied,omitempty"`
	Duration   time.Duration           `json:"duration"`
}

// Summary is the listing view of a Record.
type Summary struct {
	ID                string    `json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	LeadEmail         string    `json:"lead_email"`
	LeadName          string    `json:"lead_name,omitempty"`
	LeadType          string    `json:"lead_type"`
	Tier              string    `json:"tier"`
	DelegationPercent int       `json:"delegation_percent"`
	TotalCount        int       `json:"total_count"`
	Valid             bool      `json:"valid"`
}

// Store manages the SQLite report archive.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens or creates the database at dbPath. ":memory:" is supported.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// execWithRetry retries statements that fail with "database is locked".
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.dbPath
}

// Save inserts rec, assigning an ID and creation time when unset.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	leadJSON, err := json.Marshal(rec.Lead)
	if err != nil {
		return fmt.Errorf("marshal lead: %w", err)
	}
	reportJSON, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	validationJSON, err := json.Marshal(rec.Validation)
	if err != nil {
		return fmt.Errorf("marshal validation: %w", err)
	}
	appliedJSON := "[]"
	if len(rec.Applied) > 0 {
		data, err := json.Marshal(rec.Applied)
		if err != nil {
			return fmt.Errorf("marshal applied fixers: %w", err)
		}
		appliedJSON = string(data)
	}

	query := `INSERT INTO reports
		(id, created_at, lead_email, lead_name, lead_type, tier, backend, delegation_percent, total_count, valid, repaired, duration_ms, lead_json, report_json, validation_json, applied_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		rec.ID,
		rec.CreatedAt.UnixNano(),
		rec.Lead.Email,
		rec.Lead.FullName(),
		string(rec.Lead.LeadType),
		rec.Tier,
		rec.Backend,
		rec.Report.DelegationPercent,
		rec.Report.TotalCount,
		rec.Validation.Valid,
		rec.Repaired,
		rec.Duration.Milliseconds(),
		string(leadJSON),
		string(reportJSON),
		string(validationJSON),
		appliedJSON,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Get loads the record with id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	query := `SELECT id, created_at, tier, backend, repaired, duration_ms, lead_json, report_json, validation_json, applied_json
		FROM reports WHERE id = ?`

	var (
		rec                                  Record
		createdAt                            int64
		backend, appliedJSON                 sql.NullString
		durationMs                           sql.NullInt64
		leadJSON, reportJSON, validationJSON string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &createdAt, &rec.Tier, &backend, &rec.Repaired, &durationMs,
		&leadJSON, &reportJSON, &validationJSON, &appliedJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}

	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	rec.Backend = backend.String
	rec.Duration = time.Duration(durationMs.Int64) * time.Millisecond

	if err := json.Unmarshal([]byte(leadJSON), &rec.Lead); err != nil {
		return nil, fmt.Errorf("unmarshal lead: %w", err)
	}
	if err := json.Unmarshal([]byte(reportJSON), &rec.Report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	if err := json.Unmarshal([]byte(validationJSON), &rec.Validation); err != nil {
		return nil, fmt.Errorf("unmarshal validation: %w", err)
	}
	if appliedJSON.Valid && appliedJSON.String != "" {
		if err := json.Unmarshal([]byte(appliedJSON.String), &rec.Applied); err != nil {
			return nil, fmt.Errorf("unmarshal applied fixers: %w", err)
		}
		if len(rec.Applied) == 0 {
			rec.Applied = nil
		}
	}
	return &rec, nil
}

// List returns up to limit summaries, newest first. A non-positive limit
// returns every row. A non-empty email filters by lead email.
func (s *Store) List(ctx context.Context, email string, limit int) ([]Summary, error) {
	query := `SELECT id, created_at, lead_email, lead_name, lead_type, tier, delegation_percent, total_count, valid
		FROM reports`
	var args []any
	if email != "" {
		query += ` WHERE lead_email = ?`
		args = append(args, email)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum            Summary
			createdAt      int64
			name, leadType sql.NullString
		)
		if err := rows.Scan(&sum.ID, &createdAt, &sum.LeadEmail, &name, &leadType, &sum.Tier,
			&sum.DelegationPercent, &sum.TotalCount, &sum.Valid); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		sum.CreatedAt = time.Unix(0, createdAt).UTC()
		sum.LeadName = name.String
		sum.LeadType = leadType.String
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

// Count returns the number of archived reports.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}
