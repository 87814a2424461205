package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/delegate/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(email string, created time.Time) *Record {
	task := models.Task{
		Title:       "Inbox triage",
		Description: "Sort and answer routine client email every morning.",
		Owner:       models.OwnerAssistant,
		Delegated:   true,
		Cadence:     models.CadenceDaily,
		Priority:    models.PriorityHigh,
		Mandatory:   models.CategoryCorrespondence,
	}
	return &Record{
		CreatedAt: created,
		Lead: models.LeadContext{
			LeadType:  models.LeadTypeMain,
			Email:     email,
			FirstName: "Jane",
			LastName:  "Doe",
			Timestamp: "2024-05-01T10:00:00Z",
		},
		Tier:    "primary",
		Backend: "gemini",
		Report: models.Report{
			Tasks:             models.TaskSet{Daily: []models.Task{task}, Weekly: []models.Task{}, Monthly: []models.Task{}},
			DelegationPercent: 100,
			DelegatedCount:    1,
			TotalCount:        1,
			Summary:           "one task",
		},
		Validation: models.ValidationResult{Valid: false, Errors: []string{"Expected 30 total tasks, got 1"}, Warnings: []string{}},
		Repaired:   true,
		Applied:    []string{"normalize_counts"},
		Duration:   1500 * time.Millisecond,
	}
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		dbPath  string
		wantErr bool
	}{
		{"creates database", filepath.Join(t.TempDir(), "test.db"), false},
		{"in-memory database", ":memory:", false},
		{"creates parent directories", filepath.Join(t.TempDir(), "nested", "dir", "test.db"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(tt.dbPath)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer s.Close()

			v, err := s.LatestVersion()
			require.NoError(t, err)
			assert.Equal(t, 1, v)
			assert.Equal(t, tt.dbPath, s.Path())
		})
	}
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	rec := sampleRecord("jane@acme.com", time.Time{})
	require.NoError(t, s.Save(context.Background(), rec))
	require.NoError(t, s.Close())

	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
}

func TestSaveAndGet_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec := sampleRecord("jane@acme.com", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	require.NoError(t, s.Save(ctx, rec))
	assert.NotEmpty(t, rec.ID, "ID assigned on save")

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_DuplicateIDFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec := sampleRecord("jane@acme.com", time.Time{})
	rec.ID = "fixed"

	require.NoError(t, s.Save(ctx, rec))
	assert.Error(t, s.Save(ctx, rec))
}

func TestGet_NotFound(t *testing.T) {
	_, err := newTestStore(t).Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestList_NewestFirstWithFilterAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, email := range []string{"a@acme.com", "b@acme.com", "a@acme.com"} {
		require.NoError(t, s.Save(ctx, sampleRecord(email, base.Add(time.Duration(i)*time.Hour))))
	}

	all, err := s.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))
	assert.Equal(t, "Jane Doe", all[0].LeadName)
	assert.Equal(t, "main", all[0].LeadType)
	assert.False(t, all[0].Valid)

	filtered, err := s.List(ctx, "a@acme.com", 0)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	limited, err := s.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, all[0].ID, limited[0].ID)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
