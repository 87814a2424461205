package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/delegate/internal/models"
)

func TestFileLogger_CreatesRunLogAndSymlink(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")

	fl, err := NewFileLoggerWithDirAndLevel(logDir, "info")
	if err != nil {
		t.Fatalf("NewFileLoggerWithDirAndLevel() error = %v", err)
	}
	defer fl.Close()

	if !strings.HasPrefix(filepath.Base(fl.RunFile()), "run-") {
		t.Errorf("unexpected run file name %q", fl.RunFile())
	}

	target, err := os.Readlink(filepath.Join(logDir, "latest.log"))
	if err != nil {
		t.Fatalf("latest.log symlink missing: %v", err)
	}
	if target != filepath.Base(fl.RunFile()) {
		t.Errorf("latest.log points to %q, want %q", target, filepath.Base(fl.RunFile()))
	}
}

func TestFileLogger_LevelFiltering(t *testing.T) {
	fl, err := NewFileLoggerWithDirAndLevel(t.TempDir(), "warn")
	if err != nil {
		t.Fatalf("NewFileLoggerWithDirAndLevel() error = %v", err)
	}
	fl.LogInfo("hidden info")
	fl.LogWarn("visible warning")
	if err := fl.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(fl.RunFile())
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "=== Delegate Run Log ===") {
		t.Error("missing run log header")
	}
	if strings.Contains(content, "hidden info") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(content, "[WARN] visible warning") {
		t.Errorf("warn message missing:\n%s", content)
	}
}

func TestFileLogger_LogReportResult(t *testing.T) {
	logDir := t.TempDir()
	fl, err := NewFileLoggerWithDirAndLevel(logDir, "info")
	if err != nil {
		t.Fatalf("NewFileLoggerWithDirAndLevel() error = %v", err)
	}
	defer fl.Close()

	lead := models.LeadContext{FirstName: "Jane", LastName: "Doe", Email: "jane@acme.com", LeadType: models.LeadTypeMain}
	report := models.Report{
		Tasks:   models.TaskSet{Daily: []models.Task{{Title: "Inbox triage", Owner: models.OwnerAssistant, Delegated: true}}},
		Summary: "summary text",
	}
	result := models.ValidationResult{Valid: false, Errors: []string{"Invalid total tasks: 1 (expected 30)"}}

	if err := fl.LogReportResult("abc", lead, "primary", report, result); err != nil {
		t.Fatalf("LogReportResult() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(logDir, "reports", "report-abc.log"))
	if err != nil {
		t.Fatalf("read report log: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"=== Report abc ===",
		"Lead: Jane Doe <jane@acme.com> (main)",
		"Tier: primary",
		"error: Invalid total tasks: 1 (expected 30)",
		`"title": "Inbox triage"`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("expected %q in report log:\n%s", want, content)
		}
	}
}

func TestFileLogger_CloseTwice(t *testing.T) {
	fl, err := NewFileLoggerWithDirAndLevel(t.TempDir(), "info")
	if err != nil {
		t.Fatalf("NewFileLoggerWithDirAndLevel() error = %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	fl.LogInfo("after close is ignored")
}
