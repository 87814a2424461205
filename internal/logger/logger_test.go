package logger

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/delegate/internal/models"
)

type recordingLogger struct {
	messages []string
}

func (r *recordingLogger) LogDebug(m string) { r.messages = append(r.messages, "debug:"+m) }
func (r *recordingLogger) LogInfo(m string)  { r.messages = append(r.messages, "info:"+m) }
func (r *recordingLogger) LogWarn(m string)  { r.messages = append(r.messages, "warn:"+m) }
func (r *recordingLogger) LogError(m string) { r.messages = append(r.messages, "error:"+m) }

func TestOrNop(t *testing.T) {
	if OrNop(nil) != Nop {
		t.Error("expected Nop for nil logger")
	}
	rec := &recordingLogger{}
	if OrNop(rec) != Logger(rec) {
		t.Error("expected the given logger back")
	}
}

func TestMulti(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	m := Multi(a, nil, b)
	m.LogInfo("hello")
	m.LogError("boom")

	for _, rec := range []*recordingLogger{a, b} {
		if len(rec.messages) != 2 || rec.messages[0] != "info:hello" || rec.messages[1] != "error:boom" {
			t.Errorf("unexpected messages: %v", rec.messages)
		}
	}

	if Multi(nil, nil) != Nop {
		t.Error("expected Nop when no loggers are given")
	}
}

func TestKV(t *testing.T) {
	tests := []struct {
		name  string
		msg   string
		pairs []any
		want  string
	}{
		{"no pairs", "start", nil, "start"},
		{"simple", "attempt", []any{"tier", "primary", "n", 2}, "attempt tier=primary n=2"},
		{"quoted", "failed", []any{"err", errors.New("request timed out")}, `failed err="request timed out"`},
		{"dangling key", "x", []any{"a", 1, "b"}, "x a=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KV(tt.msg, tt.pairs...); got != tt.want {
				t.Errorf("KV() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level    string
		wantInfo bool
		wantDbg  bool
	}{
		{"debug", true, true},
		{"info", true, false},
		{"WARN", false, false},
		{"bogus", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			cl := NewConsoleLogger(buf, tt.level)
			cl.LogInfo("info message")
			cl.LogDebug("debug message")

			out := buf.String()
			if strings.Contains(out, "[INFO] info message") != tt.wantInfo {
				t.Errorf("info presence mismatch, output: %q", out)
			}
			if strings.Contains(out, "[DEBUG] debug message") != tt.wantDbg {
				t.Errorf("debug presence mismatch, output: %q", out)
			}
		})
	}
}

func TestConsoleLogger_NilWriter(t *testing.T) {
	cl := NewConsoleLogger(nil, "debug")
	cl.LogInfo("ignored")
	cl.LogBatchProgress(1, 2)
}

func TestConsoleLogger_NoColorForBuffers(t *testing.T) {
	cl := NewConsoleLogger(&bytes.Buffer{}, "info")
	if cl.colorOutput {
		t.Error("expected color disabled for non-terminal writer")
	}
}

func TestConsoleLogger_LogReportSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	cl := NewConsoleLogger(buf, "info")

	analysis := models.ReportAnalysis{Total: 30, Daily: 10, Weekly: 10, Monthly: 10, Delegated: 9, DelegationPercent: 30}
	result := models.ValidationResult{Valid: false, Errors: []string{"EA percentage too low: 30% (minimum 40%)"}}
	cl.LogReportSummary("jane@acme.com", analysis, result, 1500*time.Millisecond)

	out := buf.String()
	for _, want := range []string{
		"=== Report Summary: jane@acme.com ===",
		"Tasks: 30 (daily 10, weekly 10, monthly 10)",
		"Delegated: 9/30 (30%)",
		"Status: INVALID (1 errors, 0 warnings)",
		"Duration: 1s",
		"- EA percentage too low",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestConsoleLogger_LogBatchProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "info").LogBatchProgress(5, 10)
	if !strings.Contains(buf.String(), "Progress: [=====     ] 5/10 (50%)") {
		t.Errorf("unexpected progress output: %q", buf.String())
	}
}

func TestConsoleLogger_WriteKeepsBlocksWhole(t *testing.T) {
	buf := &bytes.Buffer{}
	cl := NewConsoleLogger(buf, "info")
	block := "BLOCK START\n  1. first\n  2. second\nBLOCK END\n"

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := cl.Write([]byte(block)); err != nil {
				t.Errorf("write: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			cl.LogInfo("lead finished")
			cl.LogBatchProgress(1, 8)
		}()
	}
	wg.Wait()

	out := buf.String()
	if got := strings.Count(out, block); got != 8 {
		t.Errorf("expected 8 intact blocks, got %d:\n%s", got, out)
	}
	if got := strings.Count(out, "lead finished"); got != 8 {
		t.Errorf("expected 8 log lines, got %d", got)
	}
}

func TestConsoleLogger_WriteIgnoresLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	n, err := NewConsoleLogger(buf, "error").Write([]byte("shown\n"))
	if err != nil || n != 6 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if buf.String() != "shown\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}

	n, err = NewConsoleLogger(nil, "info").Write([]byte("dropped"))
	if err != nil || n != 7 {
		t.Errorf("nil writer Write() = %d, %v", n, err)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Minute, "2m"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
		{3 * time.Hour, "3h"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	pb := NewProgressBar(4, 0, false)
	if got := pb.Render(); got != "[          ] 0/4 (0%)" {
		t.Errorf("unexpected initial render %q", got)
	}
	pb.Increment()
	pb.Increment()
	if pb.Percentage() != 50 {
		t.Errorf("expected 50%%, got %d", pb.Percentage())
	}
	pb.Update(9)
	if pb.Percentage() != 100 {
		t.Errorf("expected clamp to 100, got %d", pb.Percentage())
	}

	empty := NewProgressBar(0, 5, false)
	if empty.Percentage() != 0 {
		t.Error("expected 0% for empty bar")
	}
}
