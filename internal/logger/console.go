package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/delegate/internal/models"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger writes leveled messages to a writer with [HH:MM:SS] timestamps.
// Color output is enabled only when the writer is a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to writer.
// A nil writer discards everything. Valid levels are trace, debug, info,
// warn and error (case-insensitive); anything else means info.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether w is a TTY that should receive ANSI colors.
// NO_COLOR (honored by fatih/color) disables color even on a TTY.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel lowercases level and falls back to "info" when it is not recognised.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	default:
		return "info"
	}
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
// Format: "[HH:MM:SS] [INFO] <message>"
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	levelText := level
	if cl.colorOutput {
		levelText = levelColor(level).Sprint(level)
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", timestamp(), levelText, message)
}

func levelColor(level string) *color.Color {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "INFO":
		return color.New(color.FgBlue)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}

// LogReportSummary logs the shape and validity of a finished report at INFO level.
func (cl *ConsoleLogger) LogReportSummary(label string, analysis models.ReportAnalysis, result models.ValidationResult, duration time.Duration) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	status := "VALID"
	if !result.Valid {
		status = "INVALID"
	}

	header := fmt.Sprintf("=== Report Summary: %s ===", label)
	delegation := fmt.Sprintf("Delegated: %d/%d (%d%%)", analysis.Delegated, analysis.Total, analysis.DelegationPercent)
	if cl.colorOutput {
		header = color.New(color.Bold).Sprint(header)
		if result.Valid {
			status = color.New(color.FgGreen).Sprint(status)
		} else {
			status = color.New(color.FgRed).Sprint(status)
		}
		if analysis.DelegationPercent < models.MinDelegationPercent {
			delegation = color.New(color.FgYellow).Sprint(delegation)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", ts, header)
	fmt.Fprintf(&b, "[%s] Tasks: %d (daily %d, weekly %d, monthly %d)\n", ts, analysis.Total, analysis.Daily, analysis.Weekly, analysis.Monthly)
	fmt.Fprintf(&b, "[%s] %s\n", ts, delegation)
	fmt.Fprintf(&b, "[%s] Status: %s (%d errors, %d warnings)\n", ts, status, len(result.Errors), len(result.Warnings))
	if duration > 0 {
		fmt.Fprintf(&b, "[%s] Duration: %s\n", ts, formatDuration(duration))
	}
	for _, e := range result.Errors {
		fmt.Fprintf(&b, "[%s]   - %s\n", ts, e)
	}

	io.WriteString(cl.writer, b.String())
}

// LogBatchProgress logs how many leads of a batch have finished.
// Format: "[HH:MM:SS] Progress: [=====     ] 5/10 (50%)"
func (cl *ConsoleLogger) LogBatchProgress(done, total int) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	pb := NewProgressBar(total, 10, cl.colorOutput)
	pb.Update(done)
	fmt.Fprintf(cl.writer, "[%s] Progress: %s\n", timestamp(), pb.Render())
}

// Write writes p to the underlying writer unchanged, holding the same lock as
// the log methods so a multi-line block is never split by a log line.
// It ignores the log level; a nil writer discards p.
func (cl *ConsoleLogger) Write(p []byte) (int, error) {
	if cl.writer == nil {
		return len(p), nil
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	return cl.writer.Write(p)
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration renders d compactly: "850ms", "5s", "1m30s", "2h15m".
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		d = d.Round(time.Minute)
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case d >= time.Minute:
		d = d.Round(time.Second)
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}
