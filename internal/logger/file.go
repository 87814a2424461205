package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/delegate/internal/models"
)

// FileLogger writes a timestamped run log plus one detail file per report.
// The run log lives at <logDir>/run-YYYYMMDD-HHMMSS.log and latest.log
// always points at the most recent run.
type FileLogger struct {
	logDir     string
	runLog     *os.File
	runFile    string
	reportsDir string
	logLevel   string
	mu         sync.Mutex
}

// NewFileLogger creates a FileLogger under .delegate/logs at info level.
func NewFileLogger() (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(filepath.Join(".delegate", "logs"), "info")
}

// NewFileLoggerWithDirAndLevel creates a FileLogger in logDir with the given level.
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	reportsDir := filepath.Join(logDir, "reports")
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405")))
	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:     logDir,
		runLog:     file,
		runFile:    runFile,
		reportsDir: reportsDir,
		logLevel:   normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== Delegate Run Log ===\n")
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// RunFile returns the path of this run's log file.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogTrace logs a trace-level message.
func (fl *FileLogger) LogTrace(message string) { fl.logWithLevel("TRACE", message) }

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) { fl.logWithLevel("DEBUG", message) }

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) { fl.logWithLevel("INFO", message) }

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) { fl.logWithLevel("WARN", message) }

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) { fl.logWithLevel("ERROR", message) }

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format("15:04:05"), level, message))
}

// LogReportResult writes reports/report-<id>.log holding the validation
// outcome and the final report as indented JSON.
func (fl *FileLogger) LogReportResult(id string, lead models.LeadContext, tier string, report models.Report, result models.ValidationResult) error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	path := filepath.Join(fl.reportsDir, fmt.Sprintf("report-%s.log", id))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create report log file: %w", err)
	}
	defer file.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "=== Report %s ===\n", id)
	fmt.Fprintf(&b, "Lead: %s <%s> (%s)\n", lead.FullName(), lead.Email, lead.LeadType)
	fmt.Fprintf(&b, "Tier: %s\n", tier)
	fmt.Fprintf(&b, "Valid: %t (%d errors, %d warnings)\n", result.Valid, len(result.Errors), len(result.Warnings))
	for _, e := range result.Errors {
		fmt.Fprintf(&b, "  error: %s\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", w)
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	fmt.Fprintf(&b, "\nReport:\n%s\n\n", body)
	fmt.Fprintf(&b, "Completed at: %s\n", time.Now().Format(time.RFC3339))

	if _, err := file.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write report log: %w", err)
	}
	return nil
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}
	return nil
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}
