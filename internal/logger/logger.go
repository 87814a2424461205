// Package logger provides leveled logging for the report pipeline.
//
// Components receive a Logger through their constructors; a nil Logger is
// replaced with Nop so logging is never required for correctness. Console and
// file implementations are safe for concurrent use.
package logger

import (
	"fmt"
	"strings"
)

// Logger is the logging capability handed to every pipeline component.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
func (nopLogger) LogInfo(string)  {}
func (nopLogger) LogWarn(string)  {}
func (nopLogger) LogError(string) {}

// Nop is a Logger that discards all messages.
var Nop Logger = nopLogger{}

// OrNop returns l, or Nop when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop
	}
	return l
}

// multiLogger fans every message out to several loggers.
type multiLogger []Logger

// Multi returns a Logger writing to each non-nil logger in order.
func Multi(loggers ...Logger) Logger {
	var m multiLogger
	for _, l := range loggers {
		if l != nil {
			m = append(m, l)
		}
	}
	if len(m) == 0 {
		return Nop
	}
	return m
}

func (m multiLogger) LogDebug(message string) {
	for _, l := range m {
		l.LogDebug(message)
	}
}

func (m multiLogger) LogInfo(message string) {
	for _, l := range m {
		l.LogInfo(message)
	}
}

func (m multiLogger) LogWarn(message string) {
	for _, l := range m {
		l.LogWarn(message)
	}
}

func (m multiLogger) LogError(message string) {
	for _, l := range m {
		l.LogError(message)
	}
}

// KV appends key=value pairs to message. Values containing spaces are quoted.
// A trailing key without a value is dropped.
//
//	KV("attempt failed", "tier", "primary", "err", err)
//	=> attempt failed tier=primary err="request timed out after 30s"
func KV(message string, pairs ...any) string {
	if len(pairs) < 2 {
		return message
	}
	var b strings.Builder
	b.WriteString(message)
	for i := 0; i+1 < len(pairs); i += 2 {
		value := fmt.Sprint(pairs[i+1])
		if strings.ContainsAny(value, " \t\n\"") {
			value = fmt.Sprintf("%q", value)
		}
		fmt.Fprintf(&b, " %v=%s", pairs[i], value)
	}
	return b.String()
}
