package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultClaudeSystemPrompt keeps the CLI reply to a bare JSON payload.
const DefaultClaudeSystemPrompt = "You write delegation reports. Your ONLY output must be a single valid JSON object. No markdown, no code fences, no prose, no explanations."

var (
	cleanTmpOnce sync.Once
	cleanTmpDir  string
)

// claudeTmpDir returns a dedicated TMPDIR for CLI invocations. Editor socket
// files in the shared temp dir crash the CLI when --settings is passed.
func claudeTmpDir() string {
	cleanTmpOnce.Do(func() {
		cleanTmpDir = filepath.Join(os.TempDir(), "delegate-claude")
		_ = os.MkdirAll(cleanTmpDir, 0755)
	})
	return cleanTmpDir
}

// setCleanEnv copies the environment with TMPDIR pointed at claudeTmpDir.
func setCleanEnv(cmd *exec.Cmd) {
	cmd.Env = os.Environ()
	for i, env := range cmd.Env {
		if strings.HasPrefix(env, "TMPDIR=") {
			cmd.Env[i] = "TMPDIR=" + claudeTmpDir()
			return
		}
	}
	cmd.Env = append(cmd.Env, "TMPDIR="+claudeTmpDir())
}

// ClaudeCLIBackend generates reports by running the claude CLI in print mode.
type ClaudeCLIBackend struct {
	// Path is the CLI binary. Defaults to "claude" on PATH.
	Path string

	// SystemPrompt defaults to DefaultClaudeSystemPrompt.
	SystemPrompt string
}

// NewClaudeCLIBackend creates a backend for the binary at path.
func NewClaudeCLIBackend(path string) *ClaudeCLIBackend {
	if path == "" {
		path = "claude"
	}
	return &ClaudeCLIBackend{Path: path, SystemPrompt: DefaultClaudeSystemPrompt}
}

// Name implements Backend.
func (c *ClaudeCLIBackend) Name() string {
	return "claude-cli"
}

// Generate implements Backend. A missing binary is a *ConfigError; a
// non-zero exit is a *StatusError carrying the exit code and stderr.
func (c *ClaudeCLIBackend) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt is required")
	}

	systemPrompt := c.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultClaudeSystemPrompt
	}
	path := c.Path
	if path == "" {
		path = "claude"
	}

	args := []string{
		"--system-prompt", systemPrompt,
		"-p", prompt,
		"--output-format", "json",
		"--settings", `{"disableAllHooks": true}`,
	}

	cmd := exec.CommandContext(ctx, path, args...)
	setCleanEnv(cmd)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return "", &ConfigError{Message: fmt.Sprintf("claude CLI not found at %q: install it or set claude.path", path)}
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &StatusError{Backend: c.Name(), Code: exitErr.ExitCode(), Message: strings.TrimSpace(stderr.String())}
		}
		return "", fmt.Errorf("claude invocation failed: %w", err)
	}

	return parseCLIEnvelope(output)
}

// cliEnvelope is the --output-format json wrapper around the model reply.
type cliEnvelope struct {
	Type             string          `json:"type"`
	IsError          bool            `json:"is_error"`
	Result           string          `json:"result"`
	Content          string          `json:"content"`
	StructuredOutput json.RawMessage `json:"structured_output"`
	SessionID        string          `json:"session_id"`
}

// parseCLIEnvelope extracts the reply text. structured_output wins over
// result, which wins over content. Output that is not an envelope is
// returned as-is for the report parser to handle.
func parseCLIEnvelope(output []byte) (string, error) {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return "", &ParseError{Reason: "empty response"}
	}

	var env cliEnvelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		extracted := ExtractJSON(trimmed)
		if extracted == "" || json.Unmarshal([]byte(extracted), &env) != nil {
			return trimmed, nil
		}
	}

	if env.IsError {
		return "", &StatusError{Backend: "claude-cli", Code: 1, Message: env.Result}
	}
	if len(env.StructuredOutput) > 0 && string(env.StructuredOutput) != "null" {
		return string(env.StructuredOutput), nil
	}
	if env.Result != "" {
		return env.Result, nil
	}
	if env.Content != "" {
		return env.Content, nil
	}
	return trimmed, nil
}
