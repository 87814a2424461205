package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini defaults.
const (
	DefaultGeminiModel     = "gemini-2.5-flash"
	DefaultTemperature     = 0.6
	DefaultMaxOutputTokens = 4096
)

// GeminiConfig configures a GeminiBackend. Zero values take the defaults above.
type GeminiConfig struct {
	APIKey          string
	Model           string
	BaseURL         string
	Temperature     float32
	MaxOutputTokens int32
}

// GeminiBackend generates reports through the Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiBackend creates a backend. An empty API key is a *ConfigError
// and no client is constructed.
func NewGeminiBackend(ctx context.Context, cfg GeminiConfig) (*GeminiBackend, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ConfigError{Message: "missing API key: set " + EnvGeminiAPIKey + " or " + EnvGoogleAPIKey + " environment variable"}
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultMaxOutputTokens
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiBackend{
		client: client,
		model:  cfg.Model,
		config: &genai.GenerateContentConfig{
			Temperature:      genai.Ptr(cfg.Temperature),
			MaxOutputTokens:  cfg.MaxOutputTokens,
			ResponseMIMEType: "application/json",
		},
	}, nil
}

// Name implements Backend.
func (g *GeminiBackend) Name() string {
	return "gemini"
}

// Model returns the configured model name.
func (g *GeminiBackend) Model() string {
	return g.model
}

// Generate implements Backend.
func (g *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", g.mapError(err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &ParseError{Reason: "empty response"}
	}
	return text, nil
}

func (g *GeminiBackend) mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Backend: g.Name(), Code: apiErr.Code, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &StatusError{Backend: g.Name(), Code: apiErrPtr.Code, Message: apiErrPtr.Message}
	}
	return err
}
