package generator

import (
	"os"
	"strings"
)

// Credential sources, in precedence order.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
)

// ResolveAPIKey returns the first non-blank key among the credential sources.
// getenv defaults to os.Getenv when nil.
func ResolveAPIKey(getenv func(string) string) (string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, name := range []string{EnvGeminiAPIKey, EnvGoogleAPIKey} {
		if key := strings.TrimSpace(getenv(name)); key != "" {
			return key, nil
		}
	}
	return "", &ConfigError{Message: "missing API key: set " + EnvGeminiAPIKey + " or " + EnvGoogleAPIKey + " environment variable"}
}
