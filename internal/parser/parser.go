// Package parser loads leads and reports from files on disk.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/delegate/internal/generator"
	"github.com/harrison/delegate/internal/models"
)

// Format represents the format of an input file
type Format int

const (
	// FormatUnknown represents an unknown or unsupported file format
	FormatUnknown Format = iota
	// FormatJSON represents a .json file
	FormatJSON
	// FormatYAML represents a .yaml or .yml file
	FormatYAML
	// FormatMarkdown represents a rendered .md or .markdown report
	FormatMarkdown
)

// String returns the string representation of the Format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}

// DetectFormat detects the format from the file extension:
//   - .json -> FormatJSON
//   - .yaml, .yml -> FormatYAML
//   - .md, .markdown -> FormatMarkdown
//   - all others -> FormatUnknown
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatUnknown
	}
}

// ParseLeads reads one lead or a list of leads in JSON or YAML.
func ParseLeads(r io.Reader, format Format) ([]models.LeadContext, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	switch format {
	case FormatJSON:
		trimmed := bytes.TrimSpace(content)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var leads []models.LeadContext
			if err := json.Unmarshal(trimmed, &leads); err != nil {
				return nil, fmt.Errorf("failed to parse lead list: %w", err)
			}
			return leads, nil
		}
		var lead models.LeadContext
		if err := json.Unmarshal(trimmed, &lead); err != nil {
			return nil, fmt.Errorf("failed to parse lead: %w", err)
		}
		return []models.LeadContext{lead}, nil

	case FormatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse lead: %w", err)
		}
		if len(doc.Content) == 0 {
			return nil, fmt.Errorf("empty lead file")
		}
		root := doc.Content[0]
		if root.Kind == yaml.SequenceNode {
			var leads []models.LeadContext
			if err := root.Decode(&leads); err != nil {
				return nil, fmt.Errorf("failed to parse lead list: %w", err)
			}
			return leads, nil
		}
		var lead models.LeadContext
		if err := root.Decode(&lead); err != nil {
			return nil, fmt.Errorf("failed to parse lead: %w", err)
		}
		return []models.LeadContext{lead}, nil

	default:
		return nil, fmt.Errorf("unsupported lead format: %v", format)
	}
}

// ParseLeadFile loads exactly one lead from a .json, .yaml or .yml file.
func ParseLeadFile(path string) (models.LeadContext, error) {
	leads, err := parseLeadPath(path)
	if err != nil {
		return models.LeadContext{}, err
	}
	if len(leads) != 1 {
		return models.LeadContext{}, fmt.Errorf("%s: expected one lead, found %d", path, len(leads))
	}
	return leads[0], nil
}

// ParseLeadsFile loads every lead under path. A directory is read in file
// name order, skipping files with unsupported extensions.
func ParseLeadsFile(path string) ([]models.LeadContext, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}
	if !info.IsDir() {
		return parseLeadPath(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if f := DetectFormat(e.Name()); !e.IsDir() && (f == FormatJSON || f == FormatYAML) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var leads []models.LeadContext
	for _, name := range names {
		batch, err := parseLeadPath(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		leads = append(leads, batch...)
	}
	if len(leads) == 0 {
		return nil, fmt.Errorf("no lead files found in %s", path)
	}
	return leads, nil
}

func parseLeadPath(path string) ([]models.LeadContext, error) {
	format := DetectFormat(path)
	if format != FormatJSON && format != FormatYAML {
		return nil, fmt.Errorf("unknown lead file format: %s (supported: .json, .yaml, .yml)", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	leads, err := ParseLeads(file, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return leads, nil
}

// ParseReport reads a report as JSON, tolerating the same formatting
// artifacts as backend replies, or as a rendered Markdown report.
func ParseReport(r io.Reader, format Format) (models.Report, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to read content: %w", err)
	}
	switch format {
	case FormatJSON:
		return generator.ParseReport(string(content))
	case FormatMarkdown:
		return NewMarkdownParser().Parse(content)
	default:
		return models.Report{}, fmt.Errorf("unsupported report format: %v", format)
	}
}

// ParseReportFile loads a report from a .json, .md or .markdown file.
func ParseReportFile(path string) (models.Report, error) {
	format := DetectFormat(path)
	if format != FormatJSON && format != FormatMarkdown {
		return models.Report{}, fmt.Errorf("unknown report file format: %s (supported: .json, .md, .markdown)", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	report, err := ParseReport(file, format)
	if err != nil {
		return models.Report{}, fmt.Errorf("%s: %w", path, err)
	}
	return report, nil
}
