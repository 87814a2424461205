package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harrison/delegate/internal/filelock"
	"github.com/harrison/delegate/internal/render"
	"github.com/harrison/delegate/internal/store"
)

// Output formats accepted by --format.
const (
	formatMarkdown = "md"
	formatHTML     = "html"
	formatJSON     = "json"
)

func validFormat(f string) error {
	switch f {
	case formatMarkdown, formatHTML, formatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format %q, must be one of: md, html, json", f)
	}
}

// renderRecord formats rec for writing to a file or stdout.
func renderRecord(rec *store.Record, format string) ([]byte, error) {
	doc := render.Document{
		ID:          rec.ID,
		Lead:        rec.Lead,
		Report:      rec.Report,
		GeneratedAt: rec.CreatedAt,
	}
	switch format {
	case formatHTML:
		page, err := render.HTML(doc)
		if err != nil {
			return nil, err
		}
		return []byte(page), nil
	case formatJSON:
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal report: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return []byte(render.Markdown(doc)), nil
	}
}

// reportFileName is "<email-local-part>-<id prefix>.<format>".
func reportFileName(rec *store.Record, format string) string {
	local := rec.Lead.Email
	if i := strings.IndexByte(local, '@'); i > 0 {
		local = local[:i]
	}
	local = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, local)
	if local == "" {
		local = "report"
	}
	id := rec.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s-%s.%s", local, id, format)
}

// writeRecord renders rec into dir and returns the file path.
func writeRecord(ctx context.Context, dir string, rec *store.Record, format string) (string, error) {
	data, err := renderRecord(rec, format)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, reportFileName(rec, format))
	if err := filelock.WriteFile(ctx, path, data); err != nil {
		return "", err
	}
	return path, nil
}
