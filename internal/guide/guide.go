// Package guide renders the reference tables as a study guide in Markdown,
// HTML or XLSX form.
package guide

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/p-n-ai/statsmd/internal/catalog"
)

// ErrUnknownFormat is returned for output paths with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown guide format")

type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatXLSX     Format = "xlsx"
)

// FormatFor picks a format from the extension of path.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// Render produces the guide in format f.
func Render(cat *catalog.Catalog, f Format) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return Markdown(cat), nil
	case FormatHTML:
		return HTML(cat), nil
	case FormatXLSX:
		return XLSX(cat)
	default:
		return nil, fmt.Errorf("format %q: %w", f, ErrUnknownFormat)
	}
}

// WriteFile renders the guide in the format implied by path and writes it.
func WriteFile(cat *catalog.Catalog, path string) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Render(cat, f)
	if err != nil {
		return fmt.Errorf("rendering guide: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing guide: %w", err)
	}
	return nil
}

// testNames maps ids to display names, dropping unknown ids.
func testNames(cat *catalog.Catalog, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if t, ok := cat.Test(id); ok {
			out = append(out, t.DisplayName)
		}
	}
	return out
}

func assumptionNames(cat *catalog.Catalog, ids []catalog.AssumptionType) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if a, ok := cat.Assumption(id); ok {
			out = append(out, a.Name)
		}
	}
	return out
}

func join[T ~string](vs []T) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = string(v)
	}
	return strings.Join(s, ", ")
}
