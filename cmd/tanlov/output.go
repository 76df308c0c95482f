package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muslimbek77/tanlov-ai/internal/services/dashboard/storage"
)

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// palette is the set of text styles for one theme.
type palette struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Muted lipgloss.Style
	Good  lipgloss.Style
	Warn  lipgloss.Style
	Bad   lipgloss.Style
}

// newPalette builds styles for theme, rendering for w. Writers that are not
// terminals get plain text.
func newPalette(w io.Writer, theme storage.Theme) palette {
	renderer := lipgloss.NewRenderer(w)
	primary := lipgloss.Color("#1d4ed8")
	muted := lipgloss.Color("#6b7280")
	if theme == storage.ThemeDark {
		primary = lipgloss.Color("#93c5fd")
		muted = lipgloss.Color("#9ca3af")
	}
	return palette{
		Title: renderer.NewStyle().Foreground(primary).Bold(true),
		Label: renderer.NewStyle().Bold(true),
		Muted: renderer.NewStyle().Foreground(muted),
		Good:  renderer.NewStyle().Foreground(lipgloss.Color("#16a34a")),
		Warn:  renderer.NewStyle().Foreground(lipgloss.Color("#d97706")),
		Bad:   renderer.NewStyle().Foreground(lipgloss.Color("#dc2626")).Bold(true),
	}
}

// Risk styles a risk level reported by the service.
func (p palette) Risk(level string) string {
	switch strings.ToLower(level) {
	case "low", "past":
		return p.Good.Render(level)
	case "medium", "o'rta", "orta":
		return p.Warn.Render(level)
	case "high", "critical", "yuqori":
		return p.Bad.Render(level)
	default:
		return level
	}
}

func (c *cli) palette(ctx context.Context) palette {
	return newPalette(c.stdout, c.settings(ctx).Theme)
}

// printField writes one "label: value" line.
func printField(w io.Writer, p palette, label, value string) {
	fmt.Fprintf(w, "%s %s\n", p.Label.Render(label+":"), value)
}

// readJSONFile decodes the JSON document at path, or stdin when path is "-".
func (c *cli) readJSONFile(path string, target any) error {
	var r io.Reader
	if path == "-" {
		r = c.stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func formatScore(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}
