package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const minMarkdownWrap = 24

// markdownRenderer renders card details with glamour, rebuilding the renderer only when the wrap width changes.
type markdownRenderer struct {
	wrap     int
	renderer *glamour.TermRenderer
}

// render returns styled text, or the raw markdown when glamour cannot render it.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	wrap := max(width, minMarkdownWrap)
	if r.renderer == nil || r.wrap != wrap {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.wrap = wrap
	}
	out, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.Trim(out, "\n")
}
