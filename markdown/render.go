// Package markdown renders assistant replies as styled ANSI text via
// glamour. The renderer is cached per wrap width so the chat viewport can
// re-render cheaply; every failure path falls back to the raw text.
package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	mu       sync.Mutex
	cached   *glamour.TermRenderer
	cachedAt int
)

// Render converts markdown to ANSI output wrapped at width. The renderer is
// rebuilt only when the width changes (terminal resize).
func Render(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	if width < 20 {
		width = 20
	}
	r := rendererFor(width)
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	// glamour pads with blank lines; trim for inline display.
	return strings.TrimRight(out, "\n")
}

func rendererFor(width int) *glamour.TermRenderer {
	mu.Lock()
	defer mu.Unlock()
	if cached != nil && cachedAt == width {
		return cached
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	cached, cachedAt = r, width
	return r
}
