// Package display renders behaviour trees, blackboards and blackboard
// activity as text for terminals.
//
// Every renderer returns a string. Styling (bold tip, coloured statuses)
// is applied only when requested, so output is stable for logs and tests.
package display

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/joeycumines/treetick/internal/bt"
	"github.com/rivo/uniseg"
)

// Symbols are the markers used to draw trees and activity.
type Symbols struct {
	Sequence           string
	SequenceWithMemory string
	Selector           string
	SelectorWithMemory string
	Parallel           string
	Decorator          string
	Behaviour          string
	LeftArrow          string
	RightArrow         string
	LeftRightArrow     string
	Denied             string
}

var (
	// Unicode suits any UTF-8 capable terminal.
	Unicode = Symbols{
		Sequence:           "[-]",
		SequenceWithMemory: "{-}",
		Selector:           "[o]",
		SelectorWithMemory: "{o}",
		Parallel:           "/_/",
		Decorator:          "-^-",
		Behaviour:          "-->",
		LeftArrow:          "←",
		RightArrow:         "→",
		LeftRightArrow:     "↔",
		Denied:             "✕",
	}

	// ASCII avoids anything outside 7-bit ASCII.
	ASCII = Symbols{
		Sequence:           "[-]",
		SequenceWithMemory: "{-}",
		Selector:           "[o]",
		SelectorWithMemory: "{o}",
		Parallel:           "/_/",
		Decorator:          "-^-",
		Behaviour:          "-->",
		LeftArrow:          "<-",
		RightArrow:         "->",
		LeftRightArrow:     "<->",
		Denied:             "x",
	}
)

type decorated interface {
	Decorated() bt.Behaviour
}

func (s *Symbols) of(b bt.Behaviour) string {
	switch b := b.(type) {
	case *bt.Parallel:
		return s.Parallel
	case *bt.Sequence:
		if b.Memory() {
			return s.SequenceWithMemory
		}
		return s.Sequence
	case *bt.Selector:
		if b.Memory() {
			return s.SelectorWithMemory
		}
		return s.Selector
	case decorated:
		return s.Decorator
	}
	return s.Behaviour
}

// styles is a no-op unless colour was requested.
type styles struct {
	enabled   bool
	bold      lipgloss.Style
	faint     lipgloss.Style
	statuses  map[bt.Status]lipgloss.Style
	highlight lipgloss.Style
}

func newStyles(color bool) styles {
	return styles{
		enabled: color,
		bold:    lipgloss.NewStyle().Bold(true),
		faint:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		statuses: map[bt.Status]lipgloss.Style{
			bt.Invalid: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
			bt.Running: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
			bt.Success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
			bt.Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		},
		highlight: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("57")),
	}
}

func (s styles) render(style lipgloss.Style, text string) string {
	if !s.enabled || text == "" {
		return text
	}
	return style.Render(text)
}

func (s styles) status(status bt.Status) string {
	return s.render(s.statuses[status], status.String())
}

// Truncate shortens text to at most width terminal cells, ending it with
// "..." when anything was cut. Widths are measured per grapheme cluster.
func Truncate(text string, width int) string {
	const tail = "..."
	if uniseg.StringWidth(text) <= width {
		return text
	}
	tailWidth := uniseg.StringWidth(tail)
	if tailWidth > width {
		return tail[:max(width, 0)]
	}
	var (
		sb       strings.Builder
		current  int
		cluster  string
		w        int
		state    = -1
		rest     = text
		maxWidth = width - tailWidth
	)
	for len(rest) > 0 {
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if current+w > maxWidth {
			break
		}
		current += w
		sb.WriteString(cluster)
	}
	sb.WriteString(tail)
	return sb.String()
}

// pad right-pads text with spaces to width cells.
func pad(text string, width int) string {
	if n := width - uniseg.StringWidth(text); n > 0 {
		return text + strings.Repeat(" ", n)
	}
	return text
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
