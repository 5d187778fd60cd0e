package display

import (
	"strings"

	"github.com/google/uuid"
	"github.com/joeycumines/treetick/internal/bt"
)

// TreeOptions configures [Tree].
type TreeOptions struct {
	// Symbols defaults to [Unicode].
	Symbols *Symbols
	// ShowStatus shows the status and feedback of every behaviour, not just
	// the visited ones.
	ShowStatus bool
	// OnlyVisited collapses the children of unvisited composites to "...".
	OnlyVisited bool
	// Visited and PreviouslyVisited are typically taken from a
	// [bt.SnapshotVisitor].
	Visited           map[uuid.UUID]bt.Status
	PreviouslyVisited map[uuid.UUID]bt.Status
	// Indent is the number of levels to indent the whole tree by.
	Indent int
	Color  bool
}

// Tree renders root and its descendants, one behaviour per line, four
// spaces per level. Visited behaviours show "name [STATUS] -- feedback",
// behaviours that were running on the previous tick but not visited on this
// one show "name [STATUS]", the rest just their name. The tip is bold when
// colour is enabled.
func Tree(root bt.Behaviour, opts TreeOptions) string {
	r := treeRenderer{
		opts:    opts,
		symbols: opts.Symbols,
		styles:  newStyles(opts.Color),
	}
	if r.symbols == nil {
		r.symbols = &Unicode
	}
	if tip := root.Tip(); tip != nil {
		r.tip = tip.ID()
	}
	var sb strings.Builder
	r.line(&sb, root, opts.Indent)
	r.children(&sb, root, opts.Indent+1)
	return sb.String()
}

type treeRenderer struct {
	opts    TreeOptions
	symbols *Symbols
	styles  styles
	tip     uuid.UUID
}

func (r *treeRenderer) children(sb *strings.Builder, parent bt.Behaviour, depth int) {
	for _, child := range parent.Children() {
		r.line(sb, child, depth)
		if len(child.Children()) == 0 {
			continue
		}
		if _, ok := r.opts.Visited[child.ID()]; r.opts.OnlyVisited && !ok {
			sb.WriteString(strings.Repeat(" ", 4*(depth+1)))
			sb.WriteString("...\n")
			continue
		}
		r.children(sb, child, depth+1)
	}
}

func (r *treeRenderer) line(sb *strings.Builder, b bt.Behaviour, depth int) {
	_, visited := r.opts.Visited[b.ID()]
	previous, previouslyVisited := r.opts.PreviouslyVisited[b.ID()]

	plain := r.symbols.of(b) + " " + oneLine(b.Name())

	var suffix string
	switch {
	case r.opts.ShowStatus || visited:
		suffix = " [" + r.styles.status(b.Status()) + "]"
		if msg := b.FeedbackMessage(); msg != "" {
			suffix += " -- " + oneLine(msg)
		}
	case previouslyVisited && previous == bt.Running:
		suffix = " [" + r.styles.status(b.Status()) + "]"
	}

	sb.WriteString(strings.Repeat(" ", 4*depth))
	if b.ID() == r.tip {
		sb.WriteString(r.styles.render(r.styles.bold, plain))
	} else {
		sb.WriteString(plain)
	}
	sb.WriteString(suffix)
	sb.WriteByte('\n')
}
