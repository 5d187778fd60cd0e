package display

import (
	"fmt"
	"strings"

	"github.com/joeycumines/treetick/internal/blackboard"
	"github.com/rivo/uniseg"
)

// ActivityOptions configures [Activity].
type ActivityOptions struct {
	// Symbols defaults to [Unicode].
	Symbols   *Symbols
	HideTitle bool
	Indent    int
}

const (
	activityLineWidth = 80
	maxClientWidth    = 20
)

// Activity renders activity items, oldest first, one per line:
//
//	key : KIND          | client | -> value
func Activity(items []blackboard.ActivityItem, opts ActivityOptions) string {
	symbols := opts.Symbols
	if symbols == nil {
		symbols = &Unicode
	}
	var lines []string
	if !opts.HideTitle {
		lines = append(lines, strings.Repeat(" ", opts.Indent)+"Blackboard Activity Stream")
	}

	keyWidth, clientWidth := 0, 0
	for _, item := range items {
		keyWidth = max(keyWidth, uniseg.StringWidth(item.Key))
		clientWidth = max(clientWidth, uniseg.StringWidth(item.ClientName))
	}
	clientWidth = min(clientWidth, maxClientWidth)
	kindWidth := len(blackboard.ActivityAccessDenied)
	valueWidth := max(activityLineWidth-keyWidth-3-kindWidth-3-clientWidth-3, 8)

	value := func(v any) string {
		return Truncate(oneLine(fmt.Sprint(v)), valueWidth)
	}
	for _, item := range items {
		var sb strings.Builder
		sb.WriteString(strings.Repeat(" ", 4+opts.Indent))
		sb.WriteString(pad(item.Key, keyWidth+1) + ": ")
		sb.WriteString(pad(string(item.Kind), kindWidth) + " | ")
		sb.WriteString(pad(Truncate(strings.ReplaceAll(item.ClientName, "\n", "_"), clientWidth), clientWidth) + " | ")
		switch item.Kind {
		case blackboard.ActivityRead:
			sb.WriteString(symbols.LeftArrow + " " + value(item.CurrentValue))
		case blackboard.ActivityWrite, blackboard.ActivityInitialised:
			sb.WriteString(symbols.RightArrow + " " + value(item.CurrentValue))
		case blackboard.ActivityAccessed:
			sb.WriteString(symbols.LeftRightArrow + " " + value(item.CurrentValue))
		case blackboard.ActivityAccessDenied:
			sb.WriteString(symbols.Denied + " client has no read/write access")
		case blackboard.ActivityNoKey:
			sb.WriteString(" key does not yet exist")
		case blackboard.ActivityNoOverwrite:
			sb.WriteString(" " + value(item.CurrentValue))
		case blackboard.ActivityUnset:
		default:
			sb.WriteString("unknown operation")
		}
		lines = append(lines, strings.TrimRight(sb.String(), " "))
	}
	return strings.Join(lines, "\n")
}

// ActivityStream renders the activity stream of store, or returns "" if it
// is not enabled.
func ActivityStream(store *blackboard.Store, opts ActivityOptions) string {
	stream := store.ActivityStream()
	if stream == nil {
		return ""
	}
	return Activity(stream.Items(), opts)
}
