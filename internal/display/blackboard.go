package display

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/joeycumines/treetick/internal/blackboard"
	"github.com/rivo/uniseg"
)

// BlackboardOptions configures [Blackboard]. At most one filter applies,
// in the order Keys, Regex, Clients.
type BlackboardOptions struct {
	Keys    []string
	Regex   string
	Clients []uuid.UUID
	// Highlight lists keys drawn in bold when colour is enabled.
	Highlight []string
	// Metadata shows which clients hold which access on each key instead of
	// its value.
	Metadata bool
	Indent   int
	Color    bool
}

const clientNameWidth = 11

// Blackboard renders the keys of store, stored or registered, as
// "key: value" lines under a title. Registered keys without a value show
// "-". Only an invalid Regex fails.
func Blackboard(store *blackboard.Store, opts BlackboardOptions) (string, error) {
	var (
		keys   []string
		filter string
	)
	switch {
	case len(opts.Keys) > 0:
		for _, k := range store.AllKeys() {
			if slices.Contains(opts.Keys, k) {
				keys = append(keys, k)
			}
		}
		filter = fmt.Sprintf("'%s'", strings.Join(opts.Keys, ", "))
	case opts.Regex != "":
		var err error
		if keys, err = store.KeysFilteredByRegex(opts.Regex); err != nil {
			return "", fmt.Errorf("display: blackboard filter: %w", err)
		}
		filter = fmt.Sprintf("'%s'", opts.Regex)
	case len(opts.Clients) > 0:
		keys = store.KeysFilteredByClients(opts.Clients...)
		ids := make([]string, len(opts.Clients))
		for i, id := range opts.Clients {
			ids[i] = id.String()
		}
		filter = "[" + strings.Join(ids, ", ") + "]"
	default:
		keys = store.AllKeys()
	}

	st := newStyles(opts.Color)
	title := "Data"
	if opts.Metadata {
		title = "Clients"
	}
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", opts.Indent))
	sb.WriteString("Blackboard " + title + "\n")
	if filter != "" {
		sb.WriteString(strings.Repeat(" ", opts.Indent+2))
		sb.WriteString("Filter: " + filter + "\n")
	}

	width := 0
	for _, k := range keys {
		width = max(width, uniseg.StringWidth(k))
	}
	indent := strings.Repeat(" ", 4+opts.Indent)
	var clients map[uuid.UUID]string
	if opts.Metadata {
		clients = store.Clients()
	}
	for _, key := range keys {
		var line string
		if opts.Metadata {
			line = metadataLine(store, clients, key, indent, width)
		} else {
			line = valueLine(store, key, indent, width)
		}
		if slices.Contains(opts.Highlight, key) {
			line = st.render(st.highlight, line)
		}
		sb.WriteString(line)
	}
	return sb.String(), nil
}

func valueLine(store *blackboard.Store, key, indent string, width int) string {
	text := "-"
	if value, err := store.Get(key); err == nil {
		text = fmt.Sprint(value)
	}
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		return indent + pad(key, width) + ": " + text + "\n"
	}
	var sb strings.Builder
	sb.WriteString(indent + pad(key, width) + ":\n")
	for _, l := range lines {
		sb.WriteString(indent + "  " + l + "\n")
	}
	return sb.String()
}

func metadataLine(store *blackboard.Store, clients map[uuid.UUID]string, key, indent string, width int) string {
	meta, _ := store.Metadata(key)
	ids := make(map[uuid.UUID]struct{})
	for _, set := range []map[uuid.UUID]struct{}{meta.Read, meta.Write, meta.Exclusive} {
		for id := range set {
			ids[id] = struct{}{}
		}
	}
	entries := make([]string, 0, len(ids))
	for id := range ids {
		var access strings.Builder
		if _, ok := meta.Read[id]; ok {
			access.WriteByte('r')
		}
		if _, ok := meta.Write[id]; ok {
			access.WriteByte('w')
		}
		if _, ok := meta.Exclusive[id]; ok {
			access.WriteByte('x')
		}
		entries = append(entries, fmt.Sprintf("%s (%s)", Truncate(clients[id], clientNameWidth), access.String()))
	}
	slices.Sort(entries)
	return indent + pad(key, width+1) + ": " + strings.Join(entries, ", ") + "\n"
}
