package bt

import (
	"log/slog"

	"github.com/google/uuid"
)

// Visitor observes every behaviour ticked by a [BehaviourTree]. Visitors
// must not modify the tree.
type Visitor interface {
	// Initialise runs before each tick.
	Initialise()
	// Run is called for each ticked behaviour, children before parents.
	Run(b Behaviour)
	// Finalise runs after each tick.
	Finalise()
}

// DebugVisitor logs every visited behaviour at debug level.
type DebugVisitor struct {
	Logger *slog.Logger
}

func (v *DebugVisitor) logger() *slog.Logger {
	if v.Logger != nil {
		return v.Logger
	}
	return logger()
}

func (v *DebugVisitor) Initialise() {}

func (v *DebugVisitor) Run(b Behaviour) {
	attrs := []any{"behaviour", b.Name(), "status", b.Status()}
	if msg := b.FeedbackMessage(); msg != "" {
		attrs = append(attrs, "feedback", msg)
	}
	v.logger().Debug("visit", attrs...)
}

func (v *DebugVisitor) Finalise() {}

// SnapshotVisitor records the statuses and blackboard usage of the most
// recent tick, and whether anything changed since the tick before.
type SnapshotVisitor struct {
	// Changed is true if the set of visited behaviours or any of their
	// statuses differ from the previous tick.
	Changed bool
	// Visited maps each behaviour visited in the last tick to its status.
	Visited map[uuid.UUID]Status
	// PreviouslyVisited is Visited as of the tick before.
	PreviouslyVisited map[uuid.UUID]Status
	// VisitedBlackboardKeys are the keys registered by clients of visited
	// behaviours.
	VisitedBlackboardKeys map[string]struct{}
	// VisitedBlackboardClients are the ids of those clients.
	VisitedBlackboardClients map[uuid.UUID]struct{}
}

// NewSnapshotVisitor returns an empty snapshot visitor.
func NewSnapshotVisitor() *SnapshotVisitor {
	return &SnapshotVisitor{
		Visited:                  make(map[uuid.UUID]Status),
		PreviouslyVisited:        make(map[uuid.UUID]Status),
		VisitedBlackboardKeys:    make(map[string]struct{}),
		VisitedBlackboardClients: make(map[uuid.UUID]struct{}),
	}
}

func (v *SnapshotVisitor) Initialise() {
	v.Changed = false
	v.PreviouslyVisited = v.Visited
	v.Visited = make(map[uuid.UUID]Status)
	v.VisitedBlackboardKeys = make(map[string]struct{})
	v.VisitedBlackboardClients = make(map[uuid.UUID]struct{})
}

func (v *SnapshotVisitor) Run(b Behaviour) {
	v.Visited[b.ID()] = b.Status()
	if previous, ok := v.PreviouslyVisited[b.ID()]; !ok || previous != b.Status() {
		v.Changed = true
	}
	for _, c := range b.Blackboards() {
		v.VisitedBlackboardClients[c.ID()] = struct{}{}
		for _, key := range c.Keys() {
			v.VisitedBlackboardKeys[key] = struct{}{}
		}
	}
}

func (v *SnapshotVisitor) Finalise() {
	if len(v.Visited) != len(v.PreviouslyVisited) {
		v.Changed = true
		return
	}
	for id := range v.PreviouslyVisited {
		if _, ok := v.Visited[id]; !ok {
			v.Changed = true
			return
		}
	}
}
