package bt

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/joeycumines/treetick/internal/blackboard"
)

// VisitFunc observes each behaviour as its tick completes, children before
// their parents, in traversal order. A nil VisitFunc is allowed.
type VisitFunc func(b Behaviour)

func (f VisitFunc) visit(b Behaviour) {
	if f != nil {
		f(b)
	}
}

// Behaviour is a node in a behaviour tree. Implementations are provided by
// this package: [Leaf], [Decorator] (and its variants), [Sequence],
// [Selector] and [Parallel]. Custom actions and conditions are built as
// leaves around an [Updater].
type Behaviour interface {
	// ID is unique for the lifetime of the process.
	ID() uuid.UUID
	Name() string
	Status() Status
	FeedbackMessage() string
	// Parent is nil for a root or a detached behaviour.
	Parent() Behaviour
	// Children returns a copy of the owned children, in tick order.
	Children() []Behaviour
	Blackboards() []*blackboard.Client
	AttachBlackboardClient(c *blackboard.Client)

	// Setup prepares the behaviour (not its descendants) for first use. See
	// [SetupWithDescendants].
	Setup(ctx context.Context) error
	Shutdown()

	// Tick runs one synchronous pass over the behaviour and whichever
	// descendants its algorithm selects.
	Tick(visit VisitFunc) error
	// Stop is the leave step of the lifecycle. Stopping with [Invalid]
	// interrupts the behaviour and any running descendants.
	Stop(status Status)
	// Tip is the deepest behaviour active in the most recent tick, or nil if
	// this behaviour is [Invalid].
	Tip() Behaviour

	core() *node
}

type node struct {
	self        Behaviour
	id          uuid.UUID
	name        string
	status      Status
	feedback    string
	parent      Behaviour
	blackboards []*blackboard.Client
}

func (n *node) init(name string, self Behaviour) {
	n.self = self
	n.id = uuid.New()
	n.name = name
	n.status = Invalid
}

func (n *node) core() *node { return n }

func (n *node) ID() uuid.UUID { return n.id }
func (n *node) Name() string { return n.name }
func (n *node) Status() Status { return n.status }
func (n *node) FeedbackMessage() string { return n.feedback }
func (n *node) Parent() Behaviour { return n.parent }
func (n *node) SetFeedbackMessage(msg string) { n.feedback = msg }

func (n *node) Blackboards() []*blackboard.Client {
	return append([]*blackboard.Client(nil), n.blackboards...)
}

func (n *node) AttachBlackboardClient(c *blackboard.Client) {
	if c != nil {
		n.blackboards = append(n.blackboards, c)
	}
}

func (n *node) log() *slog.Logger {
	return logger().With("behaviour", n.name, "id", n.id)
}

func (n *node) traceStop(status Status) {
	if n.status != status {
		n.log().Debug("stop", "from", n.status, "to", status)
	}
}

// tip is the default for behaviours without an active child.
func (n *node) tip() Behaviour {
	if n.status == Invalid {
		return nil
	}
	return n.self
}
