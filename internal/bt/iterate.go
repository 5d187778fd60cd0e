package bt

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/uuid"
)

// Iterate yields root and its descendants, children before parents
// (post-order).
func Iterate(root Behaviour) iter.Seq[Behaviour] {
	return func(yield func(Behaviour) bool) {
		walk(root, yield)
	}
}

func walk(b Behaviour, yield func(Behaviour) bool) bool {
	for _, child := range b.Children() {
		if !walk(child, yield) {
			return false
		}
	}
	return yield(b)
}

// Find returns the behaviour with the given id under root, or nil.
func Find(root Behaviour, id uuid.UUID) Behaviour {
	for b := range Iterate(root) {
		if b.ID() == id {
			return b
		}
	}
	return nil
}

// SetupWithDescendants runs Setup on root and every descendant, children
// first, stopping at the first error or when ctx is done.
func SetupWithDescendants(ctx context.Context, root Behaviour) error {
	for b := range Iterate(root) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("bt: setup %q: %w", b.Name(), err)
		}
		if err := b.Setup(ctx); err != nil {
			return fmt.Errorf("bt: setup %q: %w", b.Name(), err)
		}
	}
	return nil
}

// ShutdownWithDescendants runs Shutdown on root and every descendant.
func ShutdownWithDescendants(root Behaviour) {
	for b := range Iterate(root) {
		b.Shutdown()
	}
}

// RunningPath returns the behaviours currently reporting [Running], in
// iteration order.
func RunningPath(root Behaviour) []Behaviour {
	var running []Behaviour
	for b := range Iterate(root) {
		if b.Status() == Running {
			running = append(running, b)
		}
	}
	return running
}
