package bt

import (
	"fmt"

	"github.com/joeycumines/treetick/internal/blackboard"
)

// GuardCondition is evaluated by an [EternalGuard] before every tick, with
// the guard's own blackboard client.
type GuardCondition func(c *blackboard.Client) (bool, error)

// StatusGuard adapts a status producing check, e.g. a condition leaf's
// logic, to a [GuardCondition]. Anything but [Failure] passes.
func StatusGuard(check func(c *blackboard.Client) (Status, error)) GuardCondition {
	return func(c *blackboard.Client) (bool, error) {
		status, err := check(c)
		if err != nil {
			return false, err
		}
		return status != Failure, nil
	}
}

// EternalGuard re-checks its condition on every tick, not just on entry, so
// it can interrupt an already running child. A false condition fails the
// guard and the child is not ticked.
type EternalGuard struct {
	Decorator
	condition GuardCondition
	client    *blackboard.Client
}

// NewEternalGuard returns a guard of child. The guard owns a client of the
// default blackboard, named after the guard, with read access to keys.
func NewEternalGuard(name string, child Behaviour, condition GuardCondition, keys ...string) *EternalGuard {
	return NewEternalGuardWithClient(name, child, condition, blackboard.NewClient(name, blackboard.Separator), keys...)
}

// NewEternalGuardWithClient is [NewEternalGuard] with a caller supplied
// client, e.g. one bound to a private [blackboard.Store].
func NewEternalGuardWithClient(name string, child Behaviour, condition GuardCondition, client *blackboard.Client, keys ...string) *EternalGuard {
	if condition == nil {
		panic("bt: eternal guard condition must not be nil")
	}
	if client == nil {
		panic("bt: eternal guard client must not be nil")
	}
	for _, key := range keys {
		if err := client.RegisterKey(key, blackboard.Read); err != nil {
			panic(fmt.Sprintf("bt: eternal guard %q: %v", name, err))
		}
	}
	g := &EternalGuard{condition: condition, client: client}
	g.construct(name, g, child, decoratorHooks{
		update: g.update,
		guard:  g.check,
	})
	g.AttachBlackboardClient(client)
	return g
}

// Blackboard returns the client handed to the condition.
func (g *EternalGuard) Blackboard() *blackboard.Client { return g.client }

func (g *EternalGuard) check() (bool, error) {
	ok, err := g.condition(g.client)
	if err != nil {
		return false, fmt.Errorf("bt: eternal guard %q: %w", g.name, err)
	}
	if !ok {
		g.feedback = "guard condition failed"
	}
	return ok, nil
}

func (g *EternalGuard) update(d *Decorator) (Status, error) {
	g.feedback = d.decorated.FeedbackMessage()
	return d.decorated.Status(), nil
}
