// Package runner ticks behaviour trees periodically in the background,
// several at once, with a shared stop and error lifecycle.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gobt "github.com/joeycumines/go-behaviortree"
	"github.com/joeycumines/treetick/internal/bt"
)

// DefaultPeriod is used when a [Config] leaves Period unset.
const DefaultPeriod = 500 * time.Millisecond

var (
	// ErrStopped is returned when adding a tree to a stopped runner.
	ErrStopped = errors.New("runner: stopped")
	// ErrDuplicateName is returned when adding a second tree with a name.
	ErrDuplicateName = errors.New("runner: duplicate tree name")
)

// Config controls how one tree is ticked.
type Config struct {
	// Period between ticks, [DefaultPeriod] if zero.
	Period time.Duration
	// MaxTicks stops ticking after this many ticks, if positive.
	MaxTicks int
	// UntilResolved stops ticking once the root is no longer running.
	UntilResolved bool
}

// Result is the state of one tree under a runner.
type Result struct {
	Name     string
	Ticks    int
	Status   bt.Status
	Err      error
	Finished bool
}

type entry struct {
	result Result
	tree   *bt.BehaviourTree
}

// Runner drives trees on go-behaviortree tickers grouped by a manager. An
// error ticking any tree stops them all; a tree that merely finishes (see
// [Config]) does not affect the others.
type Runner struct {
	mu      sync.RWMutex
	stopped bool
	entries map[string]*entry
	order   []string
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	manager gobt.Manager
}

// New returns a runner whose tickers stop when ctx is done.
func New(ctx context.Context) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	return &Runner{
		entries: make(map[string]*entry),
		ctx:     ctx,
		cancel:  cancel,
		manager: gobt.NewManager(),
	}
}

// Add starts ticking tree under name.
func (r *Runner) Add(name string, tree *bt.BehaviourTree, cfg Config) error {
	if tree == nil {
		panic("runner: tree must not be nil")
	}
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrStopped
	}
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	e := &entry{result: Result{Name: name}, tree: tree}

	ticker := gobt.NewTickerStopOnFailure(r.ctx, cfg.Period, gobt.New(func([]gobt.Node) (gobt.Status, error) {
		return r.tick(e, cfg)
	}))
	if err := r.manager.Add(ticker); err != nil {
		ticker.Stop()
		return fmt.Errorf("runner: add %q: %w", name, err)
	}
	r.entries[name] = e
	r.order = append(r.order, name)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		<-ticker.Done()
		err := ticker.Err()
		if tree.Root().Status() == bt.Running {
			tree.Interrupt()
		}
		r.mu.Lock()
		e.result.Finished = true
		if err != nil && e.result.Err == nil && !errors.Is(err, context.Canceled) {
			e.result.Err = err
		}
		e.result.Status = tree.Root().Status()
		r.mu.Unlock()
		bt.Logger().Debug("tree finished", "tree", name, "ticks", e.result.Ticks, "status", e.result.Status, "error", err)
	}()
	return nil
}

// tick runs one tree tick. Returning failure without an error ends the
// ticker gracefully.
func (r *Runner) tick(e *entry, cfg Config) (gobt.Status, error) {
	status, err := e.tree.Tick()

	r.mu.Lock()
	e.result.Ticks++
	e.result.Status = status
	ticks := e.result.Ticks
	if err != nil {
		e.result.Err = err
	}
	r.mu.Unlock()

	switch {
	case err != nil:
		return gobt.Failure, fmt.Errorf("runner: tree %q: %w", e.result.Name, err)
	case cfg.UntilResolved && status != bt.Running:
		return gobt.Failure, nil
	case cfg.MaxTicks > 0 && ticks >= cfg.MaxTicks:
		return gobt.Failure, nil
	}
	return gobt.Running, nil
}

// Results returns the state of every tree, in the order added.
func (r *Runner) Results() []Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	results := make([]Result, len(r.order))
	for i, name := range r.order {
		results[i] = r.entries[name].result
	}
	return results
}

// Result returns the state of the named tree.
func (r *Runner) Result(name string) (Result, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return Result{}, false
	}
	return e.result, true
}

// Wait blocks until every added tree has finished or ctx is done, returning
// the first tick error, if any.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return r.Err()
}

// Err returns the first tick error of any tree.
func (r *Runner) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		if err := r.entries[name].result.Err; err != nil {
			return err
		}
	}
	return nil
}

// Stop stops every ticker and interrupts running trees. Further calls to
// [Runner.Add] fail.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	r.cancel()
	r.manager.Stop()
	r.wg.Wait()
}

// Done is closed once the runner's context is done or [Runner.Stop] is
// called.
func (r *Runner) Done() <-chan struct{} {
	return r.ctx.Done()
}
