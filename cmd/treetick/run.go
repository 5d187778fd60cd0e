package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joeycumines/treetick/internal/blackboard"
	"github.com/joeycumines/treetick/internal/bt"
	"github.com/joeycumines/treetick/internal/display"
	"github.com/joeycumines/treetick/internal/runner"
	"github.com/joeycumines/treetick/internal/treespec"
	"github.com/spf13/cobra"
)

type runOptions struct {
	period        time.Duration
	maxTicks      int
	untilResolved bool
	quiet         bool
	blackboard    bool
	activity      bool
	ascii         bool
}

func newRunCommand(a *app) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run <tree.yaml>...",
		Short: "Tick one or more trees until they finish",
		Long: `Tick the trees in the given files, each on its own schedule but sharing one
blackboard. The tree is rendered after every tick that changes it.

A tree finishes when --max-ticks is reached or, with --until-resolved, once its
root stops running. An error ticking any tree stops them all.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("period") {
				opts.period = a.settings.TickPeriod
			}
			if !cmd.Flags().Changed("max-ticks") {
				opts.maxTicks = a.settings.MaxTicks
			}
			if opts.maxTicks <= 0 && !opts.untilResolved {
				return errors.New("refusing to run forever: set --max-ticks or --until-resolved")
			}
			return a.run(cmd, args, opts)
		},
	}
	flags := cmd.Flags()
	flags.DurationVar(&opts.period, "period", runner.DefaultPeriod, "time between ticks")
	flags.IntVar(&opts.maxTicks, "max-ticks", 0, "stop each tree after this many ticks")
	flags.BoolVar(&opts.untilResolved, "until-resolved", false, "stop each tree once its root is no longer running")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only print the final results")
	flags.BoolVar(&opts.blackboard, "blackboard", false, "render the blackboard keys used by visited behaviours")
	flags.BoolVar(&opts.activity, "activity", false, "render blackboard activity since the previous rendering")
	flags.BoolVar(&opts.ascii, "ascii", false, "draw with ASCII symbols only")
	return cmd
}

// printer serialises output from the tickers of several trees.
type printer struct {
	mu      sync.Mutex
	w       io.Writer
	color   bool
	symbols *display.Symbols
	opts    runOptions
	store   *blackboard.Store
}

func (p *printer) tick(name string, tree *bt.BehaviourTree, snapshot *bt.SnapshotVisitor) {
	if p.opts.quiet || !snapshot.Changed {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n--------- %s: tick %d ---------\n\n", name, tree.Count())
	sb.WriteString(display.Tree(tree.Root(), display.TreeOptions{
		Symbols:           p.symbols,
		OnlyVisited:       true,
		Visited:           snapshot.Visited,
		PreviouslyVisited: snapshot.PreviouslyVisited,
		Color:             p.color,
	}))
	if p.opts.blackboard && len(snapshot.VisitedBlackboardKeys) > 0 {
		keys := make([]string, 0, len(snapshot.VisitedBlackboardKeys))
		for key := range snapshot.VisitedBlackboardKeys {
			keys = append(keys, key)
		}
		// keys are registered, so the filter cannot fail
		out, _ := display.Blackboard(p.store, display.BlackboardOptions{Keys: keys, Indent: 0, Color: p.color})
		sb.WriteString("\n" + out)
	}
	if p.opts.activity {
		if stream := p.store.ActivityStream(); stream != nil {
			sb.WriteString("\n" + display.Activity(stream.Items(), display.ActivityOptions{Symbols: p.symbols}) + "\n")
			stream.Clear()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.w, sb.String())
}

func (a *app) run(cmd *cobra.Command, files []string, opts runOptions) error {
	store := blackboard.NewStore()
	store.SetLogger(a.logger)
	if a.settings.ActivityStream || opts.activity {
		if err := store.EnableActivityStream(a.settings.ActivityStreamSize); err != nil {
			return err
		}
	}
	p := &printer{w: a.stdout, color: a.color, symbols: &display.Unicode, opts: opts, store: store}
	if opts.ascii {
		p.symbols = &display.ASCII
	}

	builder := treespec.NewBuilder(store)
	type loaded struct {
		name string
		tree *bt.BehaviourTree
	}
	var trees []loaded
	for _, file := range files {
		spec, err := treespec.Load(file)
		if err != nil {
			return err
		}
		tree, err := builder.Build(spec)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		name := spec.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		}
		if err := tree.Setup(cmd.Context(), 0); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		snapshot := bt.NewSnapshotVisitor()
		tree.AddVisitor(snapshot)
		tree.AddVisitor(&bt.DebugVisitor{Logger: a.logger.With("tree", name)})
		tree.AddPostTickHandler(func(t *bt.BehaviourTree) { p.tick(name, t, snapshot) })
		trees = append(trees, loaded{name: name, tree: tree})
	}

	r := runner.New(cmd.Context())
	defer r.Stop()
	for _, l := range trees {
		err := r.Add(l.name, l.tree, runner.Config{
			Period:        opts.period,
			MaxTicks:      opts.maxTicks,
			UntilResolved: opts.untilResolved,
		})
		if err != nil {
			return err
		}
		a.logger.Info("started tree", "tree", l.name, "period", opts.period)
	}

	err := r.Wait(cmd.Context())
	if errors.Is(err, context.Canceled) {
		a.logger.Info("interrupted")
		err = nil
	}
	r.Stop()
	for _, l := range trees {
		l.tree.Shutdown()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(a.stdout)
	for _, res := range r.Results() {
		line := fmt.Sprintf("%s: %s after %d ticks", res.Name, res.Status, res.Ticks)
		if res.Err != nil {
			line += fmt.Sprintf(" (%v)", res.Err)
		}
		fmt.Fprintln(a.stdout, line)
	}
	if err != nil {
		return err
	}
	return r.Err()
}
