package main

import (
	"fmt"
	"strings"

	"github.com/joeycumines/treetick/internal/blackboard"
	"github.com/joeycumines/treetick/internal/display"
	"github.com/joeycumines/treetick/internal/treespec"
	"github.com/spf13/cobra"
)

func newShowCommand(a *app) *cobra.Command {
	var (
		showBlackboard bool
		metadata       bool
		ascii          bool
	)
	cmd := &cobra.Command{
		Use:   "show <tree.yaml>",
		Short: "Render a tree without ticking it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := treespec.Load(args[0])
			if err != nil {
				return err
			}
			store := blackboard.NewStore()
			tree, err := treespec.NewBuilder(store).Build(spec)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			symbols := &display.Unicode
			if ascii {
				symbols = &display.ASCII
			}

			var sb strings.Builder
			sb.WriteString(display.Tree(tree.Root(), display.TreeOptions{
				Symbols:    symbols,
				ShowStatus: true,
				Color:      a.color,
			}))
			if showBlackboard || metadata {
				out, err := display.Blackboard(store, display.BlackboardOptions{Metadata: metadata, Color: a.color})
				if err != nil {
					return err
				}
				sb.WriteString("\n" + out)
			}
			_, err = fmt.Fprint(a.stdout, sb.String())
			return err
		},
	}
	cmd.Flags().BoolVar(&showBlackboard, "blackboard", false, "also render the seeded blackboard")
	cmd.Flags().BoolVar(&metadata, "metadata", false, "render which clients access each blackboard key")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "draw with ASCII symbols only")
	return cmd
}
