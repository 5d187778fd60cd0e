package main

import (
	"errors"
	"fmt"

	"github.com/joeycumines/treetick/internal/treespec"
	"github.com/spf13/cobra"
)

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <tree.yaml>...",
		Short: "Check that tree files parse and build",
		Long: `Parse and build every tree file against a private blackboard, reporting each
file. Exits non-zero if any file is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error
			for _, file := range args {
				err := validateFile(file)
				if err != nil {
					fmt.Fprintf(a.stdout, "%s: %v\n", file, err)
					errs = append(errs, fmt.Errorf("%s: %w", file, err))
					continue
				}
				fmt.Fprintf(a.stdout, "%s: ok\n", file)
			}
			if len(errs) > 0 {
				return fmt.Errorf("%d of %d files invalid: %w", len(errs), len(args), errors.Join(errs...))
			}
			return nil
		},
	}
}

func validateFile(path string) error {
	spec, err := treespec.Load(path)
	if err != nil {
		return err
	}
	return treespec.Validate(spec)
}
