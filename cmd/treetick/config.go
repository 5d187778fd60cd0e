package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeycumines/treetick/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the configuration options and their effective values",
		Args:  cobra.NoArgs,
		// Runs without the full setup so that a broken file can be fixed.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.configPath != "" {
				return nil
			}
			path, err := config.Path()
			if err != nil {
				return fmt.Errorf("failed to get config path: %w", err)
			}
			a.configPath = path
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromPath(a.configPath)
			if err != nil {
				return err
			}
			schema := config.DefaultSchema()

			var sb strings.Builder
			fmt.Fprintf(&sb, "Config file: %s\n\n", a.configPath)
			sb.WriteString(schema.FormatHelp())
			sb.WriteString("\nEffective Values:\n")
			for _, section := range schema.Sections() {
				for _, opt := range schema.Options(section) {
					name := opt.Key
					if section != "" {
						name = section + "." + opt.Key
					}
					fmt.Fprintf(&sb, "  %-32s %s\n", name, schema.Resolve(cfg, section, opt.Key))
				}
			}
			for _, w := range cfg.Warnings {
				fmt.Fprintf(&sb, "\nWarning: %s", w)
			}
			if cfg.HasWarnings() {
				sb.WriteString("\n")
			}
			_, err = fmt.Fprint(a.stdout, sb.String())
			return err
		},
	}
	cmd.AddCommand(newConfigSetCommand(a))
	return cmd
}

func newConfigSetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <[section.]key> [value]",
		Short: "Set an option in the config file",
		Long: `Set an option in the config file, keeping everything else as it is. Options in
a section are named section.key, e.g. blackboard.activity-stream. An omitted
value sets a bare key, which reads as true for bool options.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, key := "", args[0]
			if s, k, ok := strings.Cut(key, "."); ok {
				section, key = s, k
			}
			if key == "" {
				return errors.New("key must not be empty")
			}
			var value string
			if len(args) == 2 {
				value = args[1]
			}

			check := config.NewConfig()
			if section == "" {
				check.SetGlobalOption(key, value)
			} else {
				check.SetSectionOption(section, key, value)
			}
			if issues := config.DefaultSchema().Validate(check); len(issues) > 0 {
				return errors.New(strings.Join(issues, "; "))
			}

			if err := config.SetKeyInFile(a.configPath, section, key, value); err != nil {
				return err
			}
			_, err := fmt.Fprintf(a.stdout, "Set %s in %s\n", args[0], a.configPath)
			return err
		},
	}
}
