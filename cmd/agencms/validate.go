package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/artpar/agencms/core/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate route definitions",
	Long: `Parse and build every route definition under dir.

Without an argument the definitions directory from the configuration is used.

Examples:
  agencms validate
  agencms validate ./routes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	var dir string
	if len(args) == 1 {
		dir = args[0]
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir = cfg.Definitions.Dir
	}
	if dir == "" {
		return errors.New("no definitions directory: pass one or set definitions.dir")
	}

	// ParseDir validates every definition it returns.
	defs, err := schema.ParseDir(dir)
	if err != nil {
		return fmt.Errorf("definitions invalid: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Definitions valid: %d routes\n\n", len(defs))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tKIND\tGROUPS\tSOURCE")
	fmt.Fprintln(w, "----\t----\t------\t------")
	for _, def := range defs {
		kind := string(def.Type)
		switch {
		case def.Append:
			kind = "append"
		case def.Hidden:
			kind = string(schema.RouteTypeHidden)
		case kind == "":
			kind = string(schema.RouteTypeCollection)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", def.Slug, kind, len(def.Groups), def.Source)
	}
	return w.Flush()
}
