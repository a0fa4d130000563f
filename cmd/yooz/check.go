package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yooz-lang/go-yooz/rulebase/dsl"
)

func checkCmd(flags *rootFlags) *cobra.Command {
	var failFast bool

	cmd := &cobra.Command{
		Use:   "check <rules.yz>",
		Short: "Compile a rule file and report diagnostics",
		Long: `Check compiles a rule file without running it.

By default every diagnostic in the file is reported with its line and
column. With --fail-fast compilation stops at the first error, matching
the engine's loading behavior.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0], failFast)
		},
	}

	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first error")
	return cmd
}

func runCheck(path string, failFast bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading rule file: %w", err)
	}

	rb, err := dsl.CompileWithOptions(string(src), dsl.Options{StopOnFirstError: failFast})
	if err != nil {
		var list dsl.ErrorList
		if errors.As(err, &list) {
			for _, e := range list {
				fmt.Fprintf(os.Stderr, "%s: %s\n", path, e)
			}
			return fmt.Errorf("%d error(s)", len(list))
		}
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Printf("%s: ok\n", path)
	fmt.Printf("  patterns:      %d\n", len(rb.Patterns))
	fmt.Printf("  rules:         %d\n", len(rb.Rules))
	fmt.Printf("  categories:    %d\n", len(rb.Categories))
	fmt.Printf("  definitions:   %d\n", len(rb.Definitions))
	fmt.Printf("  substitutions: %d\n", len(rb.Substitutions))
	fmt.Printf("  stop words:    %d\n", len(rb.StopWords))
	fmt.Printf("  variables:     %d\n", len(rb.Variables))
	return nil
}
