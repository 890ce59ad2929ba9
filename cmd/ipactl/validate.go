package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mind-engage/ipa-grading/internal/rubric"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [rubric file]",
		Short: "Check a rubric file (JSON or YAML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rb, err := rubric.LoadFile(args[0])
			if err != nil {
				return err
			}
			rep := rubric.Validate(rb)
			out := cmd.OutOrStdout()
			for _, e := range rep.Errors {
				fmt.Fprintf(out, "error: %s\n", e)
			}
			for _, w := range rep.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			if err := rep.Err(); err != nil {
				return err
			}
			fmt.Fprintf(out, "ok: %d categories, %d criteria\n", len(rb.Categories), len(rb.Criteria))
			return nil
		},
	}
}
