package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mind-engage/ipa-grading/internal/evaluation"
	"github.com/mind-engage/ipa-grading/internal/grading"
	"github.com/mind-engage/ipa-grading/internal/rubric"
)

func calcCmd() *cobra.Command {
	var (
		rubricPath string
		evalPath   string
		method     string
	)
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Score an evaluations file against a rubric",
		Long: `Score an evaluations file against a rubric and print the report as JSON.

The evaluations file is either a map of criterion id to
{"tickedRequirements": [...], "note": "..."} or an export document
{"tickedRequirements": {...}, "notes": {...}}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := grading.ProjectMethod(method)
			if !m.Valid() {
				return fmt.Errorf("--method must be Agil or Linear, got %q", method)
			}
			rb, err := rubric.LoadFile(rubricPath)
			if err != nil {
				return err
			}
			if err := rubric.Validate(rb).Err(); err != nil {
				return err
			}
			raw, err := os.ReadFile(evalPath)
			if err != nil {
				return fmt.Errorf("read evaluations: %w", err)
			}
			evals, err := decodeEvaluations(raw)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(grading.ScoreRubric(rb, evals, m))
		},
	}
	cmd.Flags().StringVar(&rubricPath, "rubric", "criterias.json", "Rubric file (JSON or YAML)")
	cmd.Flags().StringVar(&evalPath, "evaluations", "", "Evaluations file (JSON)")
	cmd.Flags().StringVar(&method, "method", "", "Project method: Agil or Linear")
	_ = cmd.MarkFlagRequired("evaluations")
	return cmd
}

// decodeEvaluations accepts both the engine map and the export document.
func decodeEvaluations(raw []byte) (grading.Evaluations, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("evaluations: %w", err)
	}
	if tr, ok := probe["tickedRequirements"]; ok && bytes.HasPrefix(bytes.TrimSpace(tr), []byte("{")) {
		var snap evaluation.Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, fmt.Errorf("evaluations: export document: %w", err)
		}
		return snap.ToEvaluations(), nil
	}
	var evals grading.Evaluations
	if err := json.Unmarshal(raw, &evals); err != nil {
		return nil, fmt.Errorf("evaluations: %w", err)
	}
	return evals, nil
}
