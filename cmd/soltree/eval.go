package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sem0ark/soltree/internal/loader"
	"github.com/sem0ark/soltree/internal/soltree"
	"github.com/sem0ark/soltree/pkg/errutil"
)

func newEvalCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "eval <path>",
		Short: "Compile a solution-tree configuration and evaluate one input value against it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loadLogger(cmd)

			doc, err := loader.Load(args[0])
			if err != nil {
				errutil.LogError(logger, "failed to load configuration", err)
				return err
			}

			tree, err := soltree.Compile(doc, autoSelectors(doc))
			if err != nil {
				errutil.LogError(logger, "configuration failed to compile", err)
				return err
			}

			data, err := os.ReadFile(inputPath) //nolint:gosec // inputPath is an explicit CLI flag
			if err != nil {
				errutil.LogError(logger, "failed to read input value", err)
				return err
			}

			var value genericValue
			if err := json.Unmarshal(data, &value); err != nil {
				errutil.LogError(logger, "input value is not a JSON object", err)
				return err
			}

			output := tree.Evaluate(value)
			encoded, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(encoded))
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to a JSON file holding the value to evaluate")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
