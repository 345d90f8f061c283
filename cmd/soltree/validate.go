package main

import (
	"github.com/spf13/cobra"

	"github.com/sem0ark/soltree/internal/loader"
	"github.com/sem0ark/soltree/internal/soltree"
	"github.com/sem0ark/soltree/pkg/errutil"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Compile a solution-tree configuration and report whether it is valid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loadLogger(cmd)

			doc, err := loader.Load(args[0])
			if err != nil {
				errutil.LogError(logger, "failed to load configuration", err)
				return err
			}

			if _, err := soltree.Compile(doc, autoSelectors(doc)); err != nil {
				errutil.LogError(logger, "configuration failed to compile", err)
				return err
			}

			cmd.Println("OK:", args[0])
			return nil
		},
	}
}
