package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ma5ter/pvm/internal/vm"
)

var maxSteps int

var runCmd = &cobra.Command{
	Use:   "run <image>",
	Short: "Step an image to completion (or until the step budget is spent)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync()

		machine, err := buildVM(args[0], logger, false)
		if err != nil {
			return err
		}

		for i := 0; i < maxSteps; i++ {
			if e := machine.Step(); e != vm.NoError {
				fmt.Printf("halted after %d steps: %s\n", i+1, e)
				return nil
			}
		}
		fmt.Printf("step budget (%d) exhausted without halting\n", maxSteps)
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 1_000_000, "upper bound on steps before giving up")
}
