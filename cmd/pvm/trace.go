package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ma5ter/pvm/internal/vm"
)

var traceCmd = &cobra.Command{
	Use:   "trace <image>",
	Short: "Run an image with per-instruction debug tracing enabled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer logger.Sync()

		machine, err := buildVM(args[0], logger, true)
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
