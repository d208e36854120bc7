package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var stepCmd = &cobra.Command{
	Use:   "step <image>",
	Short: "Single-step an image interactively, printing state after each instruction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		machine, err := buildVM(args[0], zap.NewNop(), false)
		if err != nil {
			return err
		}

		reader := bufio.NewReader(os.Stdin)
		fmt.Println("press enter to step, Ctrl-D to quit")
		for {
			if _, err := reader.ReadString('\n'); err != nil {
				return nil
			}
			e := machine.Step()
			fmt.Printf("pc=%d data_top=%d call_top=%d result=%s\n", machine.PC(), machine.DataTop(), machine.CallTop(), e)
		}
	},
}
