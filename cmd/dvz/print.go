package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datoviz/scene/protocol"
)

var printCmd = &cobra.Command{
	Use:   "print <file>",
	Short: "Print a dumped batch as its YAML request stream",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrint,
}

func init() {
	rootCmd.AddCommand(printCmd)
}

func runPrint(cmd *cobra.Command, args []string) error {
	b, err := protocol.Load(args[0], nil)
	if err != nil {
		return fmt.Errorf("dvz print: %w", err)
	}
	return protocol.Print(cmd.OutOrStdout(), b)
}
