package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datoviz/scene/protocol"
	"github.com/datoviz/scene/requester"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Load a dumped batch and drive it through a requester",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	b, err := protocol.Load(args[0], nil)
	if err != nil {
		return fmt.Errorf("dvz replay: %w", err)
	}
	defer b.Destroy()

	r := requester.New(nil)
	r.Commit(b)
	flushed := r.Flush()

	applied := 0
	for _, fb := range flushed {
		applied += fb.Len()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applied %d requests across %d batch(es)\n", applied, len(flushed))
	return nil
}
