// Command dvz is the CLI front-end for the protocol/requester
// pipeline (SPEC_FULL.md §4.O). It reads DVZ_*-prefixed environment
// overrides and an optional dvz config file through the global viper
// instance (internal/config binds its keys on its own viper instance),
// and registers its
// subcommands on a cobra root command following
// cogentcore-core/cmd/root.go's rootCmd.Execute() pattern.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	viper.SetConfigName("dvz")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("dvz")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "dvz: error loading configuration file:", err)
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "dvz",
	Short: "dvz inspects and replays datoviz request batches",
	Long:  "dvz loads request batches dumped by the protocol package, printing their YAML form or replaying them through a requester.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
