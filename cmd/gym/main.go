package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "gym",
		Short:         "Gym management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", os.Getenv("GYM_CONFIG"), "config file path (YAML)")

	root.AddCommand(
		newServeCommand(&configFile),
		newProvisionCommand(&configFile),
		newTokenCommand(&configFile),
	)
	return root
}
