package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"Ossctl/internal/config"
)

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file skeleton",
	Long:  "Write a config file with placeholder values to --config or the default path. Fill in the credentials afterwards.",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	if err := config.Write(config.Skeleton(), path, initForce); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
