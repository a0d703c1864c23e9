package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"Ossctl/internal/transfer"
)

func init() {
	rootCmd.AddCommand(downCmd)
}

var downCmd = &cobra.Command{
	Use:   "down <src> <dest>",
	Short: "Download one object to a local file",
	Long:  "Download the object src to dest. If dest is a directory the object's base name is used.",
	Args:  cobra.ExactArgs(2),
	RunE:  runDown,
}

func runDown(cmd *cobra.Command, args []string) error {
	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	path, n, err := transfer.Download(cmd.Context(), st, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "downloaded %s to %s (%s)\n", args[0], path, humanize.Bytes(uint64(n)))
	return nil
}
