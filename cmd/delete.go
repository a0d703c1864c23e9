package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"Ossctl/internal/errs"
)

func init() {
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete one object",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	key := args[0]
	if strings.TrimSpace(key) == "" {
		return errs.Input("delete", errors.New("empty object key"))
	}
	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	if err := st.DeleteObject(cmd.Context(), key); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", key)
	return nil
}
