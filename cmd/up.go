package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"Ossctl/internal/errs"
	"Ossctl/internal/upload"
)

func init() {
	rootCmd.AddCommand(upCmd)
}

var upCmd = &cobra.Command{
	Use:   "up <src> <dest>",
	Short: "Upload a file or the files of a directory",
	Long: "Upload src to dest. A file is stored under dest, or under dest plus its name when dest ends in /. " +
		"For a directory every regular file directly inside it is stored under dest followed by the file name; " +
		"subdirectories are skipped. Failed files do not stop the others.",
	Args: cobra.ExactArgs(2),
	RunE: runUp,
}

func runUp(cmd *cobra.Command, args []string) error {
	src, dest := args[0], args[1]
	info, err := os.Stat(src)
	if err != nil {
		return errs.IO("stat source", err).WithKey(src)
	}
	st, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if !info.IsDir() {
		fmt.Fprintf(cmd.OutOrStdout(), "uploading %s (1/1)\n", filepath.Base(src))
		out, err := upload.New(st, 1, nil).UploadFile(ctx, src, dest)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s to %s\n", src, out.Target.RemoteKey)
		return nil
	}

	u := upload.New(st, cfg.Workers(), upload.NewLineReporter(cmd.OutOrStdout()))
	outcomes, err := u.UploadDirectory(ctx, src, dest)
	if err != nil {
		return err
	}
	failed := upload.Failed(outcomes)
	fmt.Fprintf(cmd.OutOrStdout(), "%d uploaded, %d failed\n", len(outcomes)-len(failed), len(failed))
	for _, o := range failed {
		cmd.PrintErrf("failed %s: %v\n", o.Target.LocalPath, o.Err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d uploads failed", len(failed), len(outcomes))
	}
	return nil
}
