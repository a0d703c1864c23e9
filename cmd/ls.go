package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"Ossctl/internal/listing"
	"Ossctl/internal/render"
	"Ossctl/internal/session"
	"Ossctl/internal/terminal"
)

var lsNoInteractive bool
var lsAll bool
var lsToken string

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().BoolVar(&lsNoInteractive, "no-interactive", false, "Print one page and exit even on a terminal")
	lsCmd.Flags().BoolVar(&lsAll, "all", false, "Print every page of the level at once")
	lsCmd.Flags().StringVar(&lsToken, "token", "", "Continuation token of the page to print")
}

var lsCmd = &cobra.Command{
	Use:   "ls [name]",
	Short: "List one directory level of the bucket",
	Long: "List the directories and files directly under name, or the bucket root. On a terminal the listing " +
		"is paged: press s for the next page and q to quit.",
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

func runLs(cmd *cobra.Command, args []string) error {
	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	var prefix string
	if len(args) == 1 {
		prefix = args[0]
	}
	p := listing.NewPaginator(st)
	ctx := cmd.Context()

	if lsAll {
		page, pages, err := p.All(ctx, prefix)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Grid(page))
		cmd.PrintErrf("%d entries in %d pages\n", page.Len(), pages)
		return nil
	}

	if !lsNoInteractive && lsToken == "" && terminal.IsTerminal(os.Stdin) && terminal.IsTerminal(os.Stdout) {
		release, err := terminal.Acquire(os.Stdin)
		if err != nil {
			return err
		}
		defer release()
		return session.Run(ctx, p.ListPage, terminal.NewScreen(cmd.OutOrStdout()), terminal.NewKeys(os.Stdin), prefix)
	}

	page, state, err := p.ListPage(ctx, prefix, lsToken)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), render.Grid(page))
	if !state.IsLastPage {
		cmd.PrintErrf("next page: ossctl ls --token %q %s\n", state.NextToken, prefix)
	}
	return nil
}
