package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"Ossctl/internal/config"
	"Ossctl/internal/doctor"
	"Ossctl/internal/listing"
	"Ossctl/internal/store"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, store connectivity and disk",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func openLister(ctx context.Context, cfg *config.StoreConfig) (listing.Lister, error) {
	return store.Open(ctx, cfg)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		cmd.Printf("Config: ERROR: %v\n", err)
		return err
	}

	results := doctor.Run(cmd.Context(), cfg, openLister)
	for _, r := range results {
		status := "OK"
		if !r.OK {
			status = "ERROR"
		}
		cmd.Printf("%-12s %s: %s\n", r.Name, status, r.Detail)
	}
	if !doctor.AllOK(results) {
		return fmt.Errorf("one or more checks failed; see output above")
	}
	return nil
}
