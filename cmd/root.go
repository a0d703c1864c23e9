package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"Ossctl/internal/config"
	"Ossctl/internal/logger"
	"Ossctl/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ossctl",
	Short: "Command-line client for S3-compatible object storage",
	Long: "ossctl lists a bucket one directory level at a time, uploads files and directories, " +
		"downloads and deletes objects. Credentials come from flags, the environment, a .env file or the config file.",
	SilenceUsage: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "Config file (default $"+config.EnvConfigPath+" or "+config.DefaultConfigPath()+")")
	f.String("key-id", "", "Access key ID")
	f.String("key-secret", "", "Secret access key")
	f.String("endpoint", "", "Store endpoint URL")
	f.String("bucket", "", "Bucket name")
	f.String("region", "", "Region (default "+config.DefaultRegion+")")
	f.String("driver", "", "Store driver: s3 or minio")
	f.String("prefix", "", "Root prefix all keys are scoped beneath")
	f.Int("workers", config.DefaultWorkers, "Concurrent uploads for directory uploads")
	f.String("log-level", "", "Log level: debug, info, warn, error")
}

func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// loadConfig reads and validates the configuration for cmd and applies the log level.
func loadConfig(cmd *cobra.Command, checkPerms bool) (*config.Config, error) {
	v, err := config.Load(config.LoadOptions{
		ConfigPath: configPath,
		DotEnvPath: config.DefaultDotEnv,
		CheckPerms: checkPerms,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, err
	}
	cfg, err := config.Unmarshal(v)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	logger.SetLevel(cfg.LogLevel())
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(cmd *cobra.Command) (store.Store, *config.Config, error) {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(cmd.Context(), cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	return st, cfg, nil
}
