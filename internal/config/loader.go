package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envBindings maps config keys to environment variables, highest precedence first.
// The ALIYUN_* names are accepted for compatibility with existing .env files.
var envBindings = map[string][]string{
	"store.driver":     {"OSSCTL_DRIVER"},
	"store.endpoint":   {"OSSCTL_ENDPOINT", "ALIYUN_ENDPOINT"},
	"store.region":     {"OSSCTL_REGION"},
	"store.access_key": {"OSSCTL_KEY_ID", "ALIYUN_KEY_ID"},
	"store.secret_key": {"OSSCTL_KEY_SECRET", "ALIYUN_KEY_SECRET"},
	"store.bucket":     {"OSSCTL_BUCKET", "ALIYUN_BUCKET"},
	"store.prefix":     {"OSSCTL_PREFIX"},
	"store.path_style": {"OSSCTL_PATH_STYLE"},
	"upload.workers":   {"OSSCTL_WORKERS"},
	"log.level":        {"OSSCTL_LOG_LEVEL"},
}

// flagBindings maps config keys to command-line flag names.
var flagBindings = map[string]string{
	"store.driver":     "driver",
	"store.endpoint":   "endpoint",
	"store.region":     "region",
	"store.access_key": "key-id",
	"store.secret_key": "key-secret",
	"store.bucket":     "bucket",
	"store.prefix":     "prefix",
	"upload.workers":   "workers",
	"log.level":        "log-level",
}

type LoadOptions struct {
	// ConfigPath overrides ResolveConfigPath when set.
	ConfigPath string
	// DotEnvPath is loaded into the process environment if it exists.
	DotEnvPath string
	CheckPerms bool
	Flags      *pflag.FlagSet
}

// Load builds a viper instance from defaults, the optional config file, the
// environment and flags (flag > env > file > default). A missing config file is
// not an error: every setting can come from the environment.
func Load(opts LoadOptions) (*viper.Viper, error) {
	if opts.DotEnvPath != "" {
		if err := godotenv.Load(opts.DotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", opts.DotEnvPath, err)
		}
	}

	path := opts.ConfigPath
	if path == "" {
		path = ResolveConfigPath()
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("store.driver", DriverS3)
	v.SetDefault("store.region", DefaultRegion)
	v.SetDefault("store.path_style", true)
	v.SetDefault("upload.workers", DefaultWorkers)
	v.SetDefault("log.level", DefaultLogLevel)

	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	if opts.Flags != nil {
		for key, name := range flagBindings {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag --%s: %w", name, err)
			}
		}
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return v, nil
		}
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}
	if opts.CheckPerms {
		if err := checkConfigPermissions(path); err != nil {
			return nil, err
		}
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return v, nil
}

func checkConfigPermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	mode := info.Mode().Perm()

	if mode&0077 != 0 {
		return fmt.Errorf("config file %s has overly permissive mode %s (recommended: 0600)", path, mode)
	}
	return nil
}
