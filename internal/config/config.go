package config

import "github.com/spf13/viper"

const (
	DriverS3    = "s3"
	DriverMinIO = "minio"
)

const (
	DefaultRegion   = "us-east-1"
	DefaultWorkers  = 4
	DefaultLogLevel = "warn"
)

type Config struct {
	Store  *StoreConfig  `mapstructure:"store" yaml:"store"`
	Upload *UploadConfig `mapstructure:"upload" yaml:"upload,omitempty"`
	Log    *LogConfig    `mapstructure:"log" yaml:"log,omitempty"`
}

type StoreConfig struct {
	Driver    string     `mapstructure:"driver" yaml:"driver,omitempty"`
	Endpoint  string     `mapstructure:"endpoint" yaml:"endpoint"`
	Region    string     `mapstructure:"region" yaml:"region,omitempty"`
	AccessKey string     `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string     `mapstructure:"secret_key" yaml:"secret_key"`
	Bucket    string     `mapstructure:"bucket" yaml:"bucket"`
	Prefix    string     `mapstructure:"prefix" yaml:"prefix,omitempty"`
	PathStyle bool       `mapstructure:"path_style" yaml:"path_style"`
	TLS       *TLSConfig `mapstructure:"tls" yaml:"tls,omitempty"`
}

type TLSConfig struct {
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

type UploadConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

func Unmarshal(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Workers returns the configured upload concurrency, or DefaultWorkers.
func (c *Config) Workers() int {
	if c == nil || c.Upload == nil || c.Upload.Workers <= 0 {
		return DefaultWorkers
	}
	return c.Upload.Workers
}

// LogLevel returns the configured log level, or DefaultLogLevel.
func (c *Config) LogLevel() string {
	if c == nil || c.Log == nil || c.Log.Level == "" {
		return DefaultLogLevel
	}
	return c.Log.Level
}

// Skeleton is the config written by `ossctl init`.
func Skeleton() *Config {
	return &Config{
		Store: &StoreConfig{
			Driver:    DriverS3,
			Endpoint:  "https://s3.amazonaws.com",
			Region:    DefaultRegion,
			Bucket:    "my-bucket",
			PathStyle: true,
		},
		Upload: &UploadConfig{Workers: DefaultWorkers},
		Log:    &LogConfig{Level: DefaultLogLevel},
	}
}
