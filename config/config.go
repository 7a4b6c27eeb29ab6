// Package config loads graphd's runtime tunables (planner, executor,
// storage client, logging) the way the teacher's cue_parser.go loads and
// validates a parsed config struct, generalized from CUE decoding to
// viper's file+env layering and from teacher's validator.Struct check.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"graphd/core/optimizer"
	"graphd/core/storageclient"
)

// Planner holds optimizer tunables: which rewrite families run, and how
// the plan cache (core/optimizer's ristretto-backed PlanCache) is sized.
type Planner struct {
	EnablePushdown      bool  `mapstructure:"enable_pushdown"`
	EnableDecorrelation bool  `mapstructure:"enable_decorrelation"`
	CacheCapacity       int64 `mapstructure:"cache_capacity" validate:"min=0"`
	CacheTTLSeconds     int   `mapstructure:"cache_ttl_seconds" validate:"min=0"`
}

// Executor holds per-query execution limits.
type Executor struct {
	MemoryLimitBytes int64 `mapstructure:"memory_limit_bytes" validate:"min=0"`
}

// Storage holds the storage client's retry policy, the knobs
// storageclient.RetryPolicy actually exposes.
type Storage struct {
	MaxTries            uint `mapstructure:"max_tries" validate:"min=1"`
	InitialIntervalMS   int  `mapstructure:"initial_interval_ms" validate:"min=1"`
	MaxIntervalMS       int  `mapstructure:"max_interval_ms" validate:"min=1,gtefield=InitialIntervalMS"`
}

// Logging holds zerolog setup tunables.
type Logging struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `mapstructure:"pretty"`
}

// Config is graphd's full runtime configuration.
type Config struct {
	Planner  Planner  `mapstructure:"planner"`
	Executor Executor `mapstructure:"executor"`
	Storage  Storage  `mapstructure:"storage"`
	Logging  Logging  `mapstructure:"logging"`
}

var validate = validator.New()

// Default returns the configuration graphd runs with when no file or
// environment override is present.
func Default() *Config {
	return &Config{
		Planner: Planner{
			EnablePushdown:      true,
			EnableDecorrelation: true,
			CacheCapacity:       1 << 20,
			CacheTTLSeconds:     300,
		},
		Executor: Executor{MemoryLimitBytes: 512 << 20},
		Storage: Storage{
			MaxTries:          4,
			InitialIntervalMS: 20,
			MaxIntervalMS:     500,
		},
		Logging: Logging{Level: "info", Pretty: false},
	}
}

// Load reads configuration from path (an explicit file) or, when path is
// empty, from a "graphd" config file in the current directory or
// $HOME/.graphd, then from GRAPHD_-prefixed environment variables, layered
// over Default the way evalgo's initConfig layers viper sources over
// cobra-flag defaults. The result is validated with validator/v10 before
// being returned.
func Load(path string) (*Config, error) {
	def := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("graphd")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.graphd")
	}
	bindDefaults(v, def)

	v.SetEnvPrefix("graphd")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// bindDefaults seeds v with def's values so any key the file/environment
// doesn't set still unmarshals to a sensible value, mirrored after the
// teacher's config layer always having a baseline before overlaying a
// parsed document.
func bindDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("planner.enable_pushdown", def.Planner.EnablePushdown)
	v.SetDefault("planner.enable_decorrelation", def.Planner.EnableDecorrelation)
	v.SetDefault("planner.cache_capacity", def.Planner.CacheCapacity)
	v.SetDefault("planner.cache_ttl_seconds", def.Planner.CacheTTLSeconds)
	v.SetDefault("executor.memory_limit_bytes", def.Executor.MemoryLimitBytes)
	v.SetDefault("storage.max_tries", def.Storage.MaxTries)
	v.SetDefault("storage.initial_interval_ms", def.Storage.InitialIntervalMS)
	v.SetDefault("storage.max_interval_ms", def.Storage.MaxIntervalMS)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.pretty", def.Logging.Pretty)
}

// OptimizerOptions converts the planner section into the shape
// core/optimizer actually consumes.
func (c *Config) OptimizerOptions() optimizer.Options {
	return optimizer.Options{
		EnablePushdown:      c.Planner.EnablePushdown,
		EnableDecorrelation: c.Planner.EnableDecorrelation,
	}
}

// CacheTTL returns the planner's cache TTL as a time.Duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Planner.CacheTTLSeconds) * time.Second
}

// RetryPolicy converts the storage section into storageclient's retry
// policy shape.
func (c *Config) RetryPolicy() storageclient.RetryPolicy {
	return storageclient.RetryPolicy{
		MaxTries:        c.Storage.MaxTries,
		InitialInterval: time.Duration(c.Storage.InitialIntervalMS) * time.Millisecond,
		MaxInterval:     time.Duration(c.Storage.MaxIntervalMS) * time.Millisecond,
	}
}
