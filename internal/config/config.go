package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths    PathsConfig `mapstructure:"paths"`
	Train    TrainConfig `mapstructure:"train"`
	LogLevel string      `mapstructure:"log_level"`
}

type PathsConfig struct {
	Input  string `mapstructure:"input"`
	Output string `mapstructure:"output"`
	Model  string `mapstructure:"model"`
}

type TrainConfig struct {
	Iterations uint32 `mapstructure:"iterations"`
	Workers    int    `mapstructure:"workers"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			Input:  "",
			Output: "",
			Model:  "",
		},
		Train: TrainConfig{
			Iterations: 10,
			Workers:    1,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("input", defaults.Paths.Input, "Input corpus in fast-align format")
	fs.String("output", defaults.Paths.Output, "Output prefix of model files")
	fs.String("model", defaults.Paths.Model, "Prefix of previously trained model files (defaults to --output)")
	fs.Uint32("iteration", defaults.Train.Iterations, "Number of training epochs")
	fs.Int("workers", defaults.Train.Workers, "Goroutines accumulating counts per epoch (1 = sequential, 0 = one per core)")
	fs.String("log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("WALIGN")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("walign")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Paths.Model == "" {
		cfg.Paths.Model = cfg.Paths.Output
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.input", c.Paths.Input)
	v.SetDefault("paths.output", c.Paths.Output)
	v.SetDefault("paths.model", c.Paths.Model)
	v.SetDefault("train.iterations", c.Train.Iterations)
	v.SetDefault("train.workers", c.Train.Workers)
	v.SetDefault("log_level", c.LogLevel)
}

// flagKeys maps each config key to the flag that sets it. Binding per key
// (rather than aliasing) keeps nested config file values visible.
var flagKeys = map[string]string{
	"paths.input":      "input",
	"paths.output":     "output",
	"paths.model":      "model",
	"train.iterations": "iteration",
	"train.workers":    "workers",
	"log_level":        "log-level",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
