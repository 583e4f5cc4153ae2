package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/meenmo/swapcurve/logger"
)

// EnvPrefix prefixes environment overrides, e.g. SWAPCURVE_SOLVER_MAX_ITERATIONS.
const EnvPrefix = "SWAPCURVE"

// Config is the file-level configuration shared by the command line tools.
type Config struct {
	Solver Solver        `mapstructure:"solver"`
	Log    logger.Config `mapstructure:"log"`
}

// Default returns the configuration used when no file overrides a value.
func Default() Config {
	return Config{
		Solver: GetSolver(),
		Log:    logger.DefaultConfig,
	}
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("solver.max_iterations", d.Solver.MaxIterations)
	v.SetDefault("solver.tolerance", d.Solver.Tolerance)
	v.SetDefault("solver.fit_tolerance", d.Solver.FitTolerance)
	v.SetDefault("solver.initial_damping", d.Solver.InitialDamping)
	v.SetDefault("solver.damping_increase", d.Solver.DampingIncrease)
	v.SetDefault("solver.damping_decrease", d.Solver.DampingDecrease)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// NewViper returns a viper instance with defaults and environment overrides bound.
// path may be empty, in which case only defaults and the environment apply.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return v, nil
}

// FromViper decodes and validates the solver and log sections of v.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Solver.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a YAML, TOML or JSON file (by extension) on top of the defaults.
func Load(path string) (Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return Config{}, err
	}
	return FromViper(v)
}
