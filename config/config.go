// Package config loads the settings of the tapecmp harness from a YAML file,
// TAPECMP_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/fractalqb/tapecmp"
)

const EnvPrefix = "TAPECMP"

// Config holds all configuration for a tapecmp run
type Config struct {
	// Dir is the working directory of the test case
	Dir string `mapstructure:"dir"`

	Subject struct {
		// Path of the simulation executable, relative to Dir
		Path   string   `mapstructure:"path"`
		Args   []string `mapstructure:"args"`
		Input  string   `mapstructure:"input"`
		Output string   `mapstructure:"output"`
		Error  string   `mapstructure:"error"`
	} `mapstructure:"subject"`

	Tapes struct {
		// ReferencePrefix selects the reference tapes, e.g. referenceTape25
		ReferencePrefix string `mapstructure:"reference_prefix"`
		// TrialPrefix is prepended to the last two characters of a
		// reference tape's name to get the trial tape's name
		TrialPrefix string `mapstructure:"trial_prefix"`
		DiffSuffix  string `mapstructure:"diff_suffix"`
		// Keep tapes, diffs and captured output even if all tapes match
		Keep bool `mapstructure:"keep"`
	} `mapstructure:"tapes"`

	Tolerance struct {
		Relative float64 `mapstructure:"relative"`
		Absolute float64 `mapstructure:"absolute"`
	} `mapstructure:"tolerance"`

	// DateMask enables the replacement of run dates before comparison
	DateMask bool         `mapstructure:"date_mask"`
	Masks    []MaskConfig `mapstructure:"masks"`

	// Summary is the name of a YAML file that receives the run summary
	Summary string `mapstructure:"summary"`
}

type MaskConfig struct {
	Pattern string `mapstructure:"pattern"`
	Replace string `mapstructure:"replace"`
}

// SetDefaults sets the defaults of the NJOY regression test layout
func SetDefaults(v *viper.Viper) {
	v.SetDefault("dir", ".")
	v.SetDefault("subject.path", "../../njoy")
	v.SetDefault("subject.args", []string{})
	v.SetDefault("subject.input", "input")
	v.SetDefault("subject.output", "output")
	v.SetDefault("subject.error", "error")
	v.SetDefault("tapes.reference_prefix", "referenceTape")
	v.SetDefault("tapes.trial_prefix", "tape")
	v.SetDefault("tapes.diff_suffix", "_diff")
	v.SetDefault("tapes.keep", false)
	v.SetDefault("tolerance.relative", 1e-9)
	v.SetDefault("tolerance.absolute", 1e-10)
	v.SetDefault("date_mask", true)
	v.SetDefault("summary", "")
}

// New creates a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file, if not empty, into v and decodes the result. Without a
// file, tapecmp.yaml is looked up in the current directory.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("tapecmp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) Validate() error {
	if err := cfg.ToleranceValue().Validate(); err != nil {
		return err
	}
	switch {
	case cfg.Tapes.ReferencePrefix == "":
		return errors.New("empty reference tape prefix")
	case cfg.Tapes.TrialPrefix == "":
		return errors.New("empty trial tape prefix")
	case cfg.Tapes.ReferencePrefix == cfg.Tapes.TrialPrefix:
		return errors.New("reference and trial tape prefix must differ")
	case cfg.Tapes.DiffSuffix == "":
		return errors.New("empty diff suffix")
	}
	return nil
}

func (cfg *Config) ToleranceValue() tapecmp.Tolerance {
	return tapecmp.Tolerance{
		Relative: cfg.Tolerance.Relative,
		Absolute: cfg.Tolerance.Absolute,
	}
}

// CompileMasks returns the date mask, if enabled, followed by the configured
// masks.
func (cfg *Config) CompileMasks() (res []*tapecmp.Mask, err error) {
	if cfg.DateMask {
		res = append(res, tapecmp.DateMask())
	}
	for _, mc := range cfg.Masks {
		m, err := tapecmp.NewMask(mc.Pattern, mc.Replace)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, nil
}
