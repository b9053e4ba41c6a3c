// Package config resolves run parameters from flags, environment variables
// and an optional configuration file.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "JOLT"

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// envKeys lists the settings that may be supplied as JOLT_* variables.
var envKeys = []string{
	"url", "method", "body", "body_file", "requests", "duration", "concurrency",
	"percentile", "json", "format", "output", "html_output", "timeout", "rate", "log_errors", "no_color",
	"tracing.endpoint", "tracing.protocol", "tracing.insecure", "tracing.sample_rate",
	"tracing.service_name", "tracing.propagate",
}

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a Config.
func (l Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	// With nothing to run, show usage instead of a validation error.
	if len(args) == 0 {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	return l.FromFlags(flagSet)
}

// FromFlags resolves a Config from an already parsed flag set. Values are
// taken from, in increasing priority: defaults, the config file, JOLT_*
// environment variables and explicitly set flags.
func (Loader) FromFlags(flagSet *pflag.FlagSet) (*Config, error) {
	envFile := lookupFlag(flagSet, "env-file")
	if envFile != "" {
		// Variables already present in the environment win over the file.
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	configPath := lookupFlag(flagSet, "config")
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	cfg.ConfigFile = configPath
	cfg.EnvFile = envFile

	headers, err := headerEntries(v.Get("headers"))
	if err != nil {
		return nil, fmt.Errorf("headers: %w", err)
	}
	cfg.Headers = headers
	if v.GetBool("json") {
		cfg.Format = FormatJSON
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	cfg.BodyFile = strings.TrimSpace(cfg.BodyFile)
	cfg.OutputFile = strings.TrimSpace(cfg.OutputFile)
	cfg.HTMLOutput = strings.TrimSpace(cfg.HTMLOutput)
	cfg.Format = Format(strings.ToLower(strings.TrimSpace(string(cfg.Format))))

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("method", "GET")
	v.SetDefault("concurrency", 1)
	v.SetDefault("percentile", 99)
	v.SetDefault("format", string(FormatText))
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("tracing.protocol", "grpc")
	v.SetDefault("tracing.sample_rate", 1.0)
}

func lookupFlag(fs *pflag.FlagSet, name string) string {
	if fs == nil {
		return ""
	}
	f := fs.Lookup(name)
	if f == nil {
		return ""
	}
	return strings.TrimSpace(f.Value.String())
}

// headerEntries accepts headers from a config file either as a list of
// "Name: Value" strings or as a name to value mapping.
func headerEntries(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		entries := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("entry %d: expected string, got %T", i, item)
			}
			entries = append(entries, s)
		}
		return entries, nil
	case map[string]interface{}:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		entries := make([]string, 0, len(v))
		for _, name := range names {
			if strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("header name cannot be empty")
			}
			entries = append(entries, fmt.Sprintf("%s: %v", name, v[name]))
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("unsupported headers type %T", raw)
	}
}
