// Package config loads the operator configuration from struct defaults, an
// optional YAML file, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	lookupEnv func(string) (string, bool)
}

// Validator can be implemented by config structs to enable validation.
type Validator interface {
	Validate() error
}

// NewLoader creates a new configuration loader.
// envPrefix should be like "PCO" (without trailing delimiter).
// Environment variables use double underscore (__) for nesting:
// PCO__WATCH__TIMEOUT_SECONDS -> watch.timeout_seconds
func NewLoader(envPrefix string) *Loader {
	return &Loader{
		k:         koanf.New("."),
		envPrefix: envPrefix + "__",
		lookupEnv: os.LookupEnv,
	}
}

// LoadWithDefaults loads configuration with the following priority (highest to lowest):
//  1. Environment variables (PCO__WATCH__TIMEOUT_SECONDS -> watch.timeout_seconds)
//  2. Aliases: single environment variables mapped onto one key
//  3. Config file (YAML)
//  4. Struct defaults
//
// If configPath is specified but the file does not exist, an error is returned.
// If configPath is empty, only defaults and environment variables are used.
func (l *Loader) LoadWithDefaults(defaults any, configPath string, aliases map[string]string) error {
	if defaults != nil {
		if err := l.k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
			return fmt.Errorf("failed to load defaults: %w", err)
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("config file not found: %s", configPath)
		}
		if err := l.k.Load(file.Provider(configPath), koanfyaml.Parser()); err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
	}

	aliased := map[string]any{}
	for envVar, key := range aliases {
		if v, ok := l.lookupEnv(envVar); ok && v != "" {
			aliased[key] = v
		}
	}
	if len(aliased) > 0 {
		if err := l.k.Load(confmap.Provider(aliased, "."), nil); err != nil {
			return fmt.Errorf("failed to load environment aliases: %w", err)
		}
	}

	// Double underscore (__) for nesting: PCO__WATCH__TIMEOUT_SECONDS -> watch.timeout_seconds
	envProvider := env.Provider(l.envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		return key
	})
	if err := l.k.Load(envProvider, nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	return nil
}

// LoadFlags applies CLI flag overrides using explicit mappings.
// Only flags that were explicitly set by the user are applied.
// Call this after LoadWithDefaults for highest priority overrides.
func (l *Loader) LoadFlags(flags *pflag.FlagSet, mappings map[string]string) error {
	var errs []error
	flags.Visit(func(f *pflag.Flag) {
		if key, ok := mappings[f.Name]; ok {
			if err := l.k.Set(key, f.Value.String()); err != nil {
				errs = append(errs, fmt.Errorf("flag %s: %w", f.Name, err))
			}
		}
	})
	return errors.Join(errs...)
}

// UnmarshalAndValidate unmarshals the configuration and validates it.
// If out implements Validator, Validate() is called after unmarshaling.
func (l *Loader) UnmarshalAndValidate(path string, out any) error {
	if err := l.k.Unmarshal(path, out); err != nil {
		return err
	}
	if v, ok := out.(Validator); ok {
		return v.Validate()
	}
	return nil
}

// DumpYAML writes the loaded configuration as YAML to the provided writer.
func (l *Loader) DumpYAML(w io.Writer) error {
	return yaml.NewEncoder(w).Encode(l.k.Raw())
}
