// Package config resolves the generator CLI's settings: defaults in code,
// PANEL_* environment variables on top, an optional YAML scenario file on
// top of that, explicit flags last.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"causalpanel/domain/core"
	"causalpanel/domain/params"
)

// Options holds the CLI-level settings that are not part of the
// ParameterSet itself.
type Options struct {
	Out    string
	Format string
	Quiet  bool
}

// OptionsFromEnv reads output options from the environment.
func OptionsFromEnv() Options {
	return Options{
		Out:    getEnvOrDefault("PANEL_OUT", "panel_out"),
		Format: getEnvOrDefault("PANEL_FORMAT", ""),
		Quiet:  getEnvBoolOrDefault("PANEL_QUIET", false),
	}
}

// ParamsFromEnv starts from the code defaults and applies PANEL_*
// overrides. Malformed values keep the default, matching flag semantics
// where the environment only supplies defaults.
func ParamsFromEnv() params.ParameterSet {
	p := params.Defaults()
	p.Users = getEnvIntOrDefault("PANEL_USERS", p.Users)
	p.Weeks = getEnvIntOrDefault("PANEL_WEEKS", p.Weeks)
	p.Seed = getEnvInt64OrDefault("PANEL_SEED", p.Seed)
	p.Omega = getEnvFloatOrDefault("PANEL_OMEGA", p.Omega)
	p.VolumeEnabled = getEnvBoolOrDefault("PANEL_VOLUME", p.VolumeEnabled)
	return p
}

// LoadScenario applies a YAML scenario file on top of p. Only keys present
// in the document are overridden; unknown keys and malformed values are
// configuration errors.
func LoadScenario(path string, p *params.ParameterSet) error {
	f, err := os.Open(path)
	if err != nil {
		return core.NewConfigurationError("scenario", path, err.Error())
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return fmt.Errorf("%w: scenario %s: %v", core.ErrConfiguration, path, err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
