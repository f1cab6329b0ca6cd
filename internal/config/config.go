package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
	"store-auditor/internal/types"
)

const (
	EnvConfigPath = "STORE_AUDITOR_CONFIG"
	EnvUserAgent  = "STORE_AUDITOR_USER_AGENT"
)

// Load returns the default configuration with the YAML file at path merged over it.
// An empty path falls back to $STORE_AUDITOR_CONFIG; if neither is set the defaults are returned.
// Boolean fields can only be switched on by the file since false is their zero value.
func Load(path string) (*types.Config, error) {
	config := types.DefaultConfig()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := Merge(config, data); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	if ua := os.Getenv(EnvUserAgent); ua != "" {
		config.UserAgent = ua
	}

	return config, nil
}

// Merge decodes YAML overrides and merges them into config
func Merge(config *types.Config, data []byte) error {
	var override types.Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("failed to decode yaml: %w", err)
	}
	for i, t := range override.Transports {
		if t.Endpoint == "" {
			return fmt.Errorf("transport %d (%s) has no endpoint", i, t.Name)
		}
		if t.Envelope == "" {
			override.Transports[i].Envelope = types.EnvelopeAuto
		}
	}
	return mergo.Merge(config, override, mergo.WithOverride)
}
