package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/steveyegge/srmauto/internal/util"
)

// ErrNotExist is returned by Load when the settings file does not exist.
var ErrNotExist = errors.New("config file does not exist")

// Load reads the settings file at path on top of the defaults, applies the
// process environment and validates the result. Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := ApplyProcessEnv(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFile reads the settings file at path on top of the defaults, without
// environment overrides or validation. It is what the file itself says.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrInit loads path, creating it first when it does not exist. A legacy
// JSON settings file at legacyPath (if any) seeds the new file; otherwise the
// defaults are written. The returned bool reports whether a legacy file was
// migrated.
func LoadOrInit(path, legacyPath string) (*Config, bool, error) {
	migrated := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		ok, err := MigrateLegacy(legacyPath, path)
		if err != nil {
			return nil, false, err
		}
		migrated = ok
		if !ok {
			if err := Save(path, Default()); err != nil {
				return nil, false, err
			}
		}
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, migrated, err
	}
	return cfg, migrated, nil
}

// Save writes cfg to path atomically. Use Persistable first when cfg may
// carry environment overrides.
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("saving config to %s: %w", path, err)
	}
	return nil
}

// MigrateLegacy imports the JSON settings file written by older releases
// into a new TOML file. It never overwrites an existing TOML file and leaves
// the legacy file in place. Returns true if a migration happened.
func MigrateLegacy(legacyPath, path string) (bool, error) {
	if legacyPath == "" {
		return false, nil
	}
	data, err := os.ReadFile(legacyPath) //nolint:gosec // G304: user-provided settings file
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading legacy config: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return false, fmt.Errorf("parsing legacy config %s: %w", legacyPath, err)
	}
	if err := Save(path, cfg); err != nil {
		return false, err
	}
	return true, nil
}
