package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/steveyegge/srmauto/internal/constants"
)

// envSetter applies one SRM_* variable to a Config.
type envSetter func(c *Config, value string) error

// envOverrides maps setting keys to their setters. The environment variable
// is constants.EnvPrefix plus the upper-cased key (SRM_TIMEOUT_SRM, ...).
// This is the single source of truth for which settings can be overridden.
var envOverrides = map[string]envSetter{
	"srm_path":           func(c *Config, v string) error { c.SRMPath = v; return nil },
	"srm_args":           func(c *Config, v string) error { c.SRMArgs = splitList(v, " "); return nil },
	"theme":              func(c *Config, v string) error { c.Theme = v; return nil },
	"auto_start":         boolSetter(func(c *Config, b bool) { c.AutoStart = b }),
	"log_level":          func(c *Config, v string) error { c.LogLevel = v; return nil },
	"timeout_steam":      intSetter(func(c *Config, n int) { c.TimeoutSteam = n }),
	"grace_period":       intSetter(func(c *Config, n int) { c.GracePeriod = n }),
	"timeout_srm":        intSetter(func(c *Config, n int) { c.TimeoutSRM = n }),
	"steam_pattern":      func(c *Config, v string) error { c.SteamPattern = v; return nil },
	"steam_processes":    func(c *Config, v string) error { c.SteamProcesses = splitList(v, ","); return nil },
	"force_kill":         boolSetter(func(c *Config, b bool) { c.ForceKill = b }),
	"strict_termination": boolSetter(func(c *Config, b bool) { c.StrictTermination = b }),
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return constants.EnvPrefix + strings.ToUpper(key)
}

// ApplyEnv overlays SRM_* environment variables onto c using lookup
// (normally os.LookupEnv). Variable names are matched case-insensitively,
// so SRM_THEME and srm_theme are equivalent.
func ApplyEnv(c *Config, lookup func(string) (string, bool)) error {
	for key, set := range envOverrides {
		value, ok := lookupKey(key, lookup)
		if !ok {
			continue
		}
		if err := set(c, strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("%s: %w", EnvName(key), err)
		}
	}
	return nil
}

// ApplyProcessEnv overlays the current process environment.
func ApplyProcessEnv(c *Config) error {
	return ApplyEnv(c, os.LookupEnv)
}

func lookupKey(key string, lookup func(string) (string, bool)) (string, bool) {
	if v, ok := lookup(EnvName(key)); ok {
		return v, true
	}
	return lookup(strings.ToLower(EnvName(key)))
}

// Persistable returns the copy of edited to write back to the settings
// file. loaded is the config edited started from and onDisk what the file
// holds. A setting overridden by the environment keeps its file value
// unless the user changed it away from the override.
func Persistable(edited, loaded, onDisk *Config, lookup func(string) (string, bool)) *Config {
	out := edited.Clone()
	for key := range envOverrides {
		if _, ok := lookupKey(key, lookup); !ok {
			continue
		}
		dst := settingField(out, key)
		if reflect.DeepEqual(dst.Interface(), settingField(loaded, key).Interface()) {
			dst.Set(settingField(onDisk.Clone(), key))
		}
	}
	return out
}

// settingField returns the field of c whose toml key is key.
func settingField(c *Config, key string) reflect.Value {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") == key {
			return v.Field(i)
		}
	}
	panic("config: no setting " + key)
}

func boolSetter(apply func(*Config, bool)) envSetter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		apply(c, b)
		return nil
	}
}

func intSetter(apply func(*Config, int)) envSetter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer %q", v)
		}
		apply(c, n)
		return nil
	}
}

func splitList(v, sep string) []string {
	var out []string
	for _, part := range strings.Split(v, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
