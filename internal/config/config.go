package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultDBFileName   = "history.db"
	DefaultLogLevel     = "debug"
	DefaultPrimaryColor = "#3f51b5"

	configFileName  = ".scanhist.toml"
	configDirEnvKey = "SCANHIST_CONFIG_DIR"

	dbEnvKey          = "SCANHIST_DB"
	ignoreDupesEnvKey = "SCANHIST_IGNORE_CONSECUTIVE_DUPLICATES"
)

// HistoryConfig holds scan history preferences.
type HistoryConfig struct {
	IgnoreDuplicates bool `toml:"ignore_consecutive_duplicates"`
}

// IgnoreConsecutiveDuplicates reports whether a scan equal to the previous
// one should be dropped.
func (h *HistoryConfig) IgnoreConsecutiveDuplicates() bool {
	if h == nil {
		return false
	}
	return h.IgnoreDuplicates
}

// ChromeConfig holds bar tinting settings.
type ChromeConfig struct {
	PrimaryColor string `toml:"primary_color"`
}

// Config defines runtime configuration for scanhist.
type Config struct {
	DBPath   string        `toml:"db_path"`
	LogLevel string        `toml:"log_level"`
	History  HistoryConfig `toml:"history"`
	Chrome   ChromeConfig  `toml:"chrome"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		DBPath:   "",
		LogLevel: DefaultLogLevel,
		History: HistoryConfig{
			IgnoreDuplicates: false,
		},
		Chrome: ChromeConfig{
			PrimaryColor: DefaultPrimaryColor,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

var allowedKeys = []string{
	"db_path",
	"log_level",
	"history.ignore_consecutive_duplicates",
	"chrome.primary_color",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "db_path":
		return c.DBPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "history.ignore_consecutive_duplicates":
		return strconv.FormatBool(c.History.IgnoreDuplicates), nil
	case "chrome.primary_color":
		return c.Chrome.PrimaryColor, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// DefaultDBPath returns the database location used when db_path is unset.
func DefaultDBPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "scanhist", DefaultDBFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads the config file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if dbPath := os.Getenv(dbEnvKey); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if raw := strings.TrimSpace(os.Getenv(ignoreDupesEnvKey)); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			cfg.History.IgnoreDuplicates = parsed
		}
	}

	if cfg.DBPath == "" {
		if def, err := DefaultDBPath(); err == nil {
			cfg.DBPath = def
		}
	}
	if strings.TrimSpace(cfg.Chrome.PrimaryColor) == "" {
		cfg.Chrome.PrimaryColor = DefaultPrimaryColor
	}

	return &cfg, nil
}

// ParseColor parses #RRGGBB or #AARRGGBB. A missing alpha is opaque.
func ParseColor(raw string) (uint32, error) {
	value := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(value) != 6 && len(value) != 8 {
		return 0, fmt.Errorf("invalid color %q: want #RRGGBB or #AARRGGBB", raw)
	}
	parsed, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", raw, err)
	}
	if len(value) == 6 {
		parsed |= 0xff000000
	}
	return uint32(parsed), nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "history.ignore_consecutive_duplicates":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	case "chrome.primary_color":
		if _, err := ParseColor(value); err != nil {
			return nil, err
		}
		return value, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}
