// Package config reads and writes the user configuration file, a key=value
// file under the XDG config directory, with FORMALIZE_* environment
// fallbacks.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// appName names the config and data directories.
const appName = "go-formalize"

// Config keys.
const (
	KeyProvider     = "provider"
	KeyModel        = "model"
	KeyExamplesPath = "examples-path"
	KeyListenAddr   = "listen-addr"
	KeyPromptFile   = "prompt-file"
)

// Environment variable fallbacks.
const (
	EnvProvider     = "FORMALIZE_PROVIDER"
	EnvModel        = "FORMALIZE_MODEL"
	EnvExamplesPath = "FORMALIZE_EXAMPLES"
	EnvListenAddr   = "FORMALIZE_ADDR"
	EnvPromptFile   = "FORMALIZE_PROMPT_FILE"
)

// DefaultExamplesFile is the corpus file name inside the data directory.
const DefaultExamplesFile = "examples.json"

// ErrUnknownKey indicates a key that is not one of Keys().
var ErrUnknownKey = errors.New("unknown config key")

// envFor maps each key to its environment fallback.
var envFor = map[string]string{
	KeyProvider:     EnvProvider,
	KeyModel:        EnvModel,
	KeyExamplesPath: EnvExamplesPath,
	KeyListenAddr:   EnvListenAddr,
	KeyPromptFile:   EnvPromptFile,
}

// Config holds user configuration loaded from ~/.config/go-formalize/config.
type Config struct {
	Provider     string
	Model        string
	ExamplesPath string
	ListenAddr   string
	PromptFile   string
}

// Keys returns the supported keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(envFor))
	for k := range envFor {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ValidKey returns ErrUnknownKey for a key not in Keys().
func ValidKey(key string) error {
	if _, ok := envFor[key]; !ok {
		return fmt.Errorf("%w: %q (valid: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	return nil
}

// EnvVar returns the environment fallback for key, or "".
func EnvVar(key string) string {
	return envFor[key]
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-formalize.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// DataDir returns the data directory path.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share/go-formalize.
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks.
// Returns an empty Config if the file doesn't exist (not an error).
func Load() (Config, error) {
	p, err := path()
	if err != nil {
		return Config{}, err
	}

	data, err := parseFile(p)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	value := func(key string) string {
		if v := data[key]; v != "" {
			return v
		}
		return os.Getenv(envFor[key])
	}

	return Config{
		Provider:     value(KeyProvider),
		Model:        value(KeyModel),
		ExamplesPath: value(KeyExamplesPath),
		ListenAddr:   value(KeyListenAddr),
		PromptFile:   value(KeyPromptFile),
	}, nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// Save writes a single key=value to the config file.
// Creates the config directory and file if they don't exist.
// Preserves existing key=value pairs but discards comments.
func Save(key, value string) error {
	if err := ValidKey(key); err != nil {
		return err
	}
	p, err := path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, _ := parseFile(p)
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	return writeFile(p, existing)
}

// writeFile writes the config map to a file, keys sorted.
func writeFile(p string, data map[string]string) error {
	// #nosec G302 G304 -- config file with standard permissions, path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, data[key]); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	if err := ValidKey(key); err != nil {
		return "", err
	}
	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns all config values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// ResolveExamplesPath returns the corpus location: p with ~ expanded, or
// examples.json in DataDir when p is empty.
func ResolveExamplesPath(p string) (string, error) {
	if p != "" {
		return filepath.Clean(ExpandPath(p)), nil
	}
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, DefaultExamplesFile), nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

// Dir returns the configuration directory path (exported for testing).
func Dir() (string, error) {
	return dir()
}

// ParseFile reads a key=value config file (exported for testing).
func ParseFile(p string) (map[string]string, error) {
	return parseFile(p)
}
