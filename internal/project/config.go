package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the per-game configuration file.
const ConfigFileName = "csls.toml"

// Config mirrors csls.toml.
type Config struct {
	Project     ProjectConfig     `toml:"project"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
}

type ProjectConfig struct {
	// Scenes is the scene directory relative to the config file. Empty means
	// the directory holding startup.txt is found by walking the workspace.
	Scenes string `toml:"scenes"`
	// Exclude lists extra gitignore-style patterns.
	Exclude []string `toml:"exclude"`
}

type DiagnosticsConfig struct {
	StyleGuide bool `toml:"style_guide"`
	Max        int  `toml:"max"`
}

// DefaultConfig is used when no csls.toml exists.
func DefaultConfig() Config {
	return Config{Diagnostics: DiagnosticsConfig{StyleGuide: true}}
}

// FindConfig walks up from startDir to locate csls.toml.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadConfig decodes path over the defaults. Keys that are absent keep
// their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("diagnostics", "max") && cfg.Diagnostics.Max < 0 {
		return Config{}, fmt.Errorf("%s: [diagnostics].max must not be negative", path)
	}
	if scenes := strings.TrimSpace(cfg.Project.Scenes); scenes != "" {
		cfg.Project.Scenes = filepath.Clean(filepath.FromSlash(scenes))
		if filepath.IsAbs(cfg.Project.Scenes) || strings.HasPrefix(cfg.Project.Scenes, "..") {
			return Config{}, fmt.Errorf("%s: [project].scenes must stay inside the project", path)
		}
	}
	return cfg, nil
}

// WriteConfig stores cfg as TOML, keeping the mode of an existing file.
func WriteConfig(path string, cfg Config) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("%s: failed to encode TOML: %w", path, err)
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, buf.Bytes(), mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ResolveRoot finds the project startDir belongs to: the directory of the
// nearest csls.toml at or above it with that file's settings, else startDir
// with the defaults.
func ResolveRoot(startDir string) (string, Config, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return "", Config{}, err
	}
	if !ok {
		return startDir, DefaultConfig(), nil
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return "", Config{}, err
	}
	return filepath.Dir(path), cfg, nil
}
