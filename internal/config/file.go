package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is looked up in the working directory when no --config
// path is given.
const DefaultFileName = "camstitch.toml"

// LoadFile decodes the TOML file at path over cfg. An empty path falls back
// to ./camstitch.toml; a missing default file is not an error, a missing
// explicit file is. It returns the resolved path and whether a file was read.
func LoadFile(cfg *Config, path string) (string, bool, error) {
	resolved, explicit, err := resolveConfigPath(path)
	if err != nil {
		return "", false, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return resolved, false, nil
		}
		return "", false, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return "", false, fmt.Errorf("parse config %s: %s", resolved, strict.String())
		}
		return "", false, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	return resolved, true, nil
}

// EncodeTOML renders cfg as TOML. Used by the sample-config output and tests.
func EncodeTOML(cfg *Config) (string, error) {
	var b strings.Builder
	enc := toml.NewEncoder(&b)
	if err := enc.Encode(cfg); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		return expanded, true, err
	}
	abs, err := filepath.Abs(DefaultFileName)
	if err != nil {
		return "", false, err
	}
	return abs, false, nil
}

func expandPath(pathValue string) (string, error) {
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	return filepath.Clean(pathValue), nil
}
