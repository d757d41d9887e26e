package config

import (
	"fmt"
	"path/filepath"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// LoadWithIncludes loads config with includes support.
// It processes includes recursively, merging configs in the order they are specified.
// Typical use is keeping machine-local settings in an uncommitted file.
func LoadWithIncludes(fs afero.Fs, path string) (Config, error) {
	return loadWithIncludes(fs, path, make(map[string]bool))
}

func loadWithIncludes(fs afero.Fs, path string, visited map[string]bool) (Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	if visited[absPath] {
		return Config{}, fmt.Errorf("circular include detected: %s", path)
	}
	visited[absPath] = true

	data, err := afero.ReadFile(fs, absPath)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	baseDir := filepath.Dir(absPath)

	// Includes first (depth-first), then the current file on top.
	var merged Config
	for _, includePattern := range raw.Includes {
		resolvedPattern := includePattern
		if !filepath.IsAbs(includePattern) {
			resolvedPattern = filepath.Join(baseDir, includePattern)
		}

		matchedFiles, err := expandGlob(fs, resolvedPattern)
		if err != nil {
			return Config{}, fmt.Errorf("failed to expand glob %s: %w", includePattern, err)
		}

		for _, includePath := range matchedFiles {
			included, err := loadWithIncludes(fs, includePath, visited)
			if err != nil {
				return Config{}, fmt.Errorf("failed to load include %s: %w", includePath, err)
			}
			merged = mergeConfigs(merged, included)
		}
	}

	return mergeConfigs(merged, raw.Config), nil
}

// isGlobPattern checks if the pattern contains glob special characters.
func isGlobPattern(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[':
			return true
		}
	}
	return false
}

// expandGlob expands a glob pattern and returns sorted matched files.
// For literal paths (no glob characters), returns error if file doesn't exist.
// For glob patterns, returns empty slice if no files match.
func expandGlob(fs afero.Fs, pattern string) ([]string, error) {
	if !isGlobPattern(pattern) {
		if _, err := fs.Stat(pattern); err != nil {
			return nil, err
		}
		return []string{pattern}, nil
	}

	matches, err := afero.Glob(fs, pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// mergeConfigs merges overlay config into base config.
// Sections merge field by field; a non-zero overlay field wins.
func mergeConfigs(base, overlay Config) Config {
	result := base

	setString(&result.Server, overlay.Server)
	setString(&result.LogLevel, overlay.LogLevel)

	if overlay.Repo.Type != "" {
		result.Repo.Type = overlay.Repo.Type
	}
	setString(&result.Repo.Owner, overlay.Repo.Owner)
	setString(&result.Repo.Name, overlay.Repo.Name)
	setString(&result.Repo.Branch, overlay.Repo.Branch)
	setString(&result.Repo.TokenEnv, overlay.Repo.TokenEnv)

	setString(&result.Dataset.PersistentID, overlay.Dataset.PersistentID)
	setString(&result.Dataset.TokenEnv, overlay.Dataset.TokenEnv)

	setInt(&result.Polling.IntervalMS, overlay.Polling.IntervalMS)
	setInt(&result.Polling.MaxAttempts, overlay.Polling.MaxAttempts)

	setInt(&result.HTTP.RetryMax, overlay.HTTP.RetryMax)
	setInt(&result.HTTP.RetryWaitMinMS, overlay.HTTP.RetryWaitMinMS)
	setInt(&result.HTTP.RetryWaitMaxMS, overlay.HTTP.RetryWaitMaxMS)

	return result
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
