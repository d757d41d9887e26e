package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ErykKul/DataSync/internal/api"
	"github.com/ErykKul/DataSync/internal/config"
	"github.com/ErykKul/DataSync/internal/logging"
	"github.com/ErykKul/DataSync/internal/util"
)

// Common error messages for CLI commands.
const (
	ErrMsgConfigNotFound = "configuration not found: run 'dsync init' first"
	ErrMsgNoData         = "comparison service returned no data yet: try again later"
	ErrMsgStillUpdating  = "comparison job is still updating: run 'dsync compare' again later"
	ErrMsgNotTerminal    = "--interactive requires a terminal"
	ErrMsgNothingToShow  = "no comparison data to submit"
)

// loadConfig loads and validates the configuration at path, relative to cwd.
// Returns the config, or an error with user-friendly message.
func loadConfig(env *util.Env, cwd, path string) (*config.Config, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	cfg, err := config.LoadConfig(env.Fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.New(ErrMsgConfigNotFound)
		}
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// newLogger creates the stderr logger. A non-empty override (the --log-level
// flag) wins over the config.
func newLogger(cfg *config.Config, override string) (*logging.Logger, error) {
	level := cfg.LogLevel
	if override != "" {
		level = override
	}
	log, err := logging.NewDefault(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log, nil
}

// newClient creates the comparison service client described by cfg.
func newClient(cfg *config.Config, log *logging.Logger) (*api.Client, error) {
	return api.NewClient(api.Options{
		BaseURL:      cfg.Server,
		RepoType:     string(cfg.Repo.Type),
		RetryMax:     cfg.HTTP.RetryMax,
		RetryWaitMin: cfg.HTTP.RetryWaitMin(),
		RetryWaitMax: cfg.HTTP.RetryWaitMax(),
		Logger:       log.Named("http"),
	})
}

func compareRequest(cfg *config.Config, creds config.Credentials) api.CompareRequest {
	return api.CompareRequest{
		RepoToken:      creds.RepoToken,
		RepoOwner:      cfg.Repo.Owner,
		RepoName:       cfg.Repo.Name,
		Hash:           cfg.Repo.Branch,
		PersistentID:   cfg.Dataset.PersistentID,
		DataverseToken: creds.DataverseToken,
	}
}

func storeRequest(cfg *config.Config, creds config.Credentials) api.StoreRequest {
	return api.StoreRequest{
		PersistentID:   cfg.Dataset.PersistentID,
		DataverseToken: creds.DataverseToken,
		RepoToken:      creds.RepoToken,
		RepoOwner:      cfg.Repo.Owner,
		RepoName:       cfg.Repo.Name,
		Hash:           cfg.Repo.Branch,
	}
}

// getCwd returns the current working directory with a wrapped error.
func getCwd() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}
