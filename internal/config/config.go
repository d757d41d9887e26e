// Package config handles parsing and writing of dsync configuration files (.dsync.toml).
package config

import (
	"errors"
	"fmt"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".dsync.toml"

// RepoType selects the repository backend of the comparison service.
type RepoType string

const (
	RepoGithub RepoType = "github"
	RepoGitlab RepoType = "gitlab"
)

// Default values applied to missing fields.
const (
	DefaultRepoType        = RepoGithub
	DefaultRepoTokenEnv    = "DSYNC_REPO_TOKEN"
	DefaultDatasetTokenEnv = "DSYNC_DATAVERSE_TOKEN"
	DefaultPollIntervalMS  = 5000
	DefaultPollMaxAttempts = 10
	DefaultRetryMax        = 3
	DefaultRetryWaitMinMS  = 1000
	DefaultRetryWaitMaxMS  = 30000
	DefaultLogLevel        = "info"
)

// Repo identifies the repository side of the comparison.
type Repo struct {
	Type     RepoType `toml:"type,omitempty" json:"type,omitempty" jsonschema:"enum=github,enum=gitlab,description=Repository backend"`
	Owner    string   `toml:"owner,omitempty" json:"owner,omitempty" jsonschema:"description=Repository owner or group"`
	Name     string   `toml:"name,omitempty" json:"name,omitempty" jsonschema:"description=Repository name"`
	Branch   string   `toml:"branch,omitempty" json:"branch,omitempty" jsonschema:"description=Branch, tag or commit hash to compare"`
	TokenEnv string   `toml:"token_env,omitempty" json:"token_env,omitempty" jsonschema:"description=Environment variable holding the repository token"`
}

// Dataset identifies the dataset side of the comparison.
type Dataset struct {
	PersistentID string `toml:"persistent_id,omitempty" json:"persistent_id,omitempty" jsonschema:"description=Persistent identifier of the dataset (e.g. doi:10.70122/FK2/ABCDEF)"`
	TokenEnv     string `toml:"token_env,omitempty" json:"token_env,omitempty" jsonschema:"description=Environment variable holding the Dataverse API token"`
}

// Polling controls how long dsync waits for the comparison job.
type Polling struct {
	IntervalMS  int `toml:"interval_ms,omitempty" json:"interval_ms,omitempty" jsonschema:"minimum=1,description=Milliseconds between poll requests"`
	MaxAttempts int `toml:"max_attempts,omitempty" json:"max_attempts,omitempty" jsonschema:"minimum=1,description=Poll responses processed before offering a manual refresh"`
}

// Interval returns the poll interval as a duration.
func (p Polling) Interval() time.Duration {
	return time.Duration(p.IntervalMS) * time.Millisecond
}

// HTTP controls transport retries.
type HTTP struct {
	RetryMax       int `toml:"retry_max,omitempty" json:"retry_max,omitempty" jsonschema:"minimum=0,description=Retries per HTTP request"`
	RetryWaitMinMS int `toml:"retry_wait_min_ms,omitempty" json:"retry_wait_min_ms,omitempty" jsonschema:"description=Minimum backoff in milliseconds"`
	RetryWaitMaxMS int `toml:"retry_wait_max_ms,omitempty" json:"retry_wait_max_ms,omitempty" jsonschema:"description=Maximum backoff in milliseconds"`
}

func (h HTTP) RetryWaitMin() time.Duration {
	return time.Duration(h.RetryWaitMinMS) * time.Millisecond
}

func (h HTTP) RetryWaitMax() time.Duration {
	return time.Duration(h.RetryWaitMaxMS) * time.Millisecond
}

// Config is the dsync configuration after includes are merged.
type Config struct {
	Server   string  `toml:"server" json:"server" jsonschema:"required,description=Base URL of the comparison service"`
	LogLevel string  `toml:"log_level,omitempty" json:"log_level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,description=Log level"`
	Repo     Repo    `toml:"repo" json:"repo" jsonschema:"description=Repository to compare"`
	Dataset  Dataset `toml:"dataset" json:"dataset" jsonschema:"required,description=Dataset to compare against"`
	Polling  Polling `toml:"polling,omitempty" json:"polling,omitempty" jsonschema:"description=Comparison job polling"`
	HTTP     HTTP    `toml:"http,omitempty" json:"http,omitempty" jsonschema:"description=HTTP retry settings"`
}

// rawConfig is the on-disk shape, including the includes directive.
type rawConfig struct {
	Includes []string `toml:"includes,omitempty"`
	Config
}

// SchemaConfig is the exported type for JSON schema generation.
// It represents what users can write in .dsync.toml files.
type SchemaConfig struct {
	Includes []string `toml:"includes,omitempty" json:"includes,omitempty" jsonschema:"description=Other config files to include and merge (supports glob patterns)"`
	Config
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Repo.Type == "" {
		c.Repo.Type = DefaultRepoType
	}
	if c.Repo.TokenEnv == "" {
		c.Repo.TokenEnv = DefaultRepoTokenEnv
	}
	if c.Dataset.TokenEnv == "" {
		c.Dataset.TokenEnv = DefaultDatasetTokenEnv
	}
	if c.Polling.IntervalMS == 0 {
		c.Polling.IntervalMS = DefaultPollIntervalMS
	}
	if c.Polling.MaxAttempts == 0 {
		c.Polling.MaxAttempts = DefaultPollMaxAttempts
	}
	if c.HTTP.RetryMax == 0 {
		c.HTTP.RetryMax = DefaultRetryMax
	}
	if c.HTTP.RetryWaitMinMS == 0 {
		c.HTTP.RetryWaitMinMS = DefaultRetryWaitMinMS
	}
	if c.HTTP.RetryWaitMaxMS == 0 {
		c.HTTP.RetryWaitMaxMS = DefaultRetryWaitMaxMS
	}
}

// Validate reports configuration errors that would make a comparison fail.
func (c *Config) Validate() error {
	var errs []error
	if c.Server == "" {
		errs = append(errs, errors.New("server is required"))
	}
	if c.Dataset.PersistentID == "" {
		errs = append(errs, errors.New("dataset.persistent_id is required"))
	}
	switch c.Repo.Type {
	case RepoGithub, RepoGitlab:
	default:
		errs = append(errs, fmt.Errorf("unsupported repo.type %q", c.Repo.Type))
	}
	if c.Polling.IntervalMS <= 0 {
		errs = append(errs, errors.New("polling.interval_ms must be positive"))
	}
	if c.Polling.MaxAttempts <= 0 {
		errs = append(errs, errors.New("polling.max_attempts must be positive"))
	}
	if c.HTTP.RetryMax < 0 {
		errs = append(errs, errors.New("http.retry_max must not be negative"))
	}
	if c.HTTP.RetryWaitMinMS > c.HTTP.RetryWaitMaxMS {
		errs = append(errs, errors.New("http.retry_wait_min_ms exceeds http.retry_wait_max_ms"))
	}
	return errors.Join(errs...)
}

// Credentials are the secrets resolved from the environment.
type Credentials struct {
	RepoToken      string
	DataverseToken string
}

// Credentials reads the tokens from the environment variables named in the config.
func (c *Config) Credentials(getenv func(string) string) Credentials {
	return Credentials{
		RepoToken:      getenv(c.Repo.TokenEnv),
		DataverseToken: getenv(c.Dataset.TokenEnv),
	}
}

// LoadConfig reads and parses a configuration file from the given path.
// Supports includes directive for composable configuration.
// Applies defaults for missing fields.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	cfg, err := LoadWithIncludes(fs, path)
	if err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// SchemaComment is the TOML comment that references the JSON Schema for editor autocomplete.
const SchemaComment = "#:schema https://raw.githubusercontent.com/ErykKul/DataSync/refs/heads/main/dsync-config.schema.json\n\n"

// SaveConfig writes the configuration to the given path with schema comment header.
func SaveConfig(fs afero.Fs, path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return afero.WriteFile(fs, path, append([]byte(SchemaComment), data...), 0o644)
}
