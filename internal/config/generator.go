// generator.go provides config templates for dsync init.
//
// init and defaults are complementary: fields with defaults (polling, http,
// token env names) are left out, init writes what a comparison needs.

package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// Template represents a configuration template type.
type Template string

const (
	// TemplateGithub generates a configuration comparing a GitHub repository.
	TemplateGithub Template = "github"
	// TemplateGitlab generates a configuration comparing a GitLab project.
	TemplateGitlab Template = "gitlab"
)

// Templates lists the available templates in prompt order.
var Templates = []Template{TemplateGithub, TemplateGitlab}

// ParseTemplate validates a template name.
func ParseTemplate(name string) (Template, error) {
	for _, t := range Templates {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown template %q", name)
}

// TemplateConfig holds a Config and its associated comment.
type TemplateConfig struct {
	Config       Config
	TokenComment string // Comment to insert before the [repo] section
}

// GenerateConfig returns the TOML content for the given template.
func GenerateConfig(template Template) (string, error) {
	tc := getTemplateConfig(template)

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tc.Config); err != nil {
		return "", fmt.Errorf("encode template: %w", err)
	}

	content := buf.String()
	if tc.TokenComment != "" {
		content = insertSectionComment(content, "[repo]", tc.TokenComment)
	}

	return SchemaComment + content, nil
}

// WriteTemplate writes a generated template to path, refusing to overwrite.
func WriteTemplate(fs afero.Fs, path string, template Template) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	if exists {
		return fmt.Errorf("%s: %w", path, os.ErrExist)
	}

	content, err := GenerateConfig(template)
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, []byte(content), 0o644)
}

func getTemplateConfig(template Template) TemplateConfig {
	switch template {
	case TemplateGithub:
		return TemplateConfig{
			Config: Config{
				Server: "https://localhost:7788",
				Repo: Repo{
					Type:   RepoGithub,
					Owner:  "octocat",
					Name:   "hello-world",
					Branch: "main",
				},
				Dataset: Dataset{PersistentID: "doi:10.70122/FK2/EXAMPLE"},
			},
			TokenComment: "tokens are read from " + DefaultRepoTokenEnv + " and " + DefaultDatasetTokenEnv,
		}
	case TemplateGitlab:
		return TemplateConfig{
			Config: Config{
				Server: "https://localhost:7788",
				Repo: Repo{
					Type:   RepoGitlab,
					Owner:  "group",
					Name:   "project",
					Branch: "main",
				},
				Dataset: Dataset{PersistentID: "doi:10.70122/FK2/EXAMPLE"},
			},
			TokenComment: "tokens are read from " + DefaultRepoTokenEnv + " and " + DefaultDatasetTokenEnv,
		}
	default:
		return getTemplateConfig(TemplateGithub)
	}
}

// insertSectionComment inserts a comment line before the given section header.
func insertSectionComment(content, header, comment string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines)+1)
	for _, line := range lines {
		if strings.TrimSpace(line) == header {
			result = append(result, "# "+comment)
		}
		result = append(result, line)
	}
	return strings.Join(result, "\n")
}
