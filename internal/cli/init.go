// Package cli implements the dsync command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ErykKul/DataSync/internal/config"
	"github.com/ErykKul/DataSync/internal/util"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize dsync configuration in current directory",
	Long: `Initialize dsync by creating a .dsync.toml configuration file in the current directory.
Tokens are not written to the file; they are read from the environment variables named by token_env.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringP("template", "t", "", "Template to use (github, gitlab); prompts when omitted on a terminal")
}

// TemplatePromptFunc asks the user for a configuration template.
type TemplatePromptFunc func() (config.Template, error)

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := getCwd()
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("config")
	name, _ := cmd.Flags().GetString("template")

	env := util.NewOsEnv()
	return initConfig(env, cmd.OutOrStdout(), filepath.Join(cwd, filepath.Clean(path)), name, promptTemplate)
}

// initConfig writes the chosen template to configPath. Without a template
// name it prompts on a terminal and falls back to github otherwise.
func initConfig(env *util.Env, w io.Writer, configPath, name string, prompt TemplatePromptFunc) error {
	if filepath.IsAbs(name) {
		return fmt.Errorf("invalid template %q", name)
	}

	var template config.Template
	var err error
	switch {
	case name != "":
		template, err = config.ParseTemplate(name)
	case env.IsTerminal():
		template, err = prompt()
	default:
		template = config.TemplateGithub
	}
	if err != nil {
		return err
	}

	if err := config.WriteTemplate(env.Fs, configPath, template); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("configuration file already exists: %s", configPath)
		}
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	util.ProgressDone(w, "Created %s\n", configPath)
	_, _ = fmt.Fprintln(w, "Edit this file to point at your comparison service, repository and dataset.")
	return nil
}

func promptTemplate() (config.Template, error) {
	var selected string
	err := huh.NewSelect[string]().
		Title("Select a template").
		Options(
			huh.NewOption("GitHub - compare a GitHub repository", string(config.TemplateGithub)),
			huh.NewOption("GitLab - compare a GitLab project", string(config.TemplateGitlab)),
		).
		Value(&selected).
		Run()
	if err != nil {
		return "", fmt.Errorf("template selection cancelled: %w", err)
	}
	return config.Template(selected), nil
}
