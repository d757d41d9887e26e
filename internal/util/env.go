package util

import (
	"os"

	"github.com/spf13/afero"
	"golang.org/x/term"
)

// Env contains environment dependencies that can be mocked for testing.
type Env struct {
	// Fs is the filesystem to use for file operations.
	Fs afero.Fs
	// Getenv looks up environment variables (tokens, debug flags).
	Getenv func(string) string
	// IsTerminal reports whether stdin is an interactive terminal.
	IsTerminal func() bool
}

// NewEnv creates an Env with the given filesystem and the process environment.
func NewEnv(fs afero.Fs) *Env {
	return &Env{Fs: fs, Getenv: os.Getenv, IsTerminal: stdinIsTerminal}
}

// NewOsEnv creates an Env on the OS filesystem.
func NewOsEnv() *Env {
	return NewEnv(afero.NewOsFs())
}

// NewTestEnv creates an Env with an in-memory filesystem, the given
// environment variables and no terminal (for testing).
func NewTestEnv(vars map[string]string) *Env {
	return &Env{
		Fs:         afero.NewMemMapFs(),
		Getenv:     func(k string) string { return vars[k] },
		IsTerminal: func() bool { return false },
	}
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
