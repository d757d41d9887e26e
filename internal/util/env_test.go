package util

import (
	"testing"

	"github.com/spf13/afero"
)

func TestNewTestEnv(t *testing.T) {
	env := NewTestEnv(map[string]string{"DSYNC_REPO_TOKEN": "secret"})

	if got := env.Getenv("DSYNC_REPO_TOKEN"); got != "secret" {
		t.Errorf("Getenv = %q, want secret", got)
	}
	if got := env.Getenv("MISSING"); got != "" {
		t.Errorf("Getenv(MISSING) = %q, want empty", got)
	}
	if env.IsTerminal() {
		t.Error("test env must not report a terminal")
	}
	if _, ok := env.Fs.(*afero.MemMapFs); !ok {
		t.Errorf("expected in-memory filesystem, got %T", env.Fs)
	}
}

func TestNewEnv_UsesGivenFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	env := NewEnv(fs)
	if env.Fs != fs {
		t.Error("NewEnv should keep the given filesystem")
	}
	if env.Getenv == nil || env.IsTerminal == nil {
		t.Error("NewEnv should wire process lookups")
	}
}
