package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteConfigReference(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeConfigReference(&buf))

	out := buf.String()
	assert.Contains(t, out, "# Configuration")
	assert.Contains(t, out, "## github\n\n```toml\n")
	assert.Contains(t, out, "## gitlab\n\n```toml\n")
	assert.Contains(t, out, "type = 'gitlab'")
	assert.Contains(t, out, "| `DSYNC_REPO_TOKEN` | repository access token |")
	assert.Contains(t, out, "| `DSYNC_DATAVERSE_TOKEN` | Dataverse API token |")
}
