package diff

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalStatus_JSON(t *testing.T) {
	var rec FileRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","path":"","name":"a","status":3,"action":1}`), &rec))
	assert.True(t, rec.Status.Is(StatusDeleted))
	assert.Equal(t, ActionCopy, rec.Action)

	var folder FileRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","path":"","name":"a","status":null}`), &folder))
	assert.False(t, folder.Status.IsSet())

	var missing FileRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a"}`), &missing))
	assert.False(t, missing.Status.IsSet())

	out, err := json.Marshal(FileRecord{ID: "f", Status: UnsetStatus()})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"status":null`)

	var bad FileRecord
	assert.Error(t, json.Unmarshal([]byte(`{"id":"a","status":9}`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"id":"a","status":"new"}`), &bad))
}

func TestFileRecord_AttributesPassThrough(t *testing.T) {
	in := `{"id":"a/b","path":"a","name":"b","status":1,"action":0,"hidden":false,"attributes":{"remoteHash":"abc","isFile":true}}`
	var rec FileRecord
	require.NoError(t, json.Unmarshal([]byte(in), &rec))

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusEqual, StatusNew, StatusUpdated, StatusDeleted, StatusUnknown} {
		got, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStatus("changed")
	assert.Error(t, err)
}
