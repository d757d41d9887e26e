package diff

import (
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

// leaf builds a valid leaf record for id with status s.
func leaf(id string, s Status) FileRecord {
	parent := path.Dir(id)
	if parent == "." {
		parent = ""
	}
	return FileRecord{ID: id, Path: parent, Name: path.Base(id), Status: SetStatus(s)}
}

func mustBuild(t *testing.T, records ...FileRecord) *Tree {
	t.Helper()
	tree, err := Build(records)
	require.NoError(t, err)
	return tree
}

func statusOf(t *testing.T, tree *Tree, id string) Status {
	t.Helper()
	rec, ok := tree.Get(id)
	require.True(t, ok, "record %q not found", id)
	s, set := rec.Status.Get()
	require.True(t, set, "record %q has no status", id)
	return s
}

func actionOf(t *testing.T, tree *Tree, id string) Action {
	t.Helper()
	rec, ok := tree.Get(id)
	require.True(t, ok, "record %q not found", id)
	return rec.Action
}

// isFolder reports whether id names a folder synthesized from a path prefix.
func (t *Tree) isFolder(id string) bool {
	slot, ok := t.slots[id]
	return ok && slot != rootSlot && t.nodes[slot].folder
}

// parentOf returns the parent id of the record with the given id. Top-level
// records return "" with ok set.
func (t *Tree) parentOf(id string) (string, bool) {
	slot, ok := t.slots[id]
	if !ok || slot == rootSlot {
		return "", false
	}
	return t.nodes[t.nodes[slot].parent].record.ID, true
}

// childrenOf returns the ids of the direct children of id in insertion order.
// Use "" for the top-level entries.
func (t *Tree) childrenOf(id string) []string {
	slot, ok := t.slots[id]
	if !ok {
		return nil
	}
	children := t.nodes[slot].children
	ids := make([]string, len(children))
	for i, c := range children {
		ids[i] = t.nodes[c].record.ID
	}
	return ids
}
