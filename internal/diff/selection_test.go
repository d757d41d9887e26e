package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionFor(t *testing.T) {
	statuses := []Status{StatusNew, StatusEqual, StatusUpdated, StatusDeleted}

	tests := []struct {
		mode SelectionMode
		want map[Status]Action
	}{
		{SelectNone, map[Status]Action{
			StatusNew: ActionIgnore, StatusEqual: ActionIgnore, StatusUpdated: ActionIgnore, StatusDeleted: ActionIgnore,
		}},
		{SelectUpdate, map[Status]Action{
			StatusNew: ActionCopy, StatusEqual: ActionIgnore, StatusUpdated: ActionUpdate, StatusDeleted: ActionIgnore,
		}},
		{SelectMirror, map[Status]Action{
			StatusNew: ActionCopy, StatusEqual: ActionIgnore, StatusUpdated: ActionUpdate, StatusDeleted: ActionDelete,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			for _, s := range statuses {
				got, ok := ActionFor(tt.mode, s)
				require.True(t, ok)
				assert.Equal(t, tt.want[s], got, "status %s", s)
			}
		})
	}
}

func TestActionFor_UpdateAndMirrorDifferOnlyOnDeleted(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusEqual, StatusUpdated, StatusDeleted, StatusUnknown} {
		u, uok := ActionFor(SelectUpdate, s)
		m, mok := ActionFor(SelectMirror, s)
		assert.Equal(t, uok, mok)
		if s == StatusDeleted {
			assert.NotEqual(t, u, m)
			continue
		}
		assert.Equal(t, u, m, "status %s", s)
	}
}

func TestActionFor_UnknownUntouched(t *testing.T) {
	_, ok := ActionFor(SelectUpdate, StatusUnknown)
	assert.False(t, ok)
	_, ok = ActionFor(SelectMirror, StatusUnknown)
	assert.False(t, ok)

	action, ok := ActionFor(SelectNone, StatusUnknown)
	assert.True(t, ok)
	assert.Equal(t, ActionIgnore, action)
}

func TestApplySelection_MirrorEndToEnd(t *testing.T) {
	tree := mustBuild(t,
		leaf("a/b.txt", StatusNew),
		leaf("a/c.txt", StatusEqual),
		leaf("d.txt", StatusDeleted),
	)
	assert.Equal(t, StatusUpdated, statusOf(t, tree, "a"))

	tree.ApplySelection(SelectMirror)

	assert.Equal(t, ActionCopy, actionOf(t, tree, "a/b.txt"))
	assert.Equal(t, ActionIgnore, actionOf(t, tree, "a/c.txt"))
	assert.Equal(t, ActionDelete, actionOf(t, tree, "d.txt"))
	assert.Equal(t, ActionUpdate, actionOf(t, tree, "a"))

	leaves := tree.Leaves()
	require.Len(t, leaves, 3)
	assert.Equal(t, ActionDelete, leaves[2].Action)
}

func TestApplySelection_UpdateKeepsDeleted(t *testing.T) {
	tree := mustBuild(t, leaf("x", StatusDeleted), leaf("y", StatusUpdated))
	tree.ApplySelection(SelectUpdate)
	assert.Equal(t, ActionIgnore, actionOf(t, tree, "x"))
	assert.Equal(t, ActionUpdate, actionOf(t, tree, "y"))
}

func TestApplySelection_NoneResets(t *testing.T) {
	tree := mustBuild(t, leaf("a/x", StatusNew), leaf("y", StatusUnknown))
	tree.ApplySelection(SelectMirror)
	require.Equal(t, ActionCopy, actionOf(t, tree, "a/x"))

	tree.ApplySelection(SelectNone)
	for _, row := range tree.Rows() {
		assert.Equal(t, ActionIgnore, row.Action, "row %q", row.ID)
	}
}

func TestApplySelection_SkipsHiddenRows(t *testing.T) {
	tree := mustBuild(t,
		leaf("a/new.txt", StatusNew),
		leaf("a/same.txt", StatusEqual),
		leaf("gone.txt", StatusDeleted),
		leaf("changed.txt", StatusUpdated),
	)
	tree.ApplySelection(SelectMirror)
	before := make(map[string]Action)
	for _, row := range tree.Rows() {
		before[row.ID] = row.Action
	}

	tree.ShowOnly(StatusNew)
	tree.ApplySelection(SelectNone)

	for _, row := range tree.Rows() {
		if row.Status.Is(StatusNew) {
			assert.Equal(t, ActionIgnore, row.Action, "visible row %q", row.ID)
			continue
		}
		assert.Equal(t, before[row.ID], row.Action, "hidden row %q must keep its action", row.ID)
	}
}

func TestApplySelection_UpdateAfterShowOnlyNew(t *testing.T) {
	tree := mustBuild(t,
		leaf("n.txt", StatusNew),
		leaf("e.txt", StatusEqual),
		leaf("u.txt", StatusUpdated),
		leaf("d.txt", StatusDeleted),
	)
	before := tree.Rows()

	tree.ShowOnly(StatusNew)
	tree.ApplySelection(SelectUpdate)

	after := tree.Rows()
	for i, row := range after {
		if row.Status.Is(StatusNew) {
			assert.Equal(t, ActionCopy, row.Action)
			continue
		}
		assert.Equal(t, before[i].Action, row.Action, "row %q", row.ID)
	}
}

func TestParseSelectionMode(t *testing.T) {
	for _, m := range []SelectionMode{SelectNone, SelectUpdate, SelectMirror} {
		got, err := ParseSelectionMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseSelectionMode("sync")
	assert.Error(t, err)
}
