package diff

import (
	"fmt"
	"strings"
)

// SelectionMode is a bulk action-assignment strategy.
type SelectionMode int

const (
	// SelectNone sets every visible row to Ignore.
	SelectNone SelectionMode = iota
	// SelectUpdate copies new files and updates changed ones; deleted files are kept.
	SelectUpdate
	// SelectMirror is SelectUpdate that also deletes files missing from the source.
	SelectMirror
)

func (m SelectionMode) String() string {
	switch m {
	case SelectNone:
		return "none"
	case SelectUpdate:
		return "update"
	case SelectMirror:
		return "mirror"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseSelectionMode parses "none", "update" or "mirror".
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return SelectNone, nil
	case "update":
		return SelectUpdate, nil
	case "mirror":
		return SelectMirror, nil
	}
	return 0, fmt.Errorf("unknown selection mode %q", s)
}

// ActionFor returns the action mode assigns to a row with the given status.
// ok is false when the mode leaves such rows untouched (Unknown status).
func ActionFor(mode SelectionMode, status Status) (action Action, ok bool) {
	if mode == SelectNone {
		return ActionIgnore, true
	}
	switch status {
	case StatusNew:
		return ActionCopy, true
	case StatusEqual:
		return ActionIgnore, true
	case StatusUpdated:
		return ActionUpdate, true
	case StatusDeleted:
		if mode == SelectMirror {
			return ActionDelete, true
		}
		return ActionIgnore, true
	}
	return 0, false
}

// ApplySelection sets the action of every visible row according to mode.
// Hidden rows keep their action. Folder rows are assigned from their derived
// status like leaves, but their action is informational only: callers acting
// on the result must use Leaves.
func (t *Tree) ApplySelection(mode SelectionMode) {
	for slot := rootSlot + 1; slot < len(t.nodes); slot++ {
		rec := &t.nodes[slot].record
		if rec.Hidden {
			continue
		}
		status, set := rec.Status.Get()
		if !set && mode != SelectNone {
			continue
		}
		if action, ok := ActionFor(mode, status); ok {
			rec.Action = action
		}
	}
}
