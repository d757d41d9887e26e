package diff

import "encoding/json"

// FileRecord is one row of the comparison: a file (leaf) with an externally
// supplied status, or a folder synthesized from a path prefix whose status is
// derived by Aggregate.
type FileRecord struct {
	// ID is the full slash-separated path and the unique key of the record.
	ID string `json:"id"`
	// Path is the id of the parent folder, "" for top-level records.
	Path string `json:"path"`
	// Name is the last path segment.
	Name   string         `json:"name"`
	Status OptionalStatus `json:"status"`
	Action Action         `json:"action"`
	// Hidden is display-only state controlled by ShowOnly and ShowAll.
	Hidden bool `json:"hidden"`
	// Attributes is backend metadata (hashes, sizes, urls), passed through untouched.
	Attributes json.RawMessage `json:"attributes,omitempty"`
}

// rootSlot is the arena slot of the root sentinel (id "").
const rootSlot = 0

type node struct {
	record   FileRecord
	parent   int
	children []int
	folder   bool
}

// Tree is an arena of records indexed by id. Parent and child links are slot
// indices, never shared references, so a rebuild always produces an
// independent structure. The root sentinel lives in slot 0 and never appears
// in Rows, Leaves or Walk.
type Tree struct {
	nodes  []node
	slots  map[string]int
	leaves []int // leaf slots in input order
}

func newTree(capacity int) *Tree {
	t := &Tree{
		nodes: make([]node, 0, capacity+1),
		slots: make(map[string]int, capacity+1),
	}
	t.insert(FileRecord{Action: ActionIgnore}, true)
	t.nodes[rootSlot].parent = -1
	return t
}

func (t *Tree) insert(rec FileRecord, folder bool) int {
	slot := len(t.nodes)
	t.nodes = append(t.nodes, node{record: rec, folder: folder})
	t.slots[rec.ID] = slot
	return slot
}

// Len returns the number of rows, excluding the root sentinel.
func (t *Tree) Len() int {
	return len(t.nodes) - 1
}

// Get returns the record with the given id. The root sentinel is not
// addressable.
func (t *Tree) Get(id string) (FileRecord, bool) {
	slot, ok := t.slots[id]
	if !ok || slot == rootSlot {
		return FileRecord{}, false
	}
	return t.nodes[slot].record, true
}

// Rows returns every record except the root sentinel in arena order: each
// folder precedes the first leaf that introduced it.
func (t *Tree) Rows() []FileRecord {
	rows := make([]FileRecord, 0, t.Len())
	for slot := rootSlot + 1; slot < len(t.nodes); slot++ {
		rows = append(rows, t.nodes[slot].record)
	}
	return rows
}

// Leaves returns the leaf records in input order. This is the record list
// handed to submission; folder rows carry informational actions only.
func (t *Tree) Leaves() []FileRecord {
	leaves := make([]FileRecord, len(t.leaves))
	for i, slot := range t.leaves {
		leaves[i] = t.nodes[slot].record
	}
	return leaves
}

// WalkFunc is called by Walk for every row.
type WalkFunc func(depth int, rec FileRecord, folder bool)

// Walk visits the rows depth-first in child insertion order. Top-level rows
// have depth 0.
func (t *Tree) Walk(fn WalkFunc) {
	t.walk(rootSlot, -1, fn)
}

func (t *Tree) walk(slot, depth int, fn WalkFunc) {
	if slot != rootSlot {
		n := t.nodes[slot]
		fn(depth, n.record, n.folder)
	}
	for _, c := range t.nodes[slot].children {
		t.walk(c, depth+1, fn)
	}
}

// Counts returns the number of leaves per status.
func (t *Tree) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, slot := range t.leaves {
		if s, ok := t.nodes[slot].record.Status.Get(); ok {
			counts[s]++
		}
	}
	return counts
}

// Actions returns the number of leaves per selected action.
func (t *Tree) Actions() map[Action]int {
	actions := make(map[Action]int)
	for _, slot := range t.leaves {
		actions[t.nodes[slot].record.Action]++
	}
	return actions
}
