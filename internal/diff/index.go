package diff

import "strings"

// idSeparator separates path segments in record ids.
const idSeparator = "/"

// BuildIndex turns an ordered list of leaf records into a Tree, synthesizing
// a folder record for every proper prefix of every id. Folders are inserted
// the first time their prefix is encountered, so child order follows input
// order. Records are validated first; malformed input is rejected with a
// *ValidationError rather than producing a partial tree.
//
// BuildIndex does not aggregate; folder statuses stay unset until Aggregate.
func BuildIndex(records []FileRecord) (*Tree, error) {
	if err := ValidateRecords(records); err != nil {
		return nil, err
	}

	t := newTree(len(records))
	t.leaves = make([]int, 0, len(records))
	for _, rec := range records {
		segments := strings.Split(rec.ID, idSeparator)
		parent := ""
		for _, seg := range segments[:len(segments)-1] {
			id := joinID(parent, seg)
			if _, ok := t.slots[id]; !ok {
				t.insert(FileRecord{
					ID:     id,
					Path:   parent,
					Name:   seg,
					Status: UnsetStatus(),
					Action: ActionIgnore,
				}, true)
			}
			parent = id
		}
		if rec.Name == "" {
			rec.Name = segments[len(segments)-1]
		}
		t.leaves = append(t.leaves, t.insert(rec, false))
	}

	// Link children to parents; every path resolves after validation.
	for slot := rootSlot + 1; slot < len(t.nodes); slot++ {
		parent := t.slots[t.nodes[slot].record.Path]
		t.nodes[slot].parent = parent
		t.nodes[parent].children = append(t.nodes[parent].children, slot)
	}
	return t, nil
}

// Build rebuilds the whole tree from records and derives folder statuses.
func Build(records []FileRecord) (*Tree, error) {
	t, err := BuildIndex(records)
	if err != nil {
		return nil, err
	}
	t.Aggregate()
	return t, nil
}

// ValidateRecords checks the identity contract of a record list: non-empty
// ids without empty segments, a path equal to the parent prefix of the id, a
// set status, unique ids, and no leaf id that is also a folder prefix.
func ValidateRecords(records []FileRecord) error {
	leaves := make(map[string]int, len(records))
	folders := make(map[string]struct{})

	for i, rec := range records {
		if rec.ID == "" || !rec.Status.IsSet() {
			return &ValidationError{Index: i, ID: rec.ID, Err: ErrInvalidID}
		}
		segments := strings.Split(rec.ID, idSeparator)
		for _, seg := range segments {
			if seg == "" {
				return &ValidationError{Index: i, ID: rec.ID, Err: ErrInvalidID}
			}
		}
		parent := strings.Join(segments[:len(segments)-1], idSeparator)
		if rec.Path != parent {
			return &ValidationError{Index: i, ID: rec.ID, Err: ErrPathMismatch}
		}
		if _, dup := leaves[rec.ID]; dup {
			return &ValidationError{Index: i, ID: rec.ID, Err: ErrDuplicateID}
		}
		leaves[rec.ID] = i

		prefix := ""
		for _, seg := range segments[:len(segments)-1] {
			prefix = joinID(prefix, seg)
			folders[prefix] = struct{}{}
		}
	}

	// Report the first offending record in input order.
	first := -1
	for id, i := range leaves {
		if _, ok := folders[id]; ok && (first < 0 || i < first) {
			first = i
		}
	}
	if first >= 0 {
		return &ValidationError{Index: first, ID: records[first].ID, Err: ErrIDCollision}
	}
	return nil
}

func joinID(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + idSeparator + name
}
