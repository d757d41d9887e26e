package diff

// ShowOnly hides every row whose status is not s. Rows without a status are
// hidden. Each call replaces the previous visibility state.
func (t *Tree) ShowOnly(s Status) {
	for slot := rootSlot + 1; slot < len(t.nodes); slot++ {
		rec := &t.nodes[slot].record
		rec.Hidden = !rec.Status.Is(s)
	}
}

// ShowAll clears the hidden flag on every row.
func (t *Tree) ShowAll() {
	for slot := rootSlot + 1; slot < len(t.nodes); slot++ {
		t.nodes[slot].record.Hidden = false
	}
}

// Visible returns the number of rows that are not hidden.
func (t *Tree) Visible() int {
	n := 0
	for slot := rootSlot + 1; slot < len(t.nodes); slot++ {
		if !t.nodes[slot].record.Hidden {
			n++
		}
	}
	return n
}
