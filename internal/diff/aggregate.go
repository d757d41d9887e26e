package diff

// Aggregate assigns a derived status to every folder whose status is unset,
// resolving children before parents. A folder's status depends only on its
// direct children, checked in this order:
//
//	any child Unknown     -> Unknown
//	all children Equal    -> Equal
//	all children Deleted  -> Deleted
//	all children New      -> New
//	otherwise             -> Updated
//
// The root sentinel never receives a status.
func (t *Tree) Aggregate() {
	for _, c := range t.nodes[rootSlot].children {
		t.aggregate(c)
	}
}

func (t *Tree) aggregate(slot int) {
	n := &t.nodes[slot]
	if n.record.Status.IsSet() {
		return
	}
	for _, c := range n.children {
		t.aggregate(c)
	}
	n.record.Status = SetStatus(t.folderStatus(n.children))
}

func (t *Tree) folderStatus(children []int) Status {
	allDeleted, allNew, allEqual := true, true, true
	anyUnknown := false
	for _, c := range children {
		s := t.nodes[c].record.Status
		allDeleted = allDeleted && s.Is(StatusDeleted)
		allNew = allNew && s.Is(StatusNew)
		allEqual = allEqual && s.Is(StatusEqual)
		anyUnknown = anyUnknown || s.Is(StatusUnknown)
	}

	switch {
	case anyUnknown:
		return StatusUnknown
	case allEqual:
		return StatusEqual
	case allDeleted:
		return StatusDeleted
	case allNew:
		return StatusNew
	default:
		return StatusUpdated
	}
}
