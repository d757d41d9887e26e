// Package diff builds a folder hierarchy from a flat list of per-file
// comparison records, derives folder statuses bottom-up, and applies bulk
// action selection and visibility filters to the resulting rows.
package diff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the comparison outcome of a file. Values match the wire format
// of the comparison backend.
type Status int

const (
	StatusEqual Status = iota
	StatusNew
	StatusUpdated
	StatusDeleted
	StatusUnknown
)

// String returns the lower-case name of the status.
func (s Status) String() string {
	switch s {
	case StatusEqual:
		return "equal"
	case StatusNew:
		return "new"
	case StatusUpdated:
		return "updated"
	case StatusDeleted:
		return "deleted"
	case StatusUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus parses a status name as produced by String.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equal":
		return StatusEqual, nil
	case "new":
		return StatusNew, nil
	case "updated":
		return StatusUpdated, nil
	case "deleted":
		return StatusDeleted, nil
	case "unknown":
		return StatusUnknown, nil
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

// OptionalStatus is a Status that may be unset. Synthesized folders carry an
// unset status until aggregation assigns one; leaves always carry a set one.
type OptionalStatus struct {
	value Status
	set   bool
}

// SetStatus returns an OptionalStatus holding s.
func SetStatus(s Status) OptionalStatus {
	return OptionalStatus{value: s, set: true}
}

// UnsetStatus returns an empty OptionalStatus.
func UnsetStatus() OptionalStatus {
	return OptionalStatus{}
}

// Get returns the status and whether it is set.
func (o OptionalStatus) Get() (Status, bool) {
	return o.value, o.set
}

// IsSet reports whether a status is present.
func (o OptionalStatus) IsSet() bool {
	return o.set
}

// Is reports whether the status is set and equal to s.
func (o OptionalStatus) Is(s Status) bool {
	return o.set && o.value == s
}

func (o OptionalStatus) String() string {
	if !o.set {
		return "-"
	}
	return o.value.String()
}

// MarshalJSON encodes an unset status as null.
func (o OptionalStatus) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(int(o.value))
}

// UnmarshalJSON decodes null as unset and an integer as a set status.
func (o *OptionalStatus) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = OptionalStatus{}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid status: %w", err)
	}
	if v < int(StatusEqual) || v > int(StatusUnknown) {
		return fmt.Errorf("invalid status value %d", v)
	}
	*o = SetStatus(Status(v))
	return nil
}

// Action is the remediation chosen for a row. Values match the wire format
// of the submission backend.
type Action int

const (
	ActionIgnore Action = iota
	ActionCopy
	ActionUpdate
	ActionDelete
)

// String returns the lower-case name of the action.
func (a Action) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionCopy:
		return "copy"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}
