package jitspeak

import "unsafe"

// Status is the result of Inject. The values are what the runner sees.
type Status int

const (
	StatusOK       Status = 0
	StatusNoVars   Status = -1
	StatusNotFound Status = -2
	StatusNotReady Status = -3
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoVars:
		return "object has no variables"
	case StatusNotFound:
		return "variable not found"
	case StatusNotReady:
		return "extension not ready"
	}
	return "unknown status"
}

// Inject makes the variable id of dest an object reference to replacement.
// Only the Val and Kind of the variable's RValue are written.
//
// dest must be nil or a live runner object. Nothing about it is validated
// beyond the presence of its variable map.
func Inject(dest *ObjectBase, id int32, replacement unsafe.Pointer) Status {
	if dest == nil || dest.Vars == nil || dest.Vars.Elements == nil {
		return StatusNoVars
	}

	element, path := dest.Vars.Find(id)
	if path == PathMiss {
		return StatusNotFound
	}

	// A predicted slot that was never used matches identifier 0 on the
	// fast path but holds no value.
	val := element.Val
	if val == nil {
		return StatusNotFound
	}
	val.Val = replacement
	val.Kind = KindObject
	return StatusOK
}
