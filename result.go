package statement

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is wrapped by the error of a StatusNotFound result.
	ErrNotFound = errors.New("not found")
	// ErrMalformed is wrapped by the error of a StatusFailed result when the
	// mutation does not fit the document it was applied to.
	ErrMalformed = errors.New("malformed mutation")
)

type Status uint8

const (
	// StatusApplied means the mutation changed the document.
	StatusApplied Status = iota
	// StatusNotFound means a property or identified record on the path was
	// missing. The fragment holds the error descriptor.
	StatusNotFound
	// StatusFailed means the mutation could not be applied at all. There is
	// no fragment and it is left out of the update statement.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusNotFound:
		return "not_found"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Fragment maps dot-joined document paths to changed values, inserted records
// or error descriptors.
type Fragment map[string]interface{}

type ChangeOp string

// The operation names match RFC 6902.
const (
	ChangeAdd     ChangeOp = "add"
	ChangeReplace ChangeOp = "replace"
	ChangeRemove  ChangeOp = "remove"
)

// Change is one structural edit made to the document, addressed by the
// unescaped segments of its location.
type Change struct {
	Op    ChangeOp
	Path  []string
	Value interface{}
}

// Result is the outcome of applying a single mutation.
type Result struct {
	Mutation Mutation
	Status   Status
	Fragment Fragment
	Changes  []Change
	Err      error
}
