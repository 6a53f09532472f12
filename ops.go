package statement

import (
	"fmt"
	"strings"
)

// Action is the kind of change requested by a descriptor node.
type Action uint8

const (
	ActionAdd Action = iota + 1
	ActionUpdate
	ActionRemove
)

const (
	idKey     = "_id"
	deleteKey = "_delete"
)

func (action Action) String() string {
	switch action {
	case ActionAdd:
		return "$add"
	case ActionUpdate:
		return "$update"
	case ActionRemove:
		return "$remove"
	}
	return fmt.Sprintf("Action(%d)", uint8(action))
}

// Priority orders the application of mutations within one call:
// additions first, then updates, then removals.
func (action Action) Priority() int {
	return int(action)
}

// ParseAction is the inverse of Action.String.
func ParseAction(name string) (Action, error) {
	switch name {
	case "$add":
		return ActionAdd, nil
	case "$update":
		return ActionUpdate, nil
	case "$remove":
		return ActionRemove, nil
	}
	return 0, fmt.Errorf("unknown action: %q", name)
}

// PathStep is one hop from the document root towards a mutation target.
// Without Identified it descends into the property Key. With Identified it
// selects, inside the current sequence, the element whose Key field equals Value.
type PathStep struct {
	Key        string
	Value      interface{}
	Identified bool
}

type Path []PathStep

func (path Path) String() string {
	var b strings.Builder
	for _, step := range path {
		if step.Identified {
			fmt.Fprintf(&b, "[%s=%v]", step.Key, step.Value)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(step.Key)
	}
	return b.String()
}

// Mutation is a single classified, path-addressed change derived from a
// descriptor. Data is the descriptor node it was derived from.
type Mutation struct {
	Path   Path
	Action Action
	Data   map[string]interface{}
}

func (m Mutation) Priority() int {
	return m.Action.Priority()
}

// Mutations is an ordered plan, as produced by Map.
type Mutations []Mutation
