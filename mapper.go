package statement

import (
	"sort"
)

// node is a descriptor mapping parsed once into its classification.
type node struct {
	data   map[string]interface{}
	action Action
	id     interface{}
	hasID  bool
	leaves []string
	nested []collection
}

// collection is a descriptor field holding a sequence of mappings.
type collection struct {
	key      string
	elements []map[string]interface{}
}

type mapper struct {
	options   *Options
	mutations Mutations
}

// Map converts a mutation descriptor into a plan of mutations, sorted by
// priority and stable with respect to descriptor order.
//
// This function uses the default options.
func Map(descriptor map[string]interface{}) Mutations {
	return DefaultOptions.Map(descriptor)
}

// Map converts a mutation descriptor into a plan of mutations, sorted by
// priority and stable with respect to descriptor order.
func (options *Options) Map(descriptor map[string]interface{}) Mutations {
	m := mapper{
		options:   options,
		mutations: Mutations{},
	}

	if len(descriptor) == 0 {
		return m.mutations
	}

	m.walk(descriptor, nil, "")

	sort.SliceStable(m.mutations, func(i, j int) bool {
		return m.mutations[i].Priority() < m.mutations[j].Priority()
	})

	return m.mutations
}

func (m *mapper) parse(data map[string]interface{}) node {
	n := node{data: data}

	var deleted bool
	n.id, n.hasID = data[idKey]
	_, deleted = data[deleteKey]

	switch {
	case deleted:
		n.action = ActionRemove
	case n.hasID:
		n.action = ActionUpdate
	default:
		n.action = ActionAdd
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		if key != idKey {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		if elements, ok := m.collection(data[key]); ok {
			n.nested = append(n.nested, collection{key: key, elements: elements})
		} else {
			n.leaves = append(n.leaves, key)
		}
	}

	return n
}

// collection reports whether value is a non-empty sequence of mappings.
func (m *mapper) collection(value interface{}) ([]map[string]interface{}, bool) {
	arr, ok := m.options.convert(value).([]interface{})
	if !ok || len(arr) == 0 {
		return nil, false
	}

	elements := make([]map[string]interface{}, 0, len(arr))
	for _, element := range arr {
		obj, ok := m.options.convert(element).(map[string]interface{})
		if !ok {
			return nil, false
		}
		elements = append(elements, obj)
	}

	return elements, true
}

func (m *mapper) walk(data map[string]interface{}, prefix Path, property string) {
	n := m.parse(data)

	path := make(Path, len(prefix), len(prefix)+2)
	copy(path, prefix)

	if property != "" {
		path = append(path, PathStep{Key: property})
		if n.hasID {
			path = append(path, PathStep{Key: idKey, Value: n.id, Identified: true})
		}
	} else if n.action == ActionAdd {
		// The root is the document itself; its fields can only be set.
		n.action = ActionUpdate
	}

	if len(n.nested) == 0 {
		if !n.hasID && n.action != ActionRemove && len(n.leaves) == 0 {
			return
		}
		m.emit(path, n.action, n.data)
		return
	}

	m.splitLeaves(n, path)

	for _, c := range n.nested {
		for _, element := range c.elements {
			m.walk(element, path, c.key)
		}
	}
}

// splitLeaves emits the leaf fields of a node which also holds nested
// collections. They all target the node's own path.
func (m *mapper) splitLeaves(n node, path Path) {
	if len(n.leaves) == 0 {
		return
	}

	switch n.action {
	case ActionUpdate:
		for _, key := range n.leaves {
			m.emit(path, ActionUpdate, map[string]interface{}{key: n.data[key]})
		}
	case ActionAdd:
		record := make(map[string]interface{}, len(n.leaves))
		for _, key := range n.leaves {
			record[key] = n.data[key]
		}
		m.emit(path, ActionAdd, record)
	case ActionRemove:
		m.emit(path, ActionRemove, map[string]interface{}{deleteKey: n.data[deleteKey]})
	}
}

func (m *mapper) emit(path Path, action Action, data map[string]interface{}) {
	m.mutations = append(m.mutations, Mutation{
		Path:   path,
		Action: action,
		Data:   data,
	})
}
