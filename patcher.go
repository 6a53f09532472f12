package statement

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const notFoundMarker = "{not_found}"

type patcher struct {
	options  *Options
	document map[string]interface{}
	mutation Mutation
	segments []string
}

// Apply applies a single mutation to the document, in place.
//
// This function uses the default options.
func Apply(document map[string]interface{}, mutation Mutation) Result {
	return DefaultOptions.Apply(document, mutation)
}

// Apply applies a single mutation to the document, in place. Missing targets
// are reported as StatusNotFound; anything else that prevents the mutation
// from being applied, including panics, is reported as StatusFailed.
func (options *Options) Apply(document map[string]interface{}, mutation Mutation) (result Result) {
	p := patcher{
		options:  options,
		document: document,
		mutation: mutation,
	}

	defer func() {
		if r := recover(); r != nil {
			result = p.fail(errors.Errorf("panic: %v", r))
		}
		if result.Status == StatusFailed {
			glog.Warningf("[patch]%s %s failed = %s\n", mutation.Action, mutation.Path, result.Err)
		} else if glog.V(2) {
			glog.Infof("[patch]%s %s %s\n", mutation.Action, mutation.Path, result.Status)
		}
	}()

	return p.run()
}

func (p *patcher) run() Result {
	if p.document == nil {
		return p.fail(errors.Wrap(ErrMalformed, "document is null"))
	}

	var current interface{} = p.document
	// set replaces the current value inside its parent container.
	set := func(interface{}) {}
	index := -1

	steps := p.mutation.Path
	for i, step := range steps {
		last := i == len(steps)-1

		if obj, ok := current.(map[string]interface{}); ok && !step.Identified {
			value := p.options.convert(obj[step.Key])
			arr, ok := value.([]interface{})
			if !ok {
				return p.notFound(fmt.Sprintf("{%s}", step.Key))
			}
			key := step.Key
			obj[key] = arr
			current = arr
			set = func(v interface{}) { obj[key] = v }
			p.segments = append(p.segments, key)
			continue
		}

		if arr, ok := current.([]interface{}); ok && step.Identified {
			idx := p.find(arr, step)
			if idx < 0 {
				return p.notFound(fmt.Sprintf("{%s: %v}", step.Key, step.Value))
			}
			p.segments = append(p.segments, strconv.Itoa(idx))
			if last && p.mutation.Action == ActionRemove {
				// Stay on the parent sequence to splice from it.
				index = idx
				continue
			}
			element := p.options.convert(arr[idx])
			arr[idx] = element
			current = element
			set = func(v interface{}) { arr[idx] = v }
			continue
		}

		if step.Identified {
			return p.notFound(fmt.Sprintf("{%s: %v}", step.Key, step.Value))
		}
		return p.notFound(fmt.Sprintf("{%s}", step.Key))
	}

	switch p.mutation.Action {
	case ActionAdd:
		return p.add(current, set)
	case ActionUpdate:
		return p.update(current)
	case ActionRemove:
		return p.remove(current, set, index)
	}

	return p.fail(errors.Wrapf(ErrMalformed, "unknown action %s", p.mutation.Action))
}

func (p *patcher) find(arr []interface{}, step PathStep) int {
	for idx, element := range arr {
		obj, ok := p.options.convert(element).(map[string]interface{})
		if !ok {
			continue
		}
		if value, ok := obj[step.Key]; ok && sameValue(value, step.Value) {
			return idx
		}
	}
	return -1
}

func (p *patcher) add(current interface{}, set func(interface{})) Result {
	arr, ok := current.([]interface{})
	if !ok {
		return p.fail(errors.Wrapf(ErrMalformed, "cannot add a record to %s at %q", describe(current), p.textPath()))
	}

	records := make([]interface{}, len(arr))
	for idx, element := range arr {
		records[idx] = p.options.convert(element)
	}

	id, err := p.options.allocator().NextID(records)
	if err != nil {
		return p.fail(errors.Wrapf(err, "allocate id at %q", p.textPath()))
	}

	record := make(map[string]interface{}, len(p.mutation.Data)+1)
	for key, value := range p.mutation.Data {
		record[key] = value
	}
	record[idKey] = id

	set(append(arr, record))

	p.segments = append(p.segments, strconv.Itoa(len(arr)))

	// Later mutations of the batch may reach into the record.
	snapshot := deepCopy(record)

	return Result{
		Mutation: p.mutation,
		Status:   StatusApplied,
		Fragment: Fragment{p.textPath(): []interface{}{snapshot}},
		Changes:  []Change{{Op: ChangeAdd, Path: p.location(), Value: deepCopy(snapshot)}},
	}
}

func (p *patcher) update(current interface{}) Result {
	obj, ok := current.(map[string]interface{})
	if !ok {
		return p.fail(errors.Wrapf(ErrMalformed, "cannot update fields of %s at %q", describe(current), p.textPath()))
	}

	keys := make([]string, 0, len(p.mutation.Data))
	for key := range p.mutation.Data {
		if key != idKey {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	fragment := Fragment{}
	changes := make([]Change, 0, len(keys))
	base := p.textPath()

	for _, key := range keys {
		value := p.mutation.Data[key]

		op := ChangeReplace
		if _, existed := obj[key]; !existed {
			op = ChangeAdd
		}
		obj[key] = value

		if base == "" {
			fragment[key] = value
		} else {
			fragment[base+"."+key] = value
		}
		changes = append(changes, Change{Op: op, Path: append(p.location(), key), Value: value})
	}

	return Result{
		Mutation: p.mutation,
		Status:   StatusApplied,
		Fragment: fragment,
		Changes:  changes,
	}
}

func (p *patcher) remove(current interface{}, set func(interface{}), index int) Result {
	arr, ok := current.([]interface{})
	if !ok || index < 0 {
		return p.fail(errors.Wrapf(ErrMalformed, "remove requires an identified record at %q", p.textPath()))
	}

	next := make([]interface{}, 0, len(arr)-1)
	next = append(next, arr[:index]...)
	next = append(next, arr[index+1:]...)
	set(next)

	return Result{
		Mutation: p.mutation,
		Status:   StatusApplied,
		Fragment: Fragment{p.textPath(): p.mutation.Data[deleteKey]},
		Changes:  []Change{{Op: ChangeRemove, Path: p.location()}},
	}
}

func (p *patcher) notFound(property string) Result {
	p.segments = append(p.segments, notFoundMarker)
	return Result{
		Mutation: p.mutation,
		Status:   StatusNotFound,
		Fragment: Fragment{
			p.textPath(): []interface{}{
				map[string]interface{}{
					"error": "The property " + property + " was not found",
					"data":  p.mutation.Data,
				},
			},
		},
		Err: errors.Wrapf(ErrNotFound, "property %s", property),
	}
}

func (p *patcher) fail(err error) Result {
	return Result{
		Mutation: p.mutation,
		Status:   StatusFailed,
		Err:      err,
	}
}

func (p *patcher) textPath() string {
	return strings.Join(p.segments, ".")
}

func (p *patcher) location() []string {
	location := make([]string, len(p.segments))
	copy(location, p.segments)
	return location
}
