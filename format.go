package statement

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// Writer is an interface for writing values. This can be used for supporting a custom serialization format.
type Writer interface {
	WriteUint8(v uint8) error
	WriteUint(v int) error
	WriteString(v string) error
	WriteValue(v interface{}) error
}

// Reader is an interface for reading values. This can be used for supporting a custom serialization format.
type Reader interface {
	ReadUint8() (uint8, error)
	ReadUint() (int, error)
	ReadString() (string, error)
	ReadValue() (interface{}, error)
}

// ValueReader is the subset of Reader needed by formats that only carry generic values.
type ValueReader interface {
	ReadValue() (interface{}, error)
}

// Note: This code is intentionally verbose in order to be forward compatible.

const (
	codeAdd uint8 = iota
	codeUpdate
	codeRemove
)

const (
	codeStepProperty uint8 = iota
	codeStepIdentified
)

// Reads a single mutation.
func ReadFrom(r Reader) (Mutation, error) {
	var m Mutation

	code, err := r.ReadUint8()
	if err != nil {
		return m, err
	}

	switch code {
	case codeAdd:
		m.Action = ActionAdd
	case codeUpdate:
		m.Action = ActionUpdate
	case codeRemove:
		m.Action = ActionRemove
	default:
		return m, fmt.Errorf("unknown action code: %d", code)
	}

	n, err := r.ReadUint()
	if err != nil {
		return m, unexpected(err)
	}

	m.Path = make(Path, 0, n)
	for i := 0; i < n; i++ {
		step, err := readStep(r)
		if err != nil {
			return m, unexpected(err)
		}
		m.Path = append(m.Path, step)
	}

	data, err := r.ReadValue()
	if err != nil {
		return m, unexpected(err)
	}

	switch data := Normalize(data).(type) {
	case nil:
		m.Data = map[string]interface{}{}
	case map[string]interface{}:
		m.Data = data
	default:
		return m, fmt.Errorf("mutation data must be an object, got %s", describe(data))
	}

	return m, nil
}

func readStep(r Reader) (PathStep, error) {
	code, err := r.ReadUint8()
	if err != nil {
		return PathStep{}, err
	}

	key, err := r.ReadString()
	if err != nil {
		return PathStep{}, err
	}

	switch code {
	case codeStepProperty:
		return PathStep{Key: key}, nil
	case codeStepIdentified:
		value, err := r.ReadValue()
		if err != nil {
			return PathStep{}, err
		}
		return PathStep{Key: key, Value: value, Identified: true}, nil
	default:
		return PathStep{}, fmt.Errorf("unknown step code: %d", code)
	}
}

// A mutation cut short is never a clean end of input.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Writes a single mutation to a writer.
func WriteTo(w Writer, m Mutation) error {
	switch m.Action {
	case ActionAdd:
		err := w.WriteUint8(codeAdd)
		if err != nil {
			return err
		}
	case ActionUpdate:
		err := w.WriteUint8(codeUpdate)
		if err != nil {
			return err
		}
	case ActionRemove:
		err := w.WriteUint8(codeRemove)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown action: %s", m.Action)
	}

	err := w.WriteUint(len(m.Path))
	if err != nil {
		return err
	}

	for _, step := range m.Path {
		if step.Identified {
			err = w.WriteUint8(codeStepIdentified)
			if err != nil {
				return err
			}
			err = w.WriteString(step.Key)
			if err != nil {
				return err
			}
			err = w.WriteValue(step.Value)
			if err != nil {
				return err
			}
		} else {
			err = w.WriteUint8(codeStepProperty)
			if err != nil {
				return err
			}
			err = w.WriteString(step.Key)
			if err != nil {
				return err
			}
		}
	}

	return w.WriteValue(m.Data)
}

// Writes a plan to a writer.
func (mutations Mutations) WriteTo(w Writer) error {
	for _, m := range mutations {
		err := WriteTo(w, m)
		if err != nil {
			return err
		}
	}

	return nil
}

// Reads mutations until the reader is exhausted.
func (mutations *Mutations) ReadFrom(r Reader) error {
	for {
		m, err := ReadFrom(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		*mutations = append(*mutations, m)
	}
}

func (mutations Mutations) MarshalJSON() ([]byte, error) {
	w := jsonWriter{values: []interface{}{}}
	err := mutations.WriteTo(&w)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w.values)
}

func (mutations *Mutations) UnmarshalJSON(data []byte) error {
	var values []interface{}
	err := json.Unmarshal(data, &values)
	if err != nil {
		return err
	}

	*mutations = (*mutations)[:0]
	return mutations.DecodeJSON(values)
}

// DecodeJSON appends a plan decoded from an []interface{} as parsed by encoding/json.
func (mutations *Mutations) DecodeJSON(data []interface{}) error {
	return mutations.ReadFrom(&jsonReader{values: data})
}

// ReadUint8FromValueReader reads a generic number and checks that it fits an uint8.
func ReadUint8FromValueReader(r ValueReader) (uint8, error) {
	n, err := readNumber(r)
	if err != nil {
		return 0, err
	}
	if n > math.MaxUint8 {
		return 0, fmt.Errorf("value out of range for uint8: %v", n)
	}
	return uint8(n), nil
}

// ReadUintFromValueReader reads a generic non-negative integer.
func ReadUintFromValueReader(r ValueReader) (int, error) {
	n, err := readNumber(r)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ReadStringFromValueReader reads a generic value and checks that it is a string.
func ReadStringFromValueReader(r ValueReader) (string, error) {
	val, err := r.ReadValue()
	if err != nil {
		return "", err
	}
	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %s", describe(val))
	}
	return str, nil
}

func readNumber(r ValueReader) (float64, error) {
	val, err := r.ReadValue()
	if err != nil {
		return 0, err
	}
	n, ok := toFloat(val)
	if !ok || n < 0 || n != math.Trunc(n) {
		return 0, fmt.Errorf("expected unsigned integer, got %v", val)
	}
	return n, nil
}
