package statement

import (
	"io"
)

// jsonWriter collects the encoded plan as a flat list of values.
type jsonWriter struct {
	values []interface{}
}

func (w *jsonWriter) WriteUint8(v uint8) error {
	return w.WriteValue(v)
}

func (w *jsonWriter) WriteUint(v int) error {
	return w.WriteValue(v)
}

func (w *jsonWriter) WriteString(v string) error {
	return w.WriteValue(v)
}

func (w *jsonWriter) WriteValue(v interface{}) error {
	w.values = append(w.values, v)
	return nil
}

// jsonReader walks a flat list of values as parsed by encoding/json.
type jsonReader struct {
	values []interface{}
	idx    int
}

func (r *jsonReader) ReadUint8() (uint8, error) {
	return ReadUint8FromValueReader(r)
}

func (r *jsonReader) ReadUint() (int, error) {
	return ReadUintFromValueReader(r)
}

func (r *jsonReader) ReadString() (string, error) {
	return ReadStringFromValueReader(r)
}

func (r *jsonReader) ReadValue() (interface{}, error) {
	if r.idx >= len(r.values) {
		return nil, io.EOF
	}
	val := r.values[r.idx]
	r.idx++
	return val, nil
}
