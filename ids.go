package statement

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
)

// ErrIDExhausted is returned by MaxPlusOne when the largest id has no exact
// successor in its type.
var ErrIDExhausted = errors.New("id space exhausted")

// IDAllocator assigns the _id of a record about to be appended to records.
type IDAllocator interface {
	NextID(records []interface{}) (interface{}, error)
}

type IDAllocatorFunc func(records []interface{}) (interface{}, error)

func (f IDAllocatorFunc) NextID(records []interface{}) (interface{}, error) {
	return f(records)
}

// MaxPlusOne scans the sequence for the largest numeric _id and returns it
// incremented by one, keeping its numeric type. An empty sequence (or one
// without numeric ids) starts at 1.
//
// The scan makes it unsuitable for documents shared between concurrent
// writers; use NewCounter or ULID there.
var MaxPlusOne IDAllocator = IDAllocatorFunc(maxPlusOne)

func maxPlusOne(records []interface{}) (interface{}, error) {
	var top interface{}
	var topValue *big.Float

	for _, record := range records {
		obj, ok := record.(map[string]interface{})
		if !ok {
			continue
		}
		id, ok := obj[idKey]
		if !ok {
			continue
		}
		value, ok := exactValue(id)
		if !ok {
			continue
		}
		if top == nil || value.Cmp(topValue) > 0 {
			top = id
			topValue = value
		}
	}

	if top == nil {
		return float64(1), nil
	}

	return increment(top)
}

// Above 2^53 a float64 no longer holds every integer, so x+1 may equal x.
const maxExactFloat = 1 << 53

func increment(id interface{}) (interface{}, error) {
	switch v := id.(type) {
	case float64:
		return incrementFloat(v)
	case float32:
		return incrementFloat(float64(v))
	case int:
		if v == math.MaxInt {
			return nil, errors.Wrapf(ErrIDExhausted, "id %d", v)
		}
		return v + 1, nil
	case int64:
		if v == math.MaxInt64 {
			return nil, errors.Wrapf(ErrIDExhausted, "id %d", v)
		}
		return v + 1, nil
	case int8:
		return int64(v) + 1, nil
	case int16:
		return int64(v) + 1, nil
	case int32:
		return int64(v) + 1, nil
	case uint64:
		if v == math.MaxUint64 {
			return nil, errors.Wrapf(ErrIDExhausted, "id %d", v)
		}
		return v + 1, nil
	case uint:
		return uint64(v) + 1, nil
	case uint8:
		return uint64(v) + 1, nil
	case uint16:
		return uint64(v) + 1, nil
	case uint32:
		return uint64(v) + 1, nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			if n == math.MaxInt64 {
				return nil, errors.Wrapf(ErrIDExhausted, "id %s", v)
			}
			return json.Number(strconv.FormatInt(n+1, 10)), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, errors.Wrapf(err, "invalid id %q", v.String())
		}
		next, err := incrementFloat(f)
		if err != nil {
			return nil, err
		}
		return json.Number(strconv.FormatFloat(next.(float64), 'f', -1, 64)), nil
	}
	return nil, errors.Errorf("unsupported id type %T", id)
}

func incrementFloat(v float64) (interface{}, error) {
	if math.Abs(v) >= maxExactFloat || math.IsInf(v, 0) {
		return nil, errors.Wrapf(ErrIDExhausted, "id %g", v)
	}
	return v + 1, nil
}

// Counter hands out monotonically increasing int64 ids. It is safe for
// concurrent use and ignores the existing records.
type Counter struct {
	next int64
}

func NewCounter(start int64) *Counter {
	return &Counter{next: start}
}

func (c *Counter) NextID(_ []interface{}) (interface{}, error) {
	return atomic.AddInt64(&c.next, 1) - 1, nil
}

// ULID returns an allocator producing lexically sortable string ids.
func ULID() IDAllocator {
	return IDAllocatorFunc(func(_ []interface{}) (interface{}, error) {
		return ulid.Make().String(), nil
	})
}
