package statement

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
)

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// exactValue holds every int64, uint64 and float64 id without rounding, so
// large neighbouring ids still compare apart.
func exactValue(id interface{}) (*big.Float, bool) {
	value := new(big.Float).SetPrec(128)
	switch v := id.(type) {
	case float64:
		if math.IsNaN(v) {
			return nil, false
		}
		value.SetFloat64(v)
	case float32:
		if math.IsNaN(float64(v)) {
			return nil, false
		}
		value.SetFloat64(float64(v))
	case int:
		value.SetInt64(int64(v))
	case int8:
		value.SetInt64(int64(v))
	case int16:
		value.SetInt64(int64(v))
	case int32:
		value.SetInt64(int64(v))
	case int64:
		value.SetInt64(v)
	case uint:
		value.SetUint64(uint64(v))
	case uint8:
		value.SetUint64(uint64(v))
	case uint16:
		value.SetUint64(uint64(v))
	case uint32:
		value.SetUint64(uint64(v))
	case uint64:
		value.SetUint64(v)
	case json.Number:
		if _, ok := value.SetString(v.String()); !ok {
			return nil, false
		}
	default:
		return nil, false
	}
	return value, true
}

// sameValue compares identifying values. Numbers compare by value regardless
// of their Go type so that ids decoded by different codecs still match.
func sameValue(a, b interface{}) bool {
	if ea, ok := exactValue(a); ok {
		eb, ok := exactValue(b)
		return ok && ea.Cmp(eb) == 0
	}
	if _, ok := exactValue(b); ok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// Normalize converts the map[interface{}]interface{} values some decoders
// produce into map[string]interface{}, recursively.
func Normalize(value interface{}) interface{} {
	switch v := value.(type) {
	case map[interface{}]interface{}:
		obj := make(map[string]interface{}, len(v))
		for key, val := range v {
			obj[fmt.Sprint(key)] = Normalize(val)
		}
		return obj
	case map[string]interface{}:
		for key, val := range v {
			v[key] = Normalize(val)
		}
		return v
	case []interface{}:
		for idx, val := range v {
			v[idx] = Normalize(val)
		}
		return v
	}
	return value
}

func describe(value interface{}) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	}
	return fmt.Sprintf("%T", value)
}

func deepCopy(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		obj := make(map[string]interface{}, len(v))
		for key, val := range v {
			obj[key] = deepCopy(val)
		}
		return obj
	case []interface{}:
		arr := make([]interface{}, len(v))
		for idx, val := range v {
			arr[idx] = deepCopy(val)
		}
		return arr
	}
	return value
}
