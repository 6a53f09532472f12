package statement_test

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/sanity-io/statement"
)

func TestMaxPlusOne(t *testing.T) {
	type testCase struct {
		name    string
		records []interface{}
		id      interface{}
	}

	for _, tc := range []testCase{
		{
			name:    "empty",
			records: []interface{}{},
			id:      1.0,
		},
		{
			name: "floats",
			records: []interface{}{
				map[string]interface{}{"_id": 7.0},
				map[string]interface{}{"_id": 3.0},
			},
			id: 8.0,
		},
		{
			name: "ints",
			records: []interface{}{
				map[string]interface{}{"_id": 1},
				map[string]interface{}{"_id": 4},
			},
			id: 5,
		},
		{
			name: "json numbers",
			records: []interface{}{
				map[string]interface{}{"_id": json.Number("41")},
			},
			id: json.Number("42"),
		},
		{
			name: "small ints are widened",
			records: []interface{}{
				map[string]interface{}{"_id": int8(127)},
			},
			id: int64(128),
		},
		{
			name: "large neighbouring ids",
			records: []interface{}{
				map[string]interface{}{"_id": int64(1<<62 + 1)},
				map[string]interface{}{"_id": int64(1 << 62)},
			},
			id: int64(1<<62 + 2),
		},
		{
			name: "records without numeric ids are skipped",
			records: []interface{}{
				"scalar",
				map[string]interface{}{"value": "x"},
				map[string]interface{}{"_id": "abc"},
				map[string]interface{}{"_id": 2.0},
			},
			id: 3.0,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			id, err := statement.MaxPlusOne.NextID(tc.records)
			require.NoError(t, err)
			require.Equal(t, tc.id, id)
		})
	}
}

func TestMaxPlusOneExhausted(t *testing.T) {
	for _, id := range []interface{}{
		int64(math.MaxInt64),
		math.MaxInt,
		uint64(math.MaxUint64),
		float64(1 << 53),
		math.Inf(1),
		json.Number("9223372036854775807"),
	} {
		t.Run(fmt.Sprintf("%T %v", id, id), func(t *testing.T) {
			_, err := statement.MaxPlusOne.NextID([]interface{}{
				map[string]interface{}{"_id": id},
			})
			require.Error(t, err)
			require.True(t, errors.Is(err, statement.ErrIDExhausted))
		})
	}
}

func TestAddWithExhaustedIDs(t *testing.T) {
	doc := map[string]interface{}{
		"posts": []interface{}{
			map[string]interface{}{"_id": int64(math.MaxInt64)},
		},
	}

	report := statement.GenerateReport(doc, parse(t, `{"posts": [{"value": "x"}]}`))
	require.Len(t, report.Results, 1)
	require.Equal(t, statement.StatusFailed, report.Results[0].Status)
	require.True(t, errors.Is(report.Results[0].Err, statement.ErrIDExhausted))
	require.Len(t, doc["posts"], 1)
	require.Empty(t, report.Statement().Value())
}

func TestLargeIDsAreDistinct(t *testing.T) {
	doc := map[string]interface{}{
		"posts": []interface{}{
			map[string]interface{}{"_id": int64(1 << 62), "value": "a"},
			map[string]interface{}{"_id": int64(1<<62 + 1), "value": "b"},
		},
	}

	result := statement.Apply(doc, statement.Mutation{
		Path:   statement.Path{property("posts"), {Key: "_id", Value: int64(1<<62 + 1), Identified: true}},
		Action: statement.ActionUpdate,
		Data:   map[string]interface{}{"value": "c"},
	})
	require.Equal(t, statement.Fragment{"posts.1.value": "c"}, result.Fragment)
}

func TestCounter(t *testing.T) {
	counter := statement.NewCounter(10)

	var wg sync.WaitGroup
	ids := make(chan interface{}, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := counter.NextID(nil)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[interface{}]bool{}
	for id := range ids {
		require.False(t, seen[id])
		seen[id] = true
		require.True(t, id.(int64) >= 10 && id.(int64) < 110)
	}
	require.Len(t, seen, 100)
}

func TestIDAllocatorOption(t *testing.T) {
	opts := statement.DefaultOptions.WithIDAllocator(statement.NewCounter(100))
	doc := parse(t, `{"posts": [{"_id": 1}]}`)

	result := opts.GenerateUpdateStatement(doc, parse(t, `{"posts": [{"value": "a"}, {"value": "b"}]}`))
	require.JSONEq(t, `{"$add": [
		{"posts.1": [{"value": "a", "_id": 100}]},
		{"posts.2": [{"value": "b", "_id": 101}]}
	]}`, toJSON(t, result))
}

func TestULID(t *testing.T) {
	opts := statement.DefaultOptions.WithIDAllocator(statement.ULID())
	doc := parse(t, `{"posts": []}`)

	opts.GenerateUpdateStatement(doc, parse(t, `{"posts": [{"value": "a"}]}`))
	post := doc["posts"].([]interface{})[0].(map[string]interface{})
	id, ok := post["_id"].(string)
	require.True(t, ok)
	require.Len(t, id, 26)

	// String ids are addressable like numeric ones.
	result := opts.GenerateUpdateStatement(doc, map[string]interface{}{
		"posts": []interface{}{
			map[string]interface{}{"_id": id, "value": "b"},
		},
	})
	require.JSONEq(t, `{"$update": {"posts.0.value": "b"}}`, toJSON(t, result))
}
