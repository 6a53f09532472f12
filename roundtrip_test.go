package statement_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanity-io/statement"
)

var Descriptors = []string{
	`{}`,
	`{"name": "b"}`,
	`{"posts": [{"value": "four"}]}`,
	`{"posts": [{"_id": 3, "mentions": [{"_id": 5, "text": "pear"}]}]}`,
	`{"posts": [{"_id": 2, "_delete": true}]}`,
	`{"posts": [{"_id": 3, "value": "third"}, {"value": "six"}, {"_id": 4, "_delete": true}]}`,
	`{"posts": [{"_id": 3, "mentions": [{"_id": 8, "faces": [{"_id": 4, "_delete": true}]}]}]}`,
	`{"posts": [{"_id": "abc", "meta": {"tags": ["a", "b"]}, "value": null}]}`,
}

func TestRoundtrip(t *testing.T) {
	for idx, descriptor := range Descriptors {
		t.Run(fmt.Sprintf("N%d", idx), func(t *testing.T) {
			mutations := statement.Map(parse(t, descriptor))

			b, err := json.Marshal(mutations)
			require.NoError(t, err)

			var decoded statement.Mutations
			err = json.Unmarshal(b, &decoded)
			require.NoError(t, err)
			require.Len(t, decoded, len(mutations))
			for i := range decoded {
				require.Equal(t, mutations[i], decoded[i])
			}

			var values []interface{}
			err = json.Unmarshal(b, &values)
			require.NoError(t, err)

			var fromValues statement.Mutations
			err = fromValues.DecodeJSON(values)
			require.NoError(t, err)
			require.Len(t, fromValues, len(mutations))
			for i := range fromValues {
				require.Equal(t, mutations[i], fromValues[i])
			}
		})
	}
}

func TestEncoding(t *testing.T) {
	mutations := statement.Map(parse(t, `{"posts": [{"_id": 3, "value": "x"}]}`))

	b, err := json.Marshal(mutations)
	require.NoError(t, err)
	require.JSONEq(t, `[1, 2, 0, "posts", 1, "_id", 3, {"_id": 3, "value": "x"}]`, string(b))
}

func TestDecodingErrors(t *testing.T) {
	for _, input := range []string{
		`{}`,
		`[7, 0, {}]`,
		`[0, 1, 9, "posts", {}]`,
		`[0, 1, 0, "posts"]`,
		`[0, 0, "not an object"]`,
		`[0, -1, {}]`,
	} {
		t.Run(input, func(t *testing.T) {
			var mutations statement.Mutations
			require.Error(t, json.Unmarshal([]byte(input), &mutations))
		})
	}
}
