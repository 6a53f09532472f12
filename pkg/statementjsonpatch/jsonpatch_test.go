package statementjsonpatch_test

import (
	"encoding/json"
	"testing"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/stretchr/testify/require"

	"github.com/sanity-io/statement"
	"github.com/sanity-io/statement/internal/sample"
	"github.com/sanity-io/statement/pkg/statementjsonpatch"
)

func parse(t *testing.T, s string) map[string]interface{} {
	var value map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &value))
	return value
}

func TestPointer(t *testing.T) {
	require.Equal(t, "", statementjsonpatch.Pointer(nil))
	require.Equal(t, "/posts/0/a~1b~0c", statementjsonpatch.Pointer([]string{"posts", "0", "a/b~c"}))
}

func TestOperations(t *testing.T) {
	doc := parse(t, `{"posts": [{"_id": 2, "value": "two"}, {"_id": 3}]}`)
	report := statement.GenerateReport(doc, parse(t, `{
		"posts": [
			{"_id": 2, "value": "too", "title": "t"},
			{"value": "new"},
			{"_id": 3, "_delete": true},
			{"_id": 99, "value": "missing"}
		]
	}`))

	b, err := statementjsonpatch.Operations(report)
	require.NoError(t, err)
	require.JSONEq(t, `[
		{"op": "add", "path": "/posts/2", "value": {"_id": 4, "value": "new"}},
		{"op": "add", "path": "/posts/0/title", "value": "t"},
		{"op": "replace", "path": "/posts/0/value", "value": "too"},
		{"op": "remove", "path": "/posts/1"}
	]`, string(b))
}

func TestReplay(t *testing.T) {
	for _, descriptor := range []string{
		`{"posts": [{"_id": 3, "mentions": [{"text": "banana"}]}]}`,
		`{"posts": [{"_id": 3, "value": "third"}, {"value": "six"}, {"_id": 4, "_delete": true}]}`,
		`{"posts": [{"_id": 3, "mentions": [{"_id": 8, "faces": [{"_id": 4, "_delete": true}]}]}]}`,
		`{"name": "Jo", "posts": [{"_id": 2, "value": "too"}, {"_id": 2, "_delete": true}]}`,
		`{"posts": [{"_id": 12, "_delete": true}, {"_delete": true}]}`,
	} {
		t.Run(descriptor, func(t *testing.T) {
			doc := sample.Document()
			original, err := json.Marshal(doc)
			require.NoError(t, err)

			report := statement.GenerateReport(doc, parse(t, descriptor))

			patch, err := statementjsonpatch.FromReport(report)
			require.NoError(t, err)

			replayed, err := patch.Apply(original)
			require.NoError(t, err)

			patched, err := json.Marshal(doc)
			require.NoError(t, err)
			require.True(t, jsonpatch.Equal(patched, replayed), "replayed %s, patched %s", replayed, patched)
		})
	}
}
