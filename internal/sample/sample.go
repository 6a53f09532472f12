// Package sample holds the document served by statementd until it is replaced.
package sample

import (
	"encoding/json"
)

const document = `{
	"_id": 1,
	"name": "Johnny Content Creator",
	"posts": [
		{
			"_id": 2,
			"value": "one",
			"mentions": []
		},
		{
			"_id": 3,
			"value": "two",
			"mentions": [
				{"_id": 5, "text": "apple"},
				{"_id": 6, "text": "orange"},
				{"_id": 7, "text": "grape"},
				{"_id": 8, "text": "kiwi", "faces": [{"_id": 4, "emotion": "happy"}]}
			]
		},
		{
			"_id": 4,
			"value": "three",
			"mentions": []
		}
	]
}`

// Document returns a fresh copy of the sample document.
func Document() map[string]interface{} {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(document), &doc); err != nil {
		panic(err)
	}
	return doc
}
