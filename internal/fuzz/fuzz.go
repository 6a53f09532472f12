package fuzz

import (
	"bytes"
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/sanity-io/statement"
	"github.com/sanity-io/statement/pkg/statementjsonpatch"
)

func Fuzz(data []byte) int {
	dec := json.NewDecoder(bytes.NewReader(data))
	var doc, descriptor map[string]interface{}

	err := dec.Decode(&doc)
	if err != nil || doc == nil {
		return -1
	}

	err = dec.Decode(&descriptor)
	if err != nil {
		return -1
	}

	original, err := json.Marshal(doc)
	if err != nil {
		return -1
	}

	report := statement.GenerateReport(doc, descriptor)

	if _, err := json.Marshal(report.Statement()); err != nil {
		panic(err)
	}

	patch, err := statementjsonpatch.FromReport(report)
	if err != nil {
		panic(err)
	}

	replayed, err := patch.Apply(original)
	if err != nil {
		panic(err)
	}

	patched, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}

	if !jsonpatch.Equal(replayed, patched) {
		panic("replayed changes do not match the patched document")
	}

	return 1
}
