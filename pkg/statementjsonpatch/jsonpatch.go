// Package statementjsonpatch renders the changes of a report as an RFC 6902 patch.
package statementjsonpatch

import (
	"encoding/json"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/pkg/errors"

	"github.com/sanity-io/statement"
)

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Pointer formats path segments as a JSON pointer.
func Pointer(segments []string) string {
	var b strings.Builder
	for _, segment := range segments {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(segment))
	}
	return b.String()
}

// Operations returns the JSON encoded operations for every applied change, in
// application order.
func Operations(report statement.Report) ([]byte, error) {
	ops := []map[string]interface{}{}
	for _, result := range report.Results {
		if result.Status != statement.StatusApplied {
			continue
		}
		for _, change := range result.Changes {
			op := map[string]interface{}{
				"op":   string(change.Op),
				"path": Pointer(change.Path),
			}
			if change.Op != statement.ChangeRemove {
				op["value"] = change.Value
			}
			ops = append(ops, op)
		}
	}

	b, err := json.Marshal(ops)
	if err != nil {
		return nil, errors.Wrap(err, "encode operations")
	}
	return b, nil
}

// FromReport returns a patch which, applied to the document as it was before
// the report was produced, yields the document as it is after.
func FromReport(report statement.Report) (jsonpatch.Patch, error) {
	b, err := Operations(report)
	if err != nil {
		return nil, err
	}

	patch, err := jsonpatch.DecodePatch(b)
	if err != nil {
		return nil, errors.Wrap(err, "decode operations")
	}
	return patch, nil
}
