package statement

import (
	"encoding/json"
	"sort"
)

// UpdateStatement holds the fragments produced by one call, per action, in
// the order they were produced.
type UpdateStatement map[Action][]Fragment

func (statement UpdateStatement) add(action Action, fragment Fragment) {
	statement[action] = append(statement[action], fragment)
}

// Value returns the statement as a JSON-like tree: every action name maps to
// its single fragment or, when the action produced several, to a list of them.
func (statement UpdateStatement) Value() map[string]interface{} {
	value := make(map[string]interface{}, len(statement))
	for action, fragments := range statement {
		switch len(fragments) {
		case 0:
			continue
		case 1:
			value[action.String()] = map[string]interface{}(fragments[0])
		default:
			list := make([]interface{}, len(fragments))
			for idx, fragment := range fragments {
				list[idx] = map[string]interface{}(fragment)
			}
			value[action.String()] = list
		}
	}
	return value
}

func (statement UpdateStatement) MarshalJSON() ([]byte, error) {
	return json.Marshal(statement.Value())
}

// Report keeps the result of every mutation of one call, in application order.
type Report struct {
	Results []Result
}

// Statement aggregates the fragments of every result that produced one.
// Failed mutations are left out.
func (report Report) Statement() UpdateStatement {
	statement := UpdateStatement{}
	for _, result := range report.Results {
		if result.Status == StatusFailed || result.Fragment == nil {
			continue
		}
		statement.add(result.Mutation.Action, result.Fragment)
	}
	return statement
}

// Failed returns the results which could not be applied at all.
func (report Report) Failed() []Result {
	var failed []Result
	for _, result := range report.Results {
		if result.Status == StatusFailed {
			failed = append(failed, result)
		}
	}
	return failed
}

// GenerateUpdateStatement applies the descriptor to the document, in place,
// and describes what changed.
//
// This function uses the default options.
func GenerateUpdateStatement(document, descriptor map[string]interface{}) UpdateStatement {
	return DefaultOptions.GenerateUpdateStatement(document, descriptor)
}

// GenerateUpdateStatement applies the descriptor to the document, in place,
// and describes what changed.
func (options *Options) GenerateUpdateStatement(document, descriptor map[string]interface{}) UpdateStatement {
	return options.GenerateReport(document, descriptor).Statement()
}

// GenerateReport is GenerateUpdateStatement keeping the individual results.
//
// This function uses the default options.
func GenerateReport(document, descriptor map[string]interface{}) Report {
	return DefaultOptions.GenerateReport(document, descriptor)
}

// GenerateReport is GenerateUpdateStatement keeping the individual results.
func (options *Options) GenerateReport(document, descriptor map[string]interface{}) Report {
	return options.ApplyMutations(document, options.Map(descriptor))
}

// ApplyMutations applies a plan to the document, in place. The plan is
// applied in priority order even if it was not sorted.
func (options *Options) ApplyMutations(document map[string]interface{}, mutations Mutations) Report {
	ordered := make(Mutations, len(mutations))
	copy(ordered, mutations)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})

	report := Report{Results: make([]Result, 0, len(ordered))}
	for _, mutation := range ordered {
		report.Results = append(report.Results, options.Apply(document, mutation))
	}
	return report
}
