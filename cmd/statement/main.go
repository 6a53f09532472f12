package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/docopt/docopt-go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sanity-io/statement"
	"github.com/sanity-io/statement/pkg/statementjsonpatch"
	"github.com/sanity-io/statement/pkg/statementmsgpack"
)

const StatementVersion = "0.1.0"

func readValue(path string) (map[string]interface{}, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var value interface{}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &value)
	default:
		err = json.Unmarshal(data, &value)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	obj, ok := statement.Normalize(value).(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("%s: expected an object at the top level", path)
	}
	return obj, nil
}

func writeJSON(value interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func runApply(documentPath, descriptorPath string, opts docopt.Opts) error {
	doc, err := readValue(documentPath)
	if err != nil {
		return err
	}
	descriptor, err := readValue(descriptorPath)
	if err != nil {
		return err
	}

	mutations := statement.Map(descriptor)
	if debug, _ := opts.Bool("--debug"); debug {
		spew.Fdump(os.Stderr, mutations)
	}

	report := statement.DefaultOptions.ApplyMutations(doc, mutations)

	if asPatch, _ := opts.Bool("--jsonpatch"); asPatch {
		ops, err := statementjsonpatch.Operations(report)
		if err != nil {
			return err
		}
		var value interface{}
		if err := json.Unmarshal(ops, &value); err != nil {
			return err
		}
		return writeJSON(value)
	}

	if full, _ := opts.Bool("--report"); full {
		failed := []interface{}{}
		for _, result := range report.Failed() {
			failed = append(failed, map[string]interface{}{
				"action": result.Mutation.Action.String(),
				"path":   result.Mutation.Path.String(),
				"error":  result.Err.Error(),
				"data":   result.Mutation.Data,
			})
		}
		return writeJSON(map[string]interface{}{
			"statement": report.Statement().Value(),
			"document":  doc,
			"failed":    failed,
		})
	}

	format, _ := opts.String("--format")
	if format == "msgpack" {
		b, err := statementmsgpack.MarshalStatement(report.Statement())
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(b)
		return err
	}

	return writeJSON(report.Statement())
}

func runPlan(descriptorPath string, opts docopt.Opts) error {
	descriptor, err := readValue(descriptorPath)
	if err != nil {
		return err
	}

	mutations := statement.Map(descriptor)
	if debug, _ := opts.Bool("--debug"); debug {
		spew.Fdump(os.Stderr, mutations)
	}

	format, _ := opts.String("--format")
	switch format {
	case "msgpack":
		b, err := statementmsgpack.Marshal(mutations)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(b)
		return err
	case "json", "":
		return writeJSON(mutations)
	default:
		return errors.Errorf("unknown format %q", format)
	}
}

func main() {
	usage := `Update statements for JSON documents.

Documents and descriptors are read as YAML when the file ends in .yaml or
.yml, as JSON otherwise.

Usage:
    statement apply <document> <descriptor> [--report | --jsonpatch] [--format=<format>] [--debug]
    statement plan <descriptor> [--format=<format>] [--debug]
    statement -h | --help
    statement --version

Options:
    -h --help           Show this screen.
    --version           Show version.
    --report            Print the statement, the patched document and the dropped mutations.
    --jsonpatch         Print the applied changes as an RFC 6902 patch.
    --format=<format>   Output encoding, json or msgpack [default: json].
    --debug             Dump the mapped mutations to stderr.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], StatementVersion)
	if err != nil {
		panic(err)
	}

	if apply, _ := opts.Bool("apply"); apply {
		documentPath, _ := opts.String("<document>")
		descriptorPath, _ := opts.String("<descriptor>")
		err = runApply(documentPath, descriptorPath, opts)
	} else if plan, _ := opts.Bool("plan"); plan {
		descriptorPath, _ := opts.String("<descriptor>")
		err = runPlan(descriptorPath, opts)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
