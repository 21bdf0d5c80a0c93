package testrail

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrRunIDNotFound reports that no known document shape yielded a run id.
var ErrRunIDNotFound = errors.New("testrail: could not locate run id in test plan")

// maxDumpLen bounds the diagnostic document dump in a ShapeError.
const maxDumpLen = 1000

// ShapeError carries a truncated dump of the document that matched no
// known shape. It unwraps to ErrRunIDNotFound.
type ShapeError struct {
	Document string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v; document: %s", ErrRunIDNotFound, e.Document)
}

func (e *ShapeError) Unwrap() error {
	return ErrRunIDNotFound
}

// ResolveRunID locates the run id inside a decoded test plan document.
//
// TestRail does not guarantee where the id lives across versions and
// plan configurations, so candidate shapes are probed in a fixed
// priority order, each absence falling through to the next:
//
//  1. a plan object with a non-empty "entries" array: the "id" of the
//     first run of the first entry that has any runs
//  2. an object carrying both "id" and "name", i.e. the document is
//     itself run-shaped: its "id"
//
// Anything else fails with a *ShapeError holding the (truncated)
// document for diagnosis.
func ResolveRunID(doc any) (int64, error) {
	if obj, ok := doc.(map[string]any); ok {
		if id, ok := runIDFromEntries(obj["entries"]); ok {
			return id, nil
		}
		if id, ok := runIDFromFlatObject(obj); ok {
			return id, nil
		}
	}
	return 0, &ShapeError{Document: truncateDump(doc)}
}

// runIDFromEntries probes shape 1: entries[*].runs[0].id, taking the
// first entry whose runs array is non-empty.
func runIDFromEntries(v any) (int64, bool) {
	entries, ok := v.([]any)
	if !ok || len(entries) == 0 {
		return 0, false
	}
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		runs, ok := entry["runs"].([]any)
		if !ok || len(runs) == 0 {
			continue
		}
		run, ok := runs[0].(map[string]any)
		if !ok {
			return 0, false
		}
		return asInt64(run["id"])
	}
	return 0, false
}

// runIDFromFlatObject probes shape 2: the document itself is a
// run-shaped record. Requiring "name" alongside "id" avoids picking up
// ids of unrelated objects.
func runIDFromFlatObject(obj map[string]any) (int64, bool) {
	if _, ok := obj["name"]; !ok {
		return 0, false
	}
	return asInt64(obj["id"])
}

// asInt64 accepts the numeric forms encoding/json can produce.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func truncateDump(doc any) string {
	data, err := json.Marshal(doc)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", doc))
	}
	if len(data) > maxDumpLen {
		data = append(data[:maxDumpLen], "..."...)
	}
	return string(data)
}
