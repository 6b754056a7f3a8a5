package patch

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/tbxark/tripwizard/types"
)

// Diff returns the operations that bring current in line with every
// non-zero value of update. Fields update leaves out or zeroes are kept, so
// an enrichment result can never blank an answer the user gave.
func Diff(current, update types.Answers) ([]Operation, error) {
	from, err := jsonTree(current)
	if err != nil {
		return nil, fmt.Errorf("normalize answers: %w", err)
	}
	to, err := jsonTree(update)
	if err != nil {
		return nil, fmt.Errorf("normalize enrichment: %w", err)
	}
	ops := []Operation{}
	diffObject("", from, to, &ops)
	return ops, nil
}

// jsonTree round-trips v through JSON so numbers and nested values compare
// the same way on both sides.
func jsonTree(v types.Answers) (map[string]any, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	tree := map[string]any{}
	if err := sonic.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func diffObject(prefix string, from, to map[string]any, ops *[]Operation) {
	keys := make([]string, 0, len(to))
	for key, val := range to {
		if !blank(val) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	for _, key := range keys {
		want := to[key]
		path := prefix + "/" + pointerEscaper.Replace(key)
		have, present := from[key]

		if wantObj, ok := want.(map[string]any); ok {
			if haveObj, ok := have.(map[string]any); ok {
				diffObject(path, haveObj, wantObj, ops)
				continue
			}
		}
		switch {
		case !present:
			*ops = append(*ops, Operation{Op: OperationAdd, Path: path, Value: want})
		case !reflect.DeepEqual(have, want):
			*ops = append(*ops, Operation{Op: OperationReplace, Path: path, Value: want})
		}
	}
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// blank reports the JSON zero values that enrichment must not write.
func blank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case float64:
		return val == 0
	case bool:
		return !val
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	return false
}
