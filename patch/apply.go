package patch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/tbxark/tripwizard/types"
)

// Apply checks ops against allowed and applies them to a copy of answers.
// The input bag is never modified.
func Apply(answers types.Answers, ops []Operation, allowed map[string]bool) (types.Answers, error) {
	if err := ValidatePatchOperations(ops, allowed); err != nil {
		return nil, err
	}
	base := answers.Clone()
	if base == nil {
		base = types.Answers{}
	}
	merged, err := ApplyRFC6902(base, ops)
	if err != nil {
		return nil, err
	}
	if merged == nil {
		merged = types.Answers{}
	}
	return merged, nil
}

// ApplyRFC6902 patches the JSON form of current and decodes the result back
// into T.
func ApplyRFC6902[T any](current T, ops []Operation) (T, error) {
	if len(ops) == 0 {
		return current, nil
	}
	var out T

	doc, err := sonic.Marshal(current)
	if err != nil {
		return out, fmt.Errorf("failed to encode document: %w", err)
	}
	raw, err := sonic.Marshal(FixOperation(doc, ops))
	if err != nil {
		return out, fmt.Errorf("failed to encode operations: %w", err)
	}
	p, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return out, fmt.Errorf("failed to decode patch: %w", err)
	}

	opts := jsonpatch.NewApplyOptions()
	opts.AllowMissingPathOnRemove = true
	patched, err := p.ApplyWithOptions(doc, opts)
	if err != nil {
		return out, fmt.Errorf("failed to apply patch: %w", err)
	}
	if err := sonic.Unmarshal(patched, &out); err != nil {
		return out, fmt.Errorf("patched document no longer decodes: %w", err)
	}
	return out, nil
}

// FixOperation rewrites ops so they apply to doc: replace on a missing path
// becomes add, remove of a missing path is dropped.
func FixOperation(doc []byte, ops []Operation) []Operation {
	var root any
	if err := sonic.Unmarshal(doc, &root); err != nil {
		return ops
	}
	fixed := make([]Operation, 0, len(ops))
	for _, op := range ops {
		exists := resolve(root, op.Path)
		switch {
		case op.Op == OperationReplace && !exists:
			op.Op = OperationAdd
		case op.Op == OperationRemove && !exists:
			continue
		}
		fixed = append(fixed, op)
	}
	return fixed
}

// resolve reports whether the JSON pointer names a value inside root.
func resolve(root any, pointer string) bool {
	if pointer == "" {
		return true
	}
	rest, ok := strings.CutPrefix(pointer, "/")
	if !ok {
		return false
	}
	node := root
	for {
		token, tail, more := strings.Cut(rest, "/")
		token = unescapeJSONPointer(token)
		switch v := node.(type) {
		case map[string]any:
			child, found := v[token]
			if !found {
				return false
			}
			node = child
		case []any:
			i, err := strconv.Atoi(token)
			if err != nil || i < 0 || i >= len(v) {
				return false
			}
			node = v[i]
		default:
			return false
		}
		if !more {
			return true
		}
		rest = tail
	}
}
