// Package patch merges remote enrichment results into the answer bag with
// RFC 6902 operations restricted to the fields a step owns.
package patch

import (
	"strings"

	"github.com/tbxark/tripwizard/types"
)

const (
	OperationAdd     = "add"
	OperationRemove  = "remove"
	OperationReplace = "replace"
)

type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// AllowedPaths lists the JSON pointers that enrichment may write for the
// given step kinds. List fields also accept element paths.
func AllowedPaths(kinds ...types.StepKind) map[string]bool {
	allowed := map[string]bool{}
	for _, kind := range kinds {
		for _, field := range kind.Fields() {
			allowed["/"+field] = true
			switch field {
			case types.FieldActivities:
				allowed["/"+field+"/-"] = true
			case types.FieldProgram:
				allowed["/"+field+"/-"] = true
				allowed["/"+field+"/*/time"] = true
				allowed["/"+field+"/*/activity"] = true
			}
		}
	}
	return allowed
}

// Fields returns the top-level answer fields touched by ops, in order.
func Fields(ops []Operation) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		token, _, _ := strings.Cut(strings.TrimPrefix(op.Path, "/"), "/")
		field := unescapeJSONPointer(token)
		if field == "" || seen[field] {
			continue
		}
		seen[field] = true
		out = append(out, field)
	}
	return out
}

func unescapeJSONPointer(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}
