package patch

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidatePatchOperations rejects operations whose path is not in allowed.
// A "*" or "-" segment of an allowed path stands for any row of a list. An
// empty allowed set lets everything through.
func ValidatePatchOperations(ops []Operation, allowed map[string]bool) error {
	if len(allowed) == 0 {
		return nil
	}
	for i, op := range ops {
		if !pathAllowed(op.Path, allowed) {
			return fmt.Errorf("operation %d: path %q is not writable on this step", i, op.Path)
		}
	}
	return nil
}

func pathAllowed(path string, allowed map[string]bool) bool {
	if allowed[path] {
		return true
	}
	segments := strings.Split(path, "/")
	for pattern := range allowed {
		if segmentsMatch(strings.Split(pattern, "/"), segments) {
			return true
		}
	}
	return false
}

func segmentsMatch(pattern, segments []string) bool {
	if len(pattern) != len(segments) {
		return false
	}
	for i, want := range pattern {
		got := segments[i]
		if want == got {
			continue
		}
		if (want == "*" || want == "-") && isRow(got) {
			continue
		}
		return false
	}
	return true
}

func isRow(segment string) bool {
	if segment == "-" {
		return true
	}
	n, err := strconv.Atoi(segment)
	return err == nil && n >= 0
}
