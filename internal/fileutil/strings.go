package fileutil

import "sort"

func ToSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, path := range paths {
		set[path] = true
	}
	return set
}

func KeySet[V any](values map[string]V) map[string]bool {
	set := make(map[string]bool, len(values))
	for key := range values {
		set[key] = true
	}
	return set
}

// Subtract returns the items of paths not in drop, sorted.
func Subtract(paths []string, drop map[string]bool) []string {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if !drop[path] {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}
