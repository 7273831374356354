package main

import (
	"runtime"

	"golang.org/x/text/cases"
)

// hostIgnoresCase reports whether the host's default file system compares
// names case-insensitively.
func hostIgnoresCase() bool {
	switch runtime.GOOS {
	case "darwin", "windows":
		return true
	default:
		return false
	}
}

// GroupByName returns the records whose name occurs more than once, flattened
// group by group. Groups are ordered by first appearance and members keep
// their scan order.
func GroupByName(records []FileRecord, ignoreCase bool, ignore map[string]struct{}) []Candidate {
	fold := cases.Fold()
	key := func(name string) string {
		if ignoreCase {
			return fold.String(name)
		}
		return name
	}

	ignored := make(map[string]struct{}, len(ignore))
	for name := range ignore {
		ignored[key(name)] = struct{}{}
	}

	order := []string{}
	members := map[string][]FileRecord{}
	for _, rec := range records {
		k := key(rec.Name)
		if _, skip := ignored[k]; skip {
			continue
		}
		if _, ok := members[k]; !ok {
			order = append(order, k)
		}
		members[k] = append(members[k], rec)
	}

	candidates := []Candidate{}
	group := 0
	for _, k := range order {
		recs := members[k]
		if len(recs) < 2 {
			continue
		}
		for _, rec := range recs {
			candidates = append(candidates, Candidate{FileRecord: rec, Group: group})
		}
		group++
	}
	return candidates
}

func countGroups(candidates []Candidate) int {
	seen := map[int]struct{}{}
	for _, c := range candidates {
		seen[c.Group] = struct{}{}
	}
	return len(seen)
}
