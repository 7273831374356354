package main

import "fmt"

type keepPolicy string

const (
	keepFirst  keepPolicy = "first"
	keepNewest keepPolicy = "newest"
	keepOldest keepPolicy = "oldest"
)

func parseKeepPolicy(raw string) (keepPolicy, error) {
	switch keepPolicy(raw) {
	case keepFirst, keepNewest, keepOldest:
		return keepPolicy(raw), nil
	default:
		return "", fmt.Errorf("unknown keep policy %q (want first, newest or oldest)", raw)
	}
}

// keepers picks one candidate per group that should survive a clean.
func keepers(candidates []Candidate, policy keepPolicy) map[string]struct{} {
	best := map[int]Candidate{}
	for _, c := range candidates {
		current, ok := best[c.Group]
		if !ok {
			best[c.Group] = c
			continue
		}
		switch policy {
		case keepNewest:
			if c.ModifiedAt.After(current.ModifiedAt) {
				best[c.Group] = c
			}
		case keepOldest:
			if c.ModifiedAt.Before(current.ModifiedAt) {
				best[c.Group] = c
			}
		}
	}
	keep := make(map[string]struct{}, len(best))
	for _, c := range best {
		keep[c.ID()] = struct{}{}
	}
	return keep
}

// markAllButKeepers marks every candidate except one keeper per group and
// returns how many ended up marked.
func markAllButKeepers(ctrl *Controller, policy keepPolicy) int {
	candidates := ctrl.Candidates()
	keep := keepers(candidates, policy)
	ctrl.OnSelectAllChanged(true)
	for id := range keep {
		ctrl.Mark(id, false)
	}
	return len(candidates) - len(keep)
}
