package registry

import (
	"sort"
	"strings"
)

// Search scores registered capabilities against a case-insensitive substring
// query: capability name 10, full name 5, description 3, plugin name 2.
// Results come back highest first; ties keep name order so truncation is
// stable. A non-positive limit means no limit.
func (r *Registry) Search(query string, limit int) []*Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	type scored struct {
		entry *Entry
		score int
	}
	var matches []scored
	for _, e := range r.ListCapabilities("") {
		score := 0
		if strings.Contains(strings.ToLower(e.Key.Capability), query) {
			score += 10
		}
		if strings.Contains(strings.ToLower(e.FullName), query) {
			score += 5
		}
		if strings.Contains(strings.ToLower(e.Spec.Description), query) {
			score += 3
		}
		if strings.Contains(strings.ToLower(e.Key.Plugin), query) {
			score += 2
		}
		if score > 0 {
			matches = append(matches, scored{e, score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]*Entry, len(matches))
	for i, m := range matches {
		out[i] = m.entry
	}
	return out
}
