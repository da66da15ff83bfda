package filter

import (
	"sort"
	"strings"

	"github.com/bakkerme/prensa/internal/enrich"
	"github.com/bakkerme/prensa/internal/feed"
)

// SourceAll is the wildcard that disables source filtering.
const SourceAll = "all"

// Sources returns the distinct non-empty source names in items, sorted
// case-insensitively ascending.
func Sources(items []feed.Item) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, it := range items {
		if it.Source == "" {
			continue
		}
		if _, ok := seen[it.Source]; ok {
			continue
		}
		seen[it.Source] = struct{}{}
		out = append(out, it.Source)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i]), strings.ToLower(out[j])
		if a == b {
			return out[i] < out[j]
		}
		return a < b
	})
	return out
}

// Apply derives the visible subset of items from the two local parameters.
// It is purely local: no network activity, no mutation of items.
func Apply(items []feed.Item, source, query string) []feed.Item {
	source = strings.ToLower(strings.TrimSpace(source))
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]feed.Item, 0, len(items))
	for _, it := range items {
		if source != "" && source != SourceAll && strings.ToLower(it.Source) != source {
			continue
		}
		if query != "" && !matchesQuery(it, query) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matchesQuery(it feed.Item, query string) bool {
	title := strings.ToLower(enrich.DisplayTitle(it))
	summary := strings.ToLower(enrich.DisplaySummary(it))
	source := strings.ToLower(it.Source)
	return strings.Contains(title, query) ||
		strings.Contains(summary, query) ||
		strings.Contains(source, query)
}
