package commands

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/EpicTechAI/EpicChat/internal/models"
)

// MaxSuggestions caps the number of descriptors returned per suggestion query.
const MaxSuggestions = 5

// Suggest returns up to MaxSuggestions descriptors matching the input
// prefix, in declaration order. A descriptor matches when its token starts
// with the lower-cased prefix, or its description contains the prefix with
// the leading command marker stripped. Pure and side-effect free; safe to
// recompute on every keystroke.
func (t *Table) Suggest(inputPrefix string) []Descriptor {
	prefix := strings.ToLower(strings.TrimSpace(inputPrefix))
	if prefix == "" {
		return nil
	}
	stripped := strings.TrimPrefix(prefix, models.CommandMarker)

	matched := make(map[int]bool)

	// Token prefix matches via the radix tree.
	t.prefixes.WalkPrefix(prefix, func(_ string, v interface{}) bool {
		matched[v.(int)] = true
		return false
	})

	// Description substring matches with the marker stripped.
	if stripped != "" {
		for i, d := range t.descriptors {
			if matched[i] {
				continue
			}
			if strings.Contains(strings.ToLower(d.Description), stripped) {
				matched[i] = true
			}
		}
	}

	indices := make([]int, 0, len(matched))
	for i := range matched {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	if len(indices) > MaxSuggestions {
		indices = indices[:MaxSuggestions]
	}
	out := make([]Descriptor, 0, len(indices))
	for _, i := range indices {
		out = append(out, t.descriptors[i])
	}
	slog.Debug("Table.Suggest: suggestions computed", "prefix", prefix, "count", len(out))
	return out
}
