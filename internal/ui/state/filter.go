package state

import (
	"sort"
	"strings"
	"unicode"

	"github.com/atomicstack/quicklaunch/internal/menu"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SetFilter replaces the type-to-select query. While a query is active the
// cursor sits on the best match; clearing it returns the cursor to where it
// was before typing started.
func (l *Level) SetFilter(query string) {
	active := strings.TrimSpace(query) != ""
	wasActive := strings.TrimSpace(l.Filter) != ""
	if active && !wasActive {
		l.anchor = l.Cursor
	}
	l.Filter = query
	l.applyFilter()
	switch {
	case active:
		l.Cursor = BestMatchIndex(l.Items, query)
	case wasActive:
		l.Cursor = l.anchor
	}
	l.clampCursor()
}

// AppendFilter adds text to the end of the query.
func (l *Level) AppendFilter(text string) bool {
	if text == "" {
		return false
	}
	l.SetFilter(l.Filter + text)
	return true
}

// TrimFilter drops the last rune of the query.
func (l *Level) TrimFilter() bool {
	runes := []rune(l.Filter)
	if len(runes) == 0 {
		return false
	}
	l.SetFilter(string(runes[:len(runes)-1]))
	return true
}

// TrimFilterWord drops the last word of the query and any spaces after it.
func (l *Level) TrimFilterWord() bool {
	runes := []rune(l.Filter)
	if len(runes) == 0 {
		return false
	}
	i := len(runes)
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	l.SetFilter(string(runes[:i]))
	return true
}

// ClearFilter empties the query.
func (l *Level) ClearFilter() bool {
	if l.Filter == "" {
		return false
	}
	l.SetFilter("")
	return true
}

func (l *Level) applyFilter() {
	l.Items = FilterItems(l.Full, l.Filter)
	if l.ViewportOffset > len(l.Items)-1 {
		l.ViewportOffset = 0
	}
	l.clampCursor()
}

func (l *Level) clampCursor() {
	if l.Cursor >= len(l.Items) {
		l.Cursor = len(l.Items) - 1
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
}

// FilterItems keeps the items whose label fuzzy-matches query, in their
// original order. Items without a label never match a query.
func FilterItems(items []menu.Item, query string) []menu.Item {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return CloneItems(items)
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, labels(items))
	picked := make([]int, 0, len(ranks))
	for _, rank := range ranks {
		if items[rank.OriginalIndex].Label != "" {
			picked = append(picked, rank.OriginalIndex)
		}
	}
	sort.Ints(picked)
	filtered := make([]menu.Item, 0, len(picked))
	for _, idx := range picked {
		filtered = append(filtered, items[idx])
	}
	return filtered
}

// BestMatchIndex picks the item to select for query: an exact label first,
// then the first label prefix, then the closest fuzzy match. It returns -1
// for an empty slice.
func BestMatchIndex(items []menu.Item, query string) int {
	if len(items) == 0 {
		return -1
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return 0
	}
	for i, item := range items {
		if strings.EqualFold(item.Label, trimmed) {
			return i
		}
	}
	lower := strings.ToLower(trimmed)
	for i, item := range items {
		if strings.HasPrefix(strings.ToLower(item.Label), lower) {
			return i
		}
	}
	best := -1
	bestDistance := 0
	for _, rank := range fuzzy.RankFindNormalizedFold(trimmed, labels(items)) {
		if best < 0 || rank.Distance < bestDistance ||
			(rank.Distance == bestDistance && rank.OriginalIndex < best) {
			best = rank.OriginalIndex
			bestDistance = rank.Distance
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

func labels(items []menu.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}
