package schedule

import "sort"

// Conflict records two categories that would post to the same channel at
// the identical cron instant. Conflicts are advisory; nothing blocks a
// conflicting configuration from being saved.
type Conflict struct {
	Channel string
	Expr    string
	First   Category
	Second  Category
}

// DetectConflicts scans generated expressions in a single pass, keyed by
// (channel, expression). Every collision after the first occurrence emits
// one conflict record.
func DetectConflicts(generated map[Category]map[string]string) []Conflict {
	type slot struct {
		channel string
		expr    string
	}

	seen := make(map[slot]Category)
	var conflicts []Conflict

	for _, cat := range Categories() {
		channels, ok := generated[cat]
		if !ok {
			continue
		}

		names := make([]string, 0, len(channels))
		for name := range channels {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			key := slot{channel: name, expr: channels[name]}
			if first, dup := seen[key]; dup {
				conflicts = append(conflicts, Conflict{
					Channel: name,
					Expr:    key.expr,
					First:   first,
					Second:  cat,
				})
				continue
			}
			seen[key] = cat
		}
	}
	return conflicts
}
