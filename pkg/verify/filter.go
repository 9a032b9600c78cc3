package verify

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// FilterCollections narrows a collection manifest with glob patterns.
//
// only selects names matching the pattern; exclude removes matching
// names afterward. Empty patterns are no-ops. Manifest order is
// preserved. Patterns use doublestar semantics ("project*", "{users,feedback}").
func FilterCollections(names []string, only, exclude string) ([]string, error) {
	if only != "" && !doublestar.ValidatePattern(only) {
		return nil, fmt.Errorf("invalid --only pattern %q", only)
	}
	if exclude != "" && !doublestar.ValidatePattern(exclude) {
		return nil, fmt.Errorf("invalid --exclude pattern %q", exclude)
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		if only != "" {
			ok, err := doublestar.Match(only, name)
			if err != nil {
				return nil, fmt.Errorf("match --only pattern: %w", err)
			}
			if !ok {
				continue
			}
		}
		if exclude != "" {
			drop, err := doublestar.Match(exclude, name)
			if err != nil {
				return nil, fmt.Errorf("match --exclude pattern: %w", err)
			}
			if drop {
				continue
			}
		}
		out = append(out, name)
	}
	return out, nil
}
