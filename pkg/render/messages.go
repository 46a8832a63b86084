package render

import "strings"

// MergeMessages concatenates status messages, trimming whitespace and
// dropping blanks and duplicates while preserving order.
func MergeMessages(existing []string, extras ...string) []string {
	seen := make(map[string]struct{}, len(existing)+len(extras))
	out := make([]string, 0, len(existing)+len(extras))
	for _, group := range [][]string{existing, extras} {
		for _, msg := range group {
			msg = strings.TrimSpace(msg)
			if msg == "" {
				continue
			}
			if _, dup := seen[msg]; dup {
				continue
			}
			seen[msg] = struct{}{}
			out = append(out, msg)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
