package instruction

import "strings"

// splitNonEmptyLines splits a multi-line blob into its non-empty,
// whitespace-trimmed lines, preserving order.
func splitNonEmptyLines(blob string) []string {
	raw := strings.Split(blob, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
