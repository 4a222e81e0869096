package util

import "strings"

// SplitCSVParam reads a repeated-or-comma-separated query parameter.
func SplitCSVParam(values []string) []string {
	out := []string{}
	for _, raw := range values {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
