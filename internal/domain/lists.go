package domain

import "strings"

// SplitCommaList splits on commas, trims each piece and drops empty ones.
func SplitCommaList(v string) []string {
	out := []string{}
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitLines splits on line breaks, trims each line and drops empty ones.
func SplitLines(v string) []string {
	v = strings.ReplaceAll(v, "\r\n", "\n")
	v = strings.ReplaceAll(v, "\r", "\n")

	out := []string{}
	for _, line := range strings.Split(v, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// CleanCommaList applies SplitCommaList to every item, so a list built by
// hand ends up in the same shape the form editor would produce.
func CleanCommaList(in []string) []string {
	out := []string{}
	for _, item := range in {
		out = append(out, SplitCommaList(item)...)
	}
	return out
}

// CleanLines applies SplitLines to every item.
func CleanLines(in []string) []string {
	out := []string{}
	for _, item := range in {
		out = append(out, SplitLines(item)...)
	}
	return out
}
