// Package dedup prevents duplicate canonical records when the same
// plant arrives from multiple providers or repeated imports. It
// resolves incoming data to an existing record, merges without
// destroying curated fields, and reconciles the whole corpus in bulk.
package dedup

import "strings"

// infraspecificMarkers cut the name at variety/subspecies rank;
// everything after the marker is comparison noise.
var infraspecificMarkers = []string{
	" var. ", " var ",
	" subsp. ", " subsp ",
	" ssp. ", " ssp ",
	" cv. ", " f. ",
}

// Normalize canonicalizes a taxonomic name for comparison: lowercase,
// author citations (tokens carrying "." or parentheses, e.g. "L.",
// "Mill.", "C.A.Mey.") stripped, variety/subspecies suffixes dropped.
// Pure and idempotent; empty input yields empty output.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	for _, marker := range infraspecificMarkers {
		if i := strings.Index(s, marker); i >= 0 {
			s = s[:i]
		}
	}

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if strings.ContainsAny(f, ".()&") {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// Matches reports whether two scientific names refer to the same
// species: equal normalized forms, or equal genus+species components
// when both names carry at least two tokens. Never panics on empty or
// malformed input.
func Matches(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}

	fa, fb := strings.Fields(na), strings.Fields(nb)
	if len(fa) < 2 || len(fb) < 2 {
		return false
	}
	return fa[0] == fb[0] && fa[1] == fb[1]
}
