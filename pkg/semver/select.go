package semver

import "sort"

// SelectBest picks the highest version from available that satisfies spec.
// Candidates that don't parse as versions are skipped. The result is the
// original string form of the winning candidate, so callers can feed it
// back to registry URLs unchanged. Returns ok=false when nothing matches.
//
// Selection is deterministic: candidates are sorted descending by triple
// order regardless of input order, and duplicates cannot change the
// outcome since they sort adjacently.
func SelectBest(available []string, spec Spec) (string, bool) {
	type candidate struct {
		raw string
		v   Version
	}

	parsed := make([]candidate, 0, len(available))
	for _, raw := range available {
		v, err := ParseVersion(raw)
		if err != nil {
			continue
		}
		parsed = append(parsed, candidate{raw: raw, v: v})
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[j].v.Less(parsed[i].v)
	})

	for _, c := range parsed {
		if spec.Satisfies(c.v) {
			return c.raw, true
		}
	}
	return "", false
}

// SortDescending returns the parsable versions from raw sorted highest
// first. Registry backends use it to present a stable discovery order,
// so "latest" selection is simply the first element.
func SortDescending(raw []string) []string {
	return SelectAll(raw, Latest)
}

// SelectAll returns every candidate satisfying spec, highest first.
func SelectAll(available []string, spec Spec) []string {
	type candidate struct {
		raw string
		v   Version
	}
	parsed := make([]candidate, 0, len(available))
	for _, r := range available {
		v, err := ParseVersion(r)
		if err != nil {
			continue
		}
		if spec.Satisfies(v) {
			parsed = append(parsed, candidate{raw: r, v: v})
		}
	}
	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[j].v.Less(parsed[i].v)
	})

	out := make([]string, len(parsed))
	for i, c := range parsed {
		out[i] = c.raw
	}
	return out
}
