// Package semver implements the version model used by the pakk registry:
// three-component versions (major.minor.patch) and constraint specs
// (exact, >=, ^, ~, latest).
//
// Versions with fewer than three components are zero-padded at parse time,
// so every Version in circulation is a full triple. Comparison is plain
// lexicographic order over (major, minor, patch); there is no support for
// pre-release tags or build metadata.
package semver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/pakk/pkg/errors"
)

// Version is a (major, minor, patch) triple of non-negative integers.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a dot-separated version string with one to three
// numeric components. Missing components are zero-padded, so "1" parses
// as 1.0.0 and "1.2" as 1.2.0.
func ParseVersion(text string) (Version, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Version{}, errors.New(errors.ErrCodeMalformedSpec, "empty version")
	}

	parts := strings.Split(text, ".")
	if len(parts) > 3 {
		return Version{}, errors.New(errors.ErrCodeMalformedSpec, "invalid version %q: too many components", text)
	}

	nums := [3]int{}
	for i, p := range parts {
		if p == "" || strings.IndexFunc(p, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return Version{}, errors.New(errors.ErrCodeMalformedSpec, "invalid version %q: component %q is not a non-negative integer", text, p)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, errors.New(errors.ErrCodeMalformedSpec, "invalid version %q: %v", text, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String returns the canonical "major.minor.patch" form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or +1 depending on whether v is ordered before,
// equal to, or after o in lexicographic triple order.
func (v Version) Compare(o Version) int {
	if c := cmp(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp(v.Minor, o.Minor); c != 0 {
		return c
	}
	return cmp(v.Patch, o.Patch)
}

// Less reports whether v is strictly lower than o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
