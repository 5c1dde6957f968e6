package semver

import "strings"

// Op is a version constraint operator.
type Op int

const (
	// OpExact requires member-wise equality on all three components.
	OpExact Op = iota
	// OpAtLeast accepts any version >= the spec version.
	OpAtLeast
	// OpCaret pins the major component; minor and patch may be higher.
	OpCaret
	// OpTilde pins major and minor; only patch may be higher.
	OpTilde
	// OpLatest accepts any version. It carries no version of its own.
	OpLatest
)

// String returns the operator's spec prefix ("" for exact).
func (op Op) String() string {
	switch op {
	case OpAtLeast:
		return ">="
	case OpCaret:
		return "^"
	case OpTilde:
		return "~"
	case OpLatest:
		return "latest"
	default:
		return ""
	}
}

// Spec is a parsed version constraint: an operator plus, for every
// operator except latest, a version triple.
type Spec struct {
	Op      Op
	Version Version
}

// Latest is the constraint that accepts any version.
var Latest = Spec{Op: OpLatest}

// ParseSpec parses a constraint expression. Recognized forms are
// ">=X.Y.Z", "^X.Y.Z", "~X.Y.Z", the literal "latest", and a bare
// version meaning an exact match. Short versions are zero-padded
// (see [ParseVersion]).
func ParseSpec(text string) (Spec, error) {
	text = strings.TrimSpace(text)

	switch {
	case text == "latest":
		return Latest, nil
	case strings.HasPrefix(text, ">="):
		return specWith(OpAtLeast, text[2:])
	case strings.HasPrefix(text, "^"):
		return specWith(OpCaret, text[1:])
	case strings.HasPrefix(text, "~"):
		return specWith(OpTilde, text[1:])
	default:
		return specWith(OpExact, text)
	}
}

func specWith(op Op, version string) (Spec, error) {
	v, err := ParseVersion(version)
	if err != nil {
		return Spec{}, err
	}
	return Spec{Op: op, Version: v}, nil
}

// String renders the spec back to constraint syntax. The numeric content
// is the canonical zero-padded triple, so String does not necessarily
// reproduce the original input byte for byte.
func (s Spec) String() string {
	if s.Op == OpLatest {
		return "latest"
	}
	return s.Op.String() + s.Version.String()
}

// IsLatest reports whether the spec accepts any version.
func (s Spec) IsLatest() bool { return s.Op == OpLatest }

// Satisfies reports whether candidate v meets the constraint.
func (s Spec) Satisfies(v Version) bool {
	switch s.Op {
	case OpLatest:
		return true
	case OpExact:
		return v.Compare(s.Version) == 0
	case OpAtLeast:
		return v.Compare(s.Version) >= 0
	case OpCaret:
		return v.Major == s.Version.Major && v.Compare(s.Version) >= 0
	case OpTilde:
		return v.Major == s.Version.Major && v.Minor == s.Version.Minor && v.Compare(s.Version) >= 0
	default:
		return false
	}
}

// SatisfiesString parses candidate and reports whether it meets the
// constraint. Unparsable candidates never satisfy.
func (s Spec) SatisfiesString(candidate string) bool {
	v, err := ParseVersion(candidate)
	if err != nil {
		return false
	}
	return s.Satisfies(v)
}

// MustParseSpec is like ParseSpec but panics on error. Intended for
// tests and compile-time constant specs.
func MustParseSpec(text string) Spec {
	s, err := ParseSpec(text)
	if err != nil {
		panic(err)
	}
	return s
}
