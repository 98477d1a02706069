package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var versionRegex = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z.-]+))?(?:\+([0-9A-Za-z.-]+))?$`)

// Version is a parsed semantic version
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
	Build      string
}

// ParseVersion parses a semantic version string
func ParseVersion(s string) (Version, error) {
	m := versionRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])
	return Version{Major: major, Minor: minor, Patch: patch, Prerelease: m[4], Build: m[5]}, nil
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// Compare returns -1, 0 or 1 ordering v against other. Build metadata is
// ignored; a release outranks any prerelease of the same triple.
func (v Version) Compare(other Version) int {
	if c := cmpInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := cmpInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := cmpInt(v.Patch, other.Patch); c != 0 {
		return c
	}
	switch {
	case v.Prerelease == other.Prerelease:
		return 0
	case v.Prerelease == "":
		return 1
	case other.Prerelease == "":
		return -1
	case v.Prerelease < other.Prerelease:
		return -1
	default:
		return 1
	}
}

// CompareVersions orders two version strings
func CompareVersions(a, b string) (int, error) {
	va, err := ParseVersion(a)
	if err != nil {
		return 0, err
	}
	vb, err := ParseVersion(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// IsCompatible reports whether version satisfies the constraint string.
// Supported forms: exact ("1.2.3"), comparison (">=1.2.0", ">1.0.0",
// "<=2.0.0", "<2.0.0"), caret ("^1.2.3": same major, not below), tilde
// ("~1.2.3": same major.minor, not below), and comma-separated conjunctions
// (">=1.2.0,<2.0.0").
func IsCompatible(constraint, version string) (bool, error) {
	v, err := ParseVersion(version)
	if err != nil {
		return false, err
	}
	for _, part := range strings.Split(constraint, ",") {
		ok, err := satisfies(strings.TrimSpace(part), v)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func satisfies(constraint string, v Version) (bool, error) {
	switch {
	case strings.HasPrefix(constraint, "^"):
		base, err := ParseVersion(constraint[1:])
		if err != nil {
			return false, fmt.Errorf("invalid constraint %q: %w", constraint, err)
		}
		return v.Major == base.Major && v.Compare(base) >= 0, nil

	case strings.HasPrefix(constraint, "~"):
		base, err := ParseVersion(constraint[1:])
		if err != nil {
			return false, fmt.Errorf("invalid constraint %q: %w", constraint, err)
		}
		return v.Major == base.Major && v.Minor == base.Minor && v.Compare(base) >= 0, nil

	case strings.HasPrefix(constraint, ">="):
		return compareAgainst(constraint, constraint[2:], v, func(c int) bool { return c >= 0 })
	case strings.HasPrefix(constraint, "<="):
		return compareAgainst(constraint, constraint[2:], v, func(c int) bool { return c <= 0 })
	case strings.HasPrefix(constraint, ">"):
		return compareAgainst(constraint, constraint[1:], v, func(c int) bool { return c > 0 })
	case strings.HasPrefix(constraint, "<"):
		return compareAgainst(constraint, constraint[1:], v, func(c int) bool { return c < 0 })
	case strings.HasPrefix(constraint, "=="):
		return compareAgainst(constraint, constraint[2:], v, func(c int) bool { return c == 0 })
	default:
		return compareAgainst(constraint, constraint, v, func(c int) bool { return c == 0 })
	}
}

func compareAgainst(full, raw string, v Version, ok func(int) bool) (bool, error) {
	base, err := ParseVersion(raw)
	if err != nil {
		return false, fmt.Errorf("invalid constraint %q: %w", full, err)
	}
	return ok(v.Compare(base)), nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
