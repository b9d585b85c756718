package semver

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// versionPattern matches a dotted 4-component build number such as 124.0.6367.91.
	versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+\.\d+`)
	// mainVersionPattern captures the major component of a build whose major is 1xx.
	mainVersionPattern = regexp.MustCompile(`(1\d{2})\.\d+\.\d+\.\d+`)
)

// Match returns the given capture group of the first match of re in text,
// or "" when there is no match. Group 0 is the whole match.
func Match(re *regexp.Regexp, text string, group int) string {
	m := re.FindStringSubmatch(text)
	if m == nil || group >= len(m) {
		return ""
	}
	return m[group]
}

// FindVersion returns the first W.X.Y.Z build number found anywhere in text.
func FindVersion(text string) string {
	return Match(versionPattern, text, 0)
}

// FindMainVersion returns the major component of the first 1xx.X.Y.Z build
// number in text. Majors outside 100-199 are not recognised.
func FindMainVersion(text string) string {
	return Match(mainVersionPattern, text, 1)
}

// SameMain reports whether two main versions are known and equal.
func SameMain(a, b string) bool {
	return a != "" && a == b
}

// SemVer represents a dotted numeric version
type SemVer struct {
	Original string // Original string (e.g., "124.0.6367.91")
	Parts    []int  // Parsed numeric parts [124, 0, 6367, 91]
}

// Parse parses a version string into a SemVer struct
func Parse(v string) SemVer {
	original := v
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" {
		return SemVer{Original: original}
	}

	var nums []int
	for _, part := range strings.Split(v, ".") {
		// Extract numeric prefix from part (e.g., "3-beta" -> 3)
		end := 0
		for end < len(part) && part[end] >= '0' && part[end] <= '9' {
			end++
		}
		n, _ := strconv.Atoi(part[:end])
		nums = append(nums, n)
	}

	return SemVer{
		Original: original,
		Parts:    nums,
	}
}

// String returns the original version string
func (v SemVer) String() string {
	return v.Original
}

// Compare compares two versions
// Returns: -1 if v < other, 0 if equal, 1 if v > other
func (v SemVer) Compare(other SemVer) int {
	maxLen := max(len(v.Parts), len(other.Parts))

	for i := range maxLen {
		vPart, otherPart := 0, 0
		if i < len(v.Parts) {
			vPart = v.Parts[i]
		}
		if i < len(other.Parts) {
			otherPart = other.Parts[i]
		}

		if vPart < otherPart {
			return -1
		}
		if vPart > otherPart {
			return 1
		}
	}

	return 0
}

// Direction describes moving from installed to target as "upgrade",
// "downgrade", "reinstall" or "install" when nothing is installed.
func Direction(installed, target string) string {
	if installed == "" {
		return "install"
	}
	switch Parse(target).Compare(Parse(installed)) {
	case 1:
		return "upgrade"
	case -1:
		return "downgrade"
	default:
		return "reinstall"
	}
}
