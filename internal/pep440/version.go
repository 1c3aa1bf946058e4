// Package pep440 implements Python version and version-specifier parsing.
//
// Versions follow a simplified subset of PEP 440: an optional epoch, dotted
// numeric release segments, and optional pre/post/dev suffixes. Local version
// labels (+abc) are accepted and ignored for ordering. The total order is:
// epoch, then release segments compared numerically component-wise (shorter
// releases padded with zeros), then dev < alpha < beta < rc < final < post.
package pep440

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var versionRE = regexp.MustCompile(
	`^v?(?:(\d+)!)?(\d+(?:\.\d+)*)` +
		`(?:[-._]?(a|b|c|rc|alpha|beta|pre|preview)[-._]?(\d*))?` +
		`(?:[-._]?(post|rev|r)[-._]?(\d*))?` +
		`(?:[-._]?(dev)[-._]?(\d*))?` +
		`(?:\+[a-z0-9]+(?:[-._][a-z0-9]+)*)?$`)

// PreRelease is a pre-release marker (a, b, or rc) with its number.
type PreRelease struct {
	Label  string
	Number int
}

// Version is a parsed Python package or interpreter version.
type Version struct {
	Epoch   int
	Release []int
	Pre     *PreRelease
	Post    int // -1 if absent
	Dev     int // -1 if absent

	original string
}

// ParseVersion parses s into a Version. Leading/trailing whitespace and a
// leading "v" are tolerated; comparison is case-insensitive.
func ParseVersion(s string) (Version, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	m := versionRE.FindStringSubmatch(normalized)
	if m == nil {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}

	v := Version{Post: -1, Dev: -1, original: normalized}

	if m[1] != "" {
		v.Epoch, _ = strconv.Atoi(m[1])
	}

	for _, part := range strings.Split(m[2], ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		v.Release = append(v.Release, n)
	}

	if m[3] != "" {
		v.Pre = &PreRelease{Label: normalizePreLabel(m[3]), Number: atoiOrZero(m[4])}
	}
	if m[5] != "" {
		v.Post = atoiOrZero(m[6])
	}
	if m[7] != "" {
		v.Dev = atoiOrZero(m[8])
	}

	return v, nil
}

func normalizePreLabel(label string) string {
	switch label {
	case "alpha":
		return "a"
	case "beta":
		return "b"
	case "c", "pre", "preview":
		return "rc"
	}
	return label
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

// Major returns the first release component.
func (v Version) Major() int {
	if len(v.Release) == 0 {
		return 0
	}
	return v.Release[0]
}

// String returns the normalized input the version was parsed from.
func (v Version) String() string {
	return v.original
}

// releaseAt returns the release component at index i, zero-padded.
func (v Version) releaseAt(i int) int {
	if i < len(v.Release) {
		return v.Release[i]
	}
	return 0
}

// phaseRank orders versions that share a release segment:
// dev-only < pre-release < final < post.
func (v Version) phaseRank() int {
	switch {
	case v.Pre != nil:
		switch v.Pre.Label {
		case "a":
			return 1
		case "b":
			return 2
		default:
			return 3
		}
	case v.Dev >= 0 && v.Post < 0:
		return 0
	default:
		return 4
	}
}

// Compare returns -1, 0, or 1 ordering v against o.
func (v Version) Compare(o Version) int {
	if v.Epoch != o.Epoch {
		return cmpInt(v.Epoch, o.Epoch)
	}

	n := len(v.Release)
	if len(o.Release) > n {
		n = len(o.Release)
	}
	for i := 0; i < n; i++ {
		if c := cmpInt(v.releaseAt(i), o.releaseAt(i)); c != 0 {
			return c
		}
	}

	if c := cmpInt(v.phaseRank(), o.phaseRank()); c != 0 {
		return c
	}
	if v.Pre != nil && o.Pre != nil {
		if c := cmpInt(v.Pre.Number, o.Pre.Number); c != 0 {
			return c
		}
	}
	if c := cmpInt(v.Post, o.Post); c != 0 {
		return c
	}

	vd, od := v.Dev, o.Dev
	if vd < 0 {
		vd = math.MaxInt
	}
	if od < 0 {
		od = math.MaxInt
	}
	return cmpInt(vd, od)
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
