package pep440

import (
	"fmt"
	"strings"
)

// Specifier is a single version clause such as ">=3.8" or "!=3.0.*".
type Specifier struct {
	Op       string
	Version  Version
	wildcard bool // trailing .* on == / !=
	raw      string
}

// SpecifierSet is a comma-joined conjunction of specifiers, matching the
// requires_python grammar. A version is contained when every clause admits it.
type SpecifierSet []Specifier

var specifierOps = []string{"===", "==", "!=", "<=", ">=", "~=", "<", ">"}

// ParseSpecifierSet parses a raw constraint expression. An empty or
// whitespace-only raw returns (nil, nil): no constraint, no error. Any
// syntactically invalid clause fails the whole set.
func ParseSpecifierSet(raw string) (SpecifierSet, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var set SpecifierSet
	for _, clause := range strings.Split(raw, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		spec, err := parseSpecifier(clause)
		if err != nil {
			return nil, err
		}
		set = append(set, spec)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("invalid specifier set %q", raw)
	}
	return set, nil
}

func parseSpecifier(clause string) (Specifier, error) {
	var op string
	for _, candidate := range specifierOps {
		if strings.HasPrefix(clause, candidate) {
			op = candidate
			break
		}
	}
	if op == "" {
		return Specifier{}, fmt.Errorf("invalid specifier %q: missing operator", clause)
	}

	verText := strings.TrimSpace(clause[len(op):])
	if verText == "" {
		return Specifier{}, fmt.Errorf("invalid specifier %q: missing version", clause)
	}

	wildcard := false
	parseText := verText
	if strings.HasSuffix(verText, ".*") {
		if op != "==" && op != "!=" {
			return Specifier{}, fmt.Errorf("invalid specifier %q: wildcard requires == or !=", clause)
		}
		wildcard = true
		parseText = strings.TrimSuffix(verText, ".*")
	}

	ver, err := ParseVersion(parseText)
	if err != nil {
		return Specifier{}, fmt.Errorf("invalid specifier %q: %w", clause, err)
	}

	if op == "~=" && len(ver.Release) < 2 {
		return Specifier{}, fmt.Errorf("invalid specifier %q: ~= requires at least two release segments", clause)
	}

	return Specifier{Op: op, Version: ver, wildcard: wildcard, raw: clause}, nil
}

// Contains reports whether v satisfies every clause in the set.
func (s SpecifierSet) Contains(v Version) bool {
	for _, spec := range s {
		if !spec.admits(v) {
			return false
		}
	}
	return true
}

// String reconstructs the set in its parsed clause order.
func (s SpecifierSet) String() string {
	parts := make([]string, len(s))
	for i, spec := range s {
		parts[i] = spec.raw
	}
	return strings.Join(parts, ",")
}

func (spec Specifier) admits(v Version) bool {
	switch spec.Op {
	case "==":
		if spec.wildcard {
			return releasePrefixMatch(v, spec.Version)
		}
		return v.Compare(spec.Version) == 0
	case "!=":
		if spec.wildcard {
			return !releasePrefixMatch(v, spec.Version)
		}
		return v.Compare(spec.Version) != 0
	case ">=":
		return v.Compare(spec.Version) >= 0
	case "<=":
		return v.Compare(spec.Version) <= 0
	case ">":
		return v.Compare(spec.Version) > 0
	case "<":
		return v.Compare(spec.Version) < 0
	case "~=":
		prefix := spec.Version
		prefix.Release = prefix.Release[:len(prefix.Release)-1]
		return v.Compare(spec.Version) >= 0 && releasePrefixMatch(v, prefix)
	case "===":
		return v.String() == spec.Version.String()
	}
	return false
}

// releasePrefixMatch reports whether v's release starts with prefix's release
// components, zero-padding v as needed. Epochs must match.
func releasePrefixMatch(v, prefix Version) bool {
	if v.Epoch != prefix.Epoch {
		return false
	}
	for i, p := range prefix.Release {
		if v.releaseAt(i) != p {
			return false
		}
	}
	return true
}
