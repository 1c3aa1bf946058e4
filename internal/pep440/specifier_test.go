package pep440

import "testing"

func mustVersion(t *testing.T, s string) Version {
	t.Helper()
	v, err := ParseVersion(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func TestParseSpecifierSet(t *testing.T) {
	tests := []struct {
		input   string
		clauses int
		wantErr bool
	}{
		{">=3.8", 1, false},
		{">=3.8,<4.0", 2, false},
		{">=3.8, <4.0", 2, false},
		{"==3.11.*", 1, false},
		{"!=3.0.*,>=2.7", 2, false},
		{"~=3.8", 1, false},
		{"===3.8.0", 1, false},
		{"invalid>>3.8", 0, true},
		{">=", 0, true},
		{">=not.a.version", 0, true},
		{"3.8", 0, true},     // bare version, no operator
		{"~=3", 0, true},     // ~= needs two release segments
		{">=3.*", 0, true},   // wildcard only valid for == and !=
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			set, err := ParseSpecifierSet(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpecifierSet(%q) failed: %v", tt.input, err)
			}
			if len(set) != tt.clauses {
				t.Errorf("expected %d clauses, got %d", tt.clauses, len(set))
			}
		})
	}
}

func TestParseSpecifierSetEmpty(t *testing.T) {
	for _, input := range []string{"", "   "} {
		set, err := ParseSpecifierSet(input)
		if err != nil {
			t.Errorf("ParseSpecifierSet(%q) returned error: %v", input, err)
		}
		if set != nil {
			t.Errorf("ParseSpecifierSet(%q) = %v, want nil", input, set)
		}
	}
}

func TestSpecifierSetContains(t *testing.T) {
	tests := []struct {
		spec    string
		version string
		want    bool
	}{
		{">=3.8", "3.8", true},
		{">=3.8", "3.9", true},
		{">=3.8", "3.7", false},
		{">=3.8,<4.0", "3.9", true},
		{">=3.8,<4.0", "4.0", false},
		{">=3.8,<4.0", "3.7.9", false},
		{"<3.13", "3.12", true},
		{">3.8", "3.8", false},
		{"<=3.8", "3.8", true},
		{"==3.11", "3.11", true},
		{"==3.11", "3.11.0", true},
		{"==3.11", "3.10", false},
		{"!=3.11", "3.10", true},
		{"==3.*", "3.11", true},
		{"==3.*", "2.7", false},
		{"!=3.0.*", "3.0.5", false},
		{"!=3.0.*", "3.1", true},
		{"~=3.8", "3.9", true},
		{"~=3.8", "4.0", false},
		{"~=3.8.1", "3.8.5", true},
		{"~=3.8.1", "3.9.0", false},
		{"===3.8", "3.8", true},
		{"===3.8", "3.8.0", false}, // === is textual, no zero padding
		{">=3.10", "3.9", false},   // not lexicographic
	}

	for _, tt := range tests {
		t.Run(tt.spec+" contains "+tt.version, func(t *testing.T) {
			set, err := ParseSpecifierSet(tt.spec)
			if err != nil {
				t.Fatalf("ParseSpecifierSet(%q) failed: %v", tt.spec, err)
			}
			if got := set.Contains(mustVersion(t, tt.version)); got != tt.want {
				t.Errorf("Contains(%q in %q) = %v, want %v", tt.version, tt.spec, got, tt.want)
			}
		})
	}
}

func TestSpecifierSetString(t *testing.T) {
	set, err := ParseSpecifierSet(">=3.8, <4.0")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := set.String(); got != ">=3.8,<4.0" {
		t.Errorf("String() = %q, want %q", got, ">=3.8,<4.0")
	}
}
