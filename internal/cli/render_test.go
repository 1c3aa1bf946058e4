package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/git-pkgs/pycompat"
)

func sampleReport() pycompat.Report {
	return pycompat.Report{
		"requests": {
			Version:   "2.31.0",
			Verdict:   pycompat.VerdictSupported,
			Rationale: "PyPI requires_python: >=3.8,<4.0",
			Evidence:  pycompat.EvidenceRegistry,
		},
		"oldlib": {
			Version:   "0.9",
			Verdict:   pycompat.VerdictIncompatible,
			Rationale: "PyPI requires_python: >=2.7,<3.0",
			Evidence:  pycompat.EvidenceRegistry,
		},
		"ghost": {
			Version:   "unknown",
			Verdict:   pycompat.VerdictUnknown,
			Rationale: "no metadata found",
			Evidence:  pycompat.EvidenceNone,
		},
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := renderJSON(&buf, sampleReport()); err != nil {
		t.Fatalf("renderJSON failed: %v", err)
	}

	var decoded map[string]struct {
		Version string `json:"version"`
		Status  string `json:"status"`
		Details string `json:"details"`
		Source  string `json:"source"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(decoded))
	}
	if decoded["requests"].Status != "supported" {
		t.Errorf("requests status = %q, want %q", decoded["requests"].Status, "supported")
	}
	if decoded["ghost"].Source != "none" {
		t.Errorf("ghost source = %q, want %q", decoded["ghost"].Source, "none")
	}
}

func TestRenderReport(t *testing.T) {
	var buf bytes.Buffer
	renderReport(&buf, "3.11", sampleReport())
	out := buf.String()

	for _, want := range []string{
		"Python 3.11 compatibility",
		"requests",
		"oldlib",
		"ghost",
		"no metadata found",
		"1 supported · 1 incompatible · 1 unknown",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// Lines are sorted by package name.
	if strings.Index(out, "ghost") > strings.Index(out, "requests") {
		t.Error("expected ghost before requests in sorted output")
	}
}

func TestCountVerdict(t *testing.T) {
	report := sampleReport()
	if n := countVerdict(report, pycompat.VerdictIncompatible); n != 1 {
		t.Errorf("incompatible count = %d, want 1", n)
	}
	if n := countVerdict(report, pycompat.VerdictSupported); n != 1 {
		t.Errorf("supported count = %d, want 1", n)
	}
}
