package pycompat

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestParsePackageArg(t *testing.T) {
	tests := []struct {
		arg         string
		wantName    string
		wantVersion string
		wantErr     bool
	}{
		{"requests", "requests", "", false},
		{"pkg:pypi/requests", "requests", "", false},
		{"pkg:pypi/requests@2.31.0", "requests", "2.31.0", false},
		{"pkg:pypi/Typing_Extensions", "typing-extensions", "", false},
		{"pkg:npm/lodash", "", "", true},
		{"pkg:nonsense", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, version, err := ParsePackageArg(tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.arg)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePackageArg(%q) failed: %v", tt.arg, err)
			}
			if name != tt.wantName || version != tt.wantVersion {
				t.Errorf("got (%q, %q), want (%q, %q)", name, version, tt.wantName, tt.wantVersion)
			}
		})
	}
}

func TestCheckerAgainstTestServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pypi/requests/json":
			fmt.Fprint(w, `{"info":{"name":"requests","version":"2.31.0","requires_python":">=3.8,<4.0"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	root := t.TempDir()
	distDir := filepath.Join(root, "requests-2.31.0.dist-info")
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		t.Fatal(err)
	}
	metadata := "Name: requests\nVersion: 2.31.0\nClassifier: Programming Language :: Python :: 3.11\n"
	if err := os.WriteFile(filepath.Join(distDir, "METADATA"), []byte(metadata), 0o644); err != nil {
		t.Fatal(err)
	}

	checker := NewChecker(NewRegistry(server.URL, DefaultClient()), NewEnvironment(root))

	res := checker.Check(context.Background(), "requests", "2.31.0", "3.11", false)
	if res.Verdict != VerdictSupported {
		t.Errorf("Verdict = %q, want %q", res.Verdict, VerdictSupported)
	}
	if res.Evidence != EvidenceRegistry {
		t.Errorf("Evidence = %q, want %q", res.Evidence, EvidenceRegistry)
	}

	// Strict mode: registry and classifier agree.
	res = checker.Check(context.Background(), "requests", "2.31.0", "3.11", true)
	if res.Verdict != VerdictSupported {
		t.Errorf("strict Verdict = %q, want %q", res.Verdict, VerdictSupported)
	}
	if res.Evidence != EvidenceStrict {
		t.Errorf("strict Evidence = %q, want %q", res.Evidence, EvidenceStrict)
	}

	report := checker.CheckEnvironment(context.Background(), "3.11", []string{"requests", "ghost"}, false)
	if len(report) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(report))
	}
	if report["ghost"].Verdict != VerdictUnknown {
		t.Errorf("ghost Verdict = %q, want %q", report["ghost"].Verdict, VerdictUnknown)
	}

	if state := checker.BreakerState(); len(state) == 0 {
		t.Error("expected breaker state after fetches")
	}
}
