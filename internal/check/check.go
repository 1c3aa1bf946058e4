// Package check implements the compatibility resolution engine: it combines
// a registry-declared requires_python constraint with locally declared
// classifier tags to decide whether a package supports a target Python
// version.
package check

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/git-pkgs/pycompat/internal/pep440"
	"github.com/git-pkgs/pycompat/internal/pypi"
)

// Verdict is the three-way compatibility outcome for one package.
type Verdict string

const (
	VerdictSupported    Verdict = "supported"
	VerdictIncompatible Verdict = "incompatible"
	VerdictUnknown      Verdict = "unknown"
)

// Evidence records which metadata source produced a verdict.
type Evidence string

const (
	EvidenceNone       Evidence = "none"
	EvidenceRegistry   Evidence = "registry"
	EvidenceClassifier Evidence = "classifier"
	EvidenceStrict     Evidence = "strict-agreement"
)

// broadConstraintThreshold is the length under which a lower-bound-only
// constraint such as ">=3.6" is treated as a stale minimum rather than a
// positive declaration of support for newer interpreters.
const broadConstraintThreshold = 8

// Result is the resolution outcome for one package.
type Result struct {
	Version   string   `json:"version"`
	Verdict   Verdict  `json:"status"`
	Rationale string   `json:"details"`
	Evidence  Evidence `json:"source"`

	// RemoteClassifiers carries the registry's classifier list for report
	// consumers; the verdict itself only uses locally installed classifiers.
	RemoteClassifiers []string `json:"remote_classifiers,omitempty"`
}

// Report maps package names to their resolution results. Keys are unique per
// run; iteration order carries no meaning.
type Report map[string]Result

// Environment is the local package database surface the resolver needs.
type Environment interface {
	// List returns installed package names mapped to versions.
	List() map[string]string

	// Classifiers returns a package's Python version classifier lines in
	// metadata order; the boolean is false when the package is not installed.
	Classifiers(name string) ([]string, bool)
}

// MetadataFetcher retrieves registry metadata for a package.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, name string) (*pypi.Metadata, error)
}

// Resolver produces compatibility verdicts by combining registry and local
// evidence. It holds no mutable state; resolutions are independent.
type Resolver struct {
	fetcher     MetadataFetcher
	env         Environment
	concurrency int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithConcurrency bounds the number of packages resolved in parallel during
// batch runs. 1 gives fully sequential resolution.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewResolver creates a resolver over the given registry fetcher and local
// environment.
func NewResolver(fetcher MetadataFetcher, env Environment, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher:     fetcher,
		env:         env,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve produces a verdict for one package against a target Python
// version. All registry and parse failures degrade to missing evidence; the
// only input rejected outright is an unparseable target version.
func (r *Resolver) Resolve(ctx context.Context, name, installedVersion, target string, strict bool) Result {
	res := Result{Version: installedVersion, Verdict: VerdictUnknown, Evidence: EvidenceNone}

	targetVer, err := pep440.ParseVersion(target)
	if err != nil {
		res.Rationale = fmt.Sprintf("invalid target python version: %s", target)
		return res
	}

	regVerdict, regRationale, regSet := r.registryVerdict(ctx, name, targetVer, &res)
	clsVerdict, clsRationale, clsSet := r.classifierVerdict(name, target)

	if strict {
		switch {
		case regSet && clsSet && regVerdict == VerdictSupported && clsVerdict == VerdictSupported:
			res.Verdict = VerdictSupported
			res.Rationale = "both sources match"
			res.Evidence = EvidenceStrict
		case regSet || clsSet:
			res.Verdict = VerdictUnknown
			res.Rationale = "partial metadata agreement under strict mode"
			res.Evidence = EvidenceStrict
		default:
			res.Rationale = "no metadata found"
		}
		return res
	}

	switch {
	case regSet:
		res.Verdict = regVerdict
		res.Rationale = regRationale
		res.Evidence = EvidenceRegistry
	case clsSet:
		res.Verdict = clsVerdict
		res.Rationale = clsRationale
		res.Evidence = EvidenceClassifier
	default:
		res.Rationale = "no metadata found"
	}
	return res
}

// registryVerdict evaluates the declared requires_python constraint. Network
// errors, missing packages, and unparseable constraints all return set=false.
func (r *Resolver) registryVerdict(ctx context.Context, name string, target pep440.Version, res *Result) (verdict Verdict, rationale string, set bool) {
	meta, err := r.fetcher.FetchMetadata(ctx, name)
	if err != nil || meta == nil {
		return "", "", false
	}
	res.RemoteClassifiers = meta.Classifiers

	raw := meta.RequiresPython
	spec, err := pep440.ParseSpecifierSet(raw)
	if err != nil || spec == nil {
		return "", "", false
	}

	rationale = "PyPI requires_python: " + raw
	if spec.Contains(target) {
		verdict = VerdictSupported
	} else {
		verdict = VerdictIncompatible
	}

	// A short bare lower bound like ">=3.6" predates the target more often
	// than it vouches for it.
	if strings.Contains(raw, ">=") && len(raw) < broadConstraintThreshold {
		verdict = VerdictUnknown
		rationale += " (declared too broadly)"
	}

	return verdict, rationale, true
}

// classifierVerdict scans locally declared Python version classifiers. A tag
// matches on exact version equality or on its first release component
// (so "Programming Language :: Python :: 3" matches target 3.9).
func (r *Resolver) classifierVerdict(name, target string) (verdict Verdict, rationale string, set bool) {
	tags, ok := r.env.Classifiers(name)
	if !ok || len(tags) == 0 {
		return "", "", false
	}

	for _, tag := range tags {
		ver := trailingVersion(tag)
		if ver == target || firstComponent(ver) == firstComponent(target) {
			return VerdictSupported, "classifier: " + tag, true
		}
	}

	return VerdictUnknown, fmt.Sprintf("classifiers found but no exact match: %v", tags), true
}

// trailingVersion extracts the version token from a classifier line such as
// "Programming Language :: Python :: 3.11".
func trailingVersion(tag string) string {
	parts := strings.Split(tag, "::")
	return strings.TrimSpace(parts[len(parts)-1])
}

func firstComponent(version string) string {
	head, _, _ := strings.Cut(version, ".")
	return head
}

// CheckEnvironment resolves a set of packages against a target version and
// aggregates the results. With a nil package list, every installed package
// is checked. Listed packages that are not installed are still resolved with
// version "unknown". Every input yields exactly one report entry.
func (r *Resolver) CheckEnvironment(ctx context.Context, target string, packages []string, strict bool) Report {
	installed := r.env.List()

	type pkg struct{ name, version string }
	var pkgs []pkg
	if len(packages) == 0 {
		for name, version := range installed {
			pkgs = append(pkgs, pkg{name, version})
		}
	} else {
		for _, name := range packages {
			version, ok := installed[name]
			if !ok {
				version = "unknown"
			}
			pkgs = append(pkgs, pkg{name, version})
		}
	}

	report := make(Report, len(pkgs))
	var mu sync.Mutex
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for _, p := range pkgs {
		wg.Add(1)
		go func(p pkg) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				report[p.name] = Result{
					Version:   p.version,
					Verdict:   VerdictUnknown,
					Rationale: "no metadata found",
					Evidence:  EvidenceNone,
				}
				mu.Unlock()
				return
			}

			result := r.Resolve(ctx, p.name, p.version, target, strict)
			mu.Lock()
			report[p.name] = result
			mu.Unlock()
		}(p)
	}

	wg.Wait()
	return report
}
