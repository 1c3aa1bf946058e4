// Package pycompat checks whether installed Python packages declare support
// for a target Python version.
//
// Verdicts combine two metadata sources: the requires_python constraint
// published on the package index, and the Python version classifiers recorded
// in the locally installed distribution. Registry evidence wins when both are
// available; strict mode demands agreement.
//
// Basic usage:
//
//	env := pycompat.DefaultEnvironment()
//	reg := pycompat.NewRegistry("", pycompat.DefaultClient())
//	checker := pycompat.NewChecker(reg, env)
//
//	report := checker.CheckEnvironment(context.Background(), "3.12", nil, false)
//	for name, res := range report {
//		fmt.Println(name, res.Verdict, res.Rationale)
//	}
package pycompat

import (
	"context"
	"fmt"

	packageurl "github.com/package-url/packageurl-go"

	"github.com/git-pkgs/pycompat/client"
	"github.com/git-pkgs/pycompat/fetch"
	"github.com/git-pkgs/pycompat/internal/check"
	"github.com/git-pkgs/pycompat/internal/localenv"
	"github.com/git-pkgs/pycompat/internal/pep440"
	"github.com/git-pkgs/pycompat/internal/pypi"
)

// Re-export types from internal/check
type (
	// Verdict is the three-way compatibility outcome for one package.
	Verdict = check.Verdict

	// Evidence records which metadata source produced a verdict.
	Evidence = check.Evidence

	// Result is the resolution outcome for one package.
	Result = check.Result

	// Report maps package names to their resolution results.
	Report = check.Report
)

// Re-export verdict and evidence constants
const (
	VerdictSupported    = check.VerdictSupported
	VerdictIncompatible = check.VerdictIncompatible
	VerdictUnknown      = check.VerdictUnknown

	EvidenceNone       = check.EvidenceNone
	EvidenceRegistry   = check.EvidenceRegistry
	EvidenceClassifier = check.EvidenceClassifier
	EvidenceStrict     = check.EvidenceStrict
)

// Re-export types from client
type (
	// Client is an HTTP client with retry logic for registry APIs.
	Client = client.Client

	// Option configures a Client.
	Option = client.Option
)

// Re-export errors
var (
	ErrNotFound     = client.ErrNotFound
	ErrUpstreamDown = fetch.ErrUpstreamDown
)

// Error types
type (
	HTTPError      = client.HTTPError
	NotFoundError  = client.NotFoundError
	RateLimitError = client.RateLimitError
)

// DefaultClient returns a client with sensible defaults:
// - 5s timeout
// - 2 retries with exponential backoff
// - Retry on 429 and 5xx responses
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	return client.NewClient(opts...)
}

// WithTimeout sets the HTTP client timeout.
var WithTimeout = client.WithTimeout

// WithMaxRetries sets the maximum number of retries.
var WithMaxRetries = client.WithMaxRetries

// Registry fetches package metadata from a PyPI-compatible JSON API.
type Registry = pypi.Registry

// Metadata is the slice of registry metadata the checker consumes.
type Metadata = pypi.Metadata

// NewRegistry creates a registry client. If baseURL is empty the public PyPI
// instance is used; if c is nil, DefaultClient() is used.
func NewRegistry(baseURL string, c *Client) *Registry {
	return pypi.New(baseURL, c)
}

// NormalizeName normalizes a package name per the index's naming rules:
// lowercase, with underscores and dots folded to hyphens.
func NormalizeName(name string) string {
	return pypi.NormalizeName(name)
}

// Environment reads installed distributions from site-packages directories.
type Environment = localenv.Environment

// Distribution is one installed package's recorded metadata.
type Distribution = localenv.Distribution

// NewEnvironment creates an environment over explicit site-packages roots.
func NewEnvironment(roots ...string) *Environment {
	return localenv.NewEnvironment(roots...)
}

// DefaultEnvironment discovers site-packages roots from the local python3
// interpreter. Discovery failures yield an empty environment.
func DefaultEnvironment() *Environment {
	return localenv.DefaultEnvironment()
}

// ParseRequirementsFile extracts package names from a pip requirements file.
func ParseRequirementsFile(path string) ([]string, error) {
	return localenv.ParseRequirementsFile(path)
}

// Version is a parsed Python version with a simplified PEP 440 total order.
type Version = pep440.Version

// SpecifierSet is a parsed requires_python-style constraint expression.
type SpecifierSet = pep440.SpecifierSet

// ParseVersion parses a Python version string into a comparable form.
func ParseVersion(s string) (Version, error) {
	return pep440.ParseVersion(s)
}

// ParseSpecifierSet parses a requires_python-style constraint expression.
// An empty string yields a nil set, which admits every version.
func ParseSpecifierSet(s string) (SpecifierSet, error) {
	return pep440.ParseSpecifierSet(s)
}

// CheckerOption configures a Checker.
type CheckerOption = check.Option

// WithConcurrency bounds the number of packages checked in parallel.
var WithConcurrency = check.WithConcurrency

// Checker resolves compatibility verdicts for packages. Registry fetches go
// through a per-host circuit breaker so a dead index fails fast.
type Checker struct {
	resolver *check.Resolver
	breaker  *fetch.CircuitBreakerFetcher
}

// NewChecker creates a checker over a registry and a local environment.
func NewChecker(reg *Registry, env *Environment, opts ...CheckerOption) *Checker {
	breaker := fetch.NewCircuitBreakerFetcher(reg)
	return &Checker{
		resolver: check.NewResolver(breaker, env, opts...),
		breaker:  breaker,
	}
}

// Check resolves a single package against a target Python version.
func (c *Checker) Check(ctx context.Context, name, installedVersion, target string, strict bool) Result {
	return c.resolver.Resolve(ctx, name, installedVersion, target, strict)
}

// CheckEnvironment resolves a set of packages against a target version. With
// a nil package list, every installed package is checked.
func (c *Checker) CheckEnvironment(ctx context.Context, target string, packages []string, strict bool) Report {
	return c.resolver.CheckEnvironment(ctx, target, packages, strict)
}

// BreakerState returns the circuit breaker state per registry host.
func (c *Checker) BreakerState() map[string]string {
	return c.breaker.BreakerState()
}

// ParsePackageArg accepts either a bare package name or a Package URL such as
// pkg:pypi/requests@2.31.0 and returns the name and optional version.
func ParsePackageArg(arg string) (name, version string, err error) {
	if len(arg) < 4 || arg[:4] != "pkg:" {
		return arg, "", nil
	}
	p, err := packageurl.FromString(arg)
	if err != nil {
		return "", "", err
	}
	if p.Type != "pypi" {
		return "", "", fmt.Errorf("unsupported purl type %q, only pypi is supported", p.Type)
	}
	return pypi.NormalizeName(p.Name), p.Version, nil
}
