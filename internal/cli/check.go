package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/git-pkgs/pycompat"
)

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	packages    []string      // explicit packages (names or PURLs)
	reqFile     string        // requirements.txt path
	strict      bool          // require registry and classifier agreement
	jsonOut     bool          // machine-readable output
	timeout     time.Duration // per-request HTTP timeout
	concurrency int           // parallel package resolutions
	indexURL    string        // alternate PyPI-compatible index
}

// newCheckCmd creates the check command.
//
// With no package selection flags, every installed package in the local
// environment is checked. Packages named with --packages that are not
// installed are still checked against the registry.
func newCheckCmd() *cobra.Command {
	opts := checkOpts{timeout: 5 * time.Second, concurrency: 4}

	cmd := &cobra.Command{
		Use:   "check <python-version>",
		Short: "Check package compatibility with a target Python version",
		Long: `Check whether Python packages declare support for a target interpreter version.

Examples:
  pycompat check 3.12                               # every installed package
  pycompat check 3.12 -p requests -p flask          # specific packages
  pycompat check 3.12 -r requirements.txt           # from a requirements file
  pycompat check 3.12 --strict                      # require both sources to agree
  pycompat check 3.12 -p pkg:pypi/requests --json   # PURL input, JSON output`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runCheck(c.Context(), &opts, args[0])
		},
	}

	cmd.Flags().StringArrayVarP(&opts.packages, "packages", "p", nil, "package name or purl (repeatable)")
	cmd.Flags().StringVarP(&opts.reqFile, "requirements", "r", "", "read package names from a requirements file")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "require registry and classifier metadata to agree")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "emit the report as JSON")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "HTTP request timeout")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", opts.concurrency, "packages checked in parallel")
	cmd.Flags().StringVar(&opts.indexURL, "index-url", "", "alternate PyPI-compatible index URL")

	return cmd
}

// collectPackages resolves the package selection flags into a name list.
// A nil result means "check everything installed".
func collectPackages(opts *checkOpts) ([]string, error) {
	var names []string
	for _, arg := range opts.packages {
		name, _, err := pycompat.ParsePackageArg(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid package argument %q: %w", arg, err)
		}
		names = append(names, name)
	}
	if opts.reqFile != "" {
		reqs, err := pycompat.ParseRequirementsFile(opts.reqFile)
		if err != nil {
			return nil, fmt.Errorf("reading requirements: %w", err)
		}
		names = append(names, reqs...)
	}
	return names, nil
}

func runCheck(ctx context.Context, opts *checkOpts, target string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	names, err := collectPackages(opts)
	if err != nil {
		return err
	}

	env := pycompat.DefaultEnvironment()
	httpClient := pycompat.NewClient(pycompat.WithTimeout(opts.timeout))
	checker := pycompat.NewChecker(
		pycompat.NewRegistry(opts.indexURL, httpClient),
		env,
		pycompat.WithConcurrency(opts.concurrency),
	)

	var spinner *Spinner
	if !opts.jsonOut {
		spinner = newSpinner(ctx, fmt.Sprintf("Checking packages against Python %s...", target))
		spinner.Start()
	}

	report := checker.CheckEnvironment(ctx, target, names, opts.strict)

	if spinner != nil {
		spinner.Stop()
	}

	logger.Debugf("registry breaker state: %v", checker.BreakerState())
	prog.done(fmt.Sprintf("Checked %d packages", len(report)))

	if opts.jsonOut {
		if err := renderJSON(os.Stdout, report); err != nil {
			return err
		}
	} else {
		renderReport(os.Stdout, target, report)
	}

	if n := countVerdict(report, pycompat.VerdictIncompatible); n > 0 {
		return fmt.Errorf("%d of %d packages incompatible with python %s", n, len(report), target)
	}
	return nil
}

func countVerdict(report pycompat.Report, verdict pycompat.Verdict) int {
	n := 0
	for _, res := range report {
		if res.Verdict == verdict {
			n++
		}
	}
	return n
}
