package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/git-pkgs/pycompat"
)

// renderJSON writes the report as indented JSON.
func renderJSON(w io.Writer, report pycompat.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// renderReport writes a human-readable report, one line per package sorted
// by name, followed by a verdict summary.
func renderReport(w io.Writer, target string, report pycompat.Report) {
	names := make([]string, 0, len(report))
	width := 0
	for name := range report {
		names = append(names, name)
		if len(name) > width {
			width = len(name)
		}
	}
	sort.Strings(names)

	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("Python %s compatibility", target)))

	counts := map[pycompat.Verdict]int{}
	for _, name := range names {
		res := report[name]
		counts[res.Verdict]++

		icon, style := verdictStyle(res.Verdict)
		fmt.Fprintf(w, "%s %-*s %s %s\n",
			style.Render(icon),
			width, StyleValue.Render(name),
			style.Render(string(res.Verdict)),
			StyleDim.Render(res.Rationale),
		)
	}

	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf(
		"%d supported · %d incompatible · %d unknown",
		counts[pycompat.VerdictSupported],
		counts[pycompat.VerdictIncompatible],
		counts[pycompat.VerdictUnknown],
	)))
}

func verdictStyle(v pycompat.Verdict) (string, lipgloss.Style) {
	switch v {
	case pycompat.VerdictSupported:
		return iconSupported, styleSupported
	case pycompat.VerdictIncompatible:
		return iconIncompatible, styleIncompatible
	default:
		return iconUnknown, styleUnknown
	}
}
