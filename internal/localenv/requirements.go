package localenv

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

var reqNameRE = regexp.MustCompile(`^([A-Za-z0-9][-A-Za-z0-9._]*)`)

// ParseRequirementsFile extracts package names from a pip requirements file,
// in file order. Blank lines, comments, pip flags (-e, -r, ...), VCS
// references, and direct URLs are skipped. A missing or unreadable file is
// the one hard error surfaced to the caller.
func ParseRequirementsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}
		if m := reqNameRE.FindStringSubmatch(line); len(m) > 1 {
			names = append(names, m[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
