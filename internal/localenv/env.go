// Package localenv reads installed Python distribution metadata from
// site-packages directories, the Go equivalent of importlib.metadata.
package localenv

import (
	"bufio"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// pythonClassifierPrefix selects trove classifiers that declare supported
// interpreter versions.
const pythonClassifierPrefix = "Programming Language :: Python ::"

// Distribution is the validated metadata of one installed package.
type Distribution struct {
	Name        string
	Version     string
	Classifiers []string
}

// Environment reads installed distributions from one or more site-packages
// roots. The zero value is an empty environment.
type Environment struct {
	roots []string
}

// NewEnvironment creates an environment over the given site-packages roots.
func NewEnvironment(roots ...string) *Environment {
	return &Environment{roots: roots}
}

// DefaultEnvironment discovers site-packages roots from the local python3
// interpreter. If no interpreter is available the environment is empty, which
// is a normal outcome: every lookup degrades to not-installed.
func DefaultEnvironment() *Environment {
	return NewEnvironment(discoverRoots()...)
}

// discoverRoots asks python3 for its site-packages directories.
func discoverRoots() []string {
	out, err := exec.Command("python3", "-c",
		"import site, json; print(json.dumps(site.getsitepackages() + [site.getusersitepackages()]))").Output()
	if err != nil {
		return nil
	}
	var roots []string
	if err := json.Unmarshal(out, &roots); err != nil {
		return nil
	}
	return roots
}

// List returns a name to version mapping of all installed distributions.
// A distribution whose version cannot be determined maps to "unknown".
func (e *Environment) List() map[string]string {
	pkgs := make(map[string]string)
	for _, root := range e.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || !strings.HasSuffix(entry.Name(), ".dist-info") {
				continue
			}
			dist, err := readMetadata(filepath.Join(root, entry.Name(), "METADATA"))
			if err != nil || dist.Name == "" {
				continue
			}
			if dist.Version == "" {
				dist.Version = "unknown"
			}
			if _, seen := pkgs[dist.Name]; !seen {
				pkgs[dist.Name] = dist.Version
			}
		}
	}
	return pkgs
}

// Distribution looks up one installed package by exact name. The boolean is
// false when the package has no local installation record.
func (e *Environment) Distribution(name string) (*Distribution, bool) {
	for _, root := range e.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || !strings.HasSuffix(entry.Name(), ".dist-info") {
				continue
			}
			dist, err := readMetadata(filepath.Join(root, entry.Name(), "METADATA"))
			if err != nil {
				continue
			}
			if dist.Name == name {
				if dist.Version == "" {
					dist.Version = "unknown"
				}
				return dist, true
			}
		}
	}
	return nil, false
}

// Classifiers returns the Python version classifier lines declared by an
// installed package, in metadata order. The boolean is false when the package
// is not installed; an installed package with no Python classifiers returns
// an empty slice and true.
func (e *Environment) Classifiers(name string) ([]string, bool) {
	dist, ok := e.Distribution(name)
	if !ok {
		return nil, false
	}
	var tags []string
	for _, c := range dist.Classifiers {
		if strings.HasPrefix(c, pythonClassifierPrefix) {
			tags = append(tags, c)
		}
	}
	return tags, true
}

// readMetadata parses the RFC 822 style header block of a METADATA file.
// Only the Name, Version, and Classifier fields are read; the body after the
// first blank line is ignored.
func readMetadata(path string) (*Distribution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dist := &Distribution{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break // end of headers, description body follows
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Name":
			dist.Name = value
		case "Version":
			dist.Version = value
		case "Classifier":
			dist.Classifiers = append(dist.Classifiers, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return dist, nil
}
