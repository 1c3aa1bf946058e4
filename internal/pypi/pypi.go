// Package pypi provides a metadata client for pypi.org.
package pypi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/git-pkgs/pycompat/client"
)

const (
	DefaultURL = "https://pypi.org"
	ecosystem  = "pypi"
)

// Registry fetches package metadata from a PyPI-compatible JSON API.
type Registry struct {
	baseURL string
	client  *client.Client
	urls    *URLs
}

// New creates a registry client. If baseURL is empty, pypi.org is used.
// If c is nil, client.DefaultClient() is used.
func New(baseURL string, c *client.Client) *Registry {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if c == nil {
		c = client.DefaultClient()
	}
	r := &Registry{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  c,
	}
	r.urls = &URLs{baseURL: r.baseURL}
	return r
}

func (r *Registry) Ecosystem() string {
	return ecosystem
}

// Host returns the registry hostname, used for circuit breaker grouping.
func (r *Registry) Host() string {
	if u, err := url.Parse(r.baseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return r.baseURL
}

func (r *Registry) URLs() *URLs {
	return r.urls
}

type packageResponse struct {
	Info infoBlock `json:"info"`
}

type infoBlock struct {
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Classifiers    []string `json:"classifiers"`
	RequiresPython string   `json:"requires_python"`
}

// Metadata is the slice of PyPI package metadata relevant to compatibility
// checking.
type Metadata struct {
	Name           string
	Version        string
	RequiresPython string
	Classifiers    []string
}

// FetchMetadata retrieves the declared requires_python constraint and
// classifier list for a package. A 404 maps to *client.NotFoundError.
func (r *Registry) FetchMetadata(ctx context.Context, name string) (*Metadata, error) {
	u := fmt.Sprintf("%s/pypi/%s/json", r.baseURL, name)

	var resp packageResponse
	if err := r.client.GetJSON(ctx, u, &resp); err != nil {
		if httpErr, ok := err.(*client.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &client.NotFoundError{Ecosystem: ecosystem, Name: name}
		}
		return nil, err
	}

	return &Metadata{
		Name:           resp.Info.Name,
		Version:        resp.Info.Version,
		RequiresPython: resp.Info.RequiresPython,
		Classifiers:    resp.Info.Classifiers,
	}, nil
}

// FetchRequiresPython returns only the declared constraint string for a
// package, empty when the field is missing.
func (r *Registry) FetchRequiresPython(ctx context.Context, name string) (string, error) {
	m, err := r.FetchMetadata(ctx, name)
	if err != nil {
		return "", err
	}
	return m.RequiresPython, nil
}

// NormalizeName lowercases a package name and collapses separators, per the
// PyPI normalization rules.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "-")
	name = strings.ReplaceAll(name, ".", "-")
	return name
}

// URLs builds project page URLs for report output.
type URLs struct {
	baseURL string
}

func (u *URLs) Registry(name, version string) string {
	if version != "" {
		return fmt.Sprintf("%s/project/%s/%s/", u.baseURL, name, version)
	}
	return fmt.Sprintf("%s/project/%s/", u.baseURL, name)
}

func (u *URLs) PURL(name, version string) string {
	normalized := NormalizeName(name)
	if version != "" {
		return fmt.Sprintf("pkg:pypi/%s@%s", normalized, version)
	}
	return fmt.Sprintf("pkg:pypi/%s", normalized)
}
