// Package classify maps a visited URL to a category label.
//
// The host only depends on the Classifier interface.  The concrete
// classifiers here are a static domain table, CEL rules, an external
// predictor command, and combinators that chain and cache them.
package classify

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// Classifier assigns a category to a URL.
type Classifier interface {
	Classify(ctx context.Context, rawURL string) (string, error)
}

// Func adapts a function to the Classifier interface.
type Func func(ctx context.Context, rawURL string) (string, error)

// Classify calls f.
func (f Func) Classify(ctx context.Context, rawURL string) (string, error) {
	return f(ctx, rawURL)
}

// ErrNoMatch is returned by classifiers that only know about part of the
// web, so that a Chain can move on to the next one.
var ErrNoMatch = errors.New("classify: no matching category")

// Normalize reduces a URL or bare domain to a lowercase host name without a
// leading "www.".  Scheme, port, path and query are dropped.
func Normalize(rawURL string) string {
	s := strings.ToLower(strings.TrimSpace(rawURL))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}

	host := ""
	if u, err := url.Parse(s); err == nil {
		host = u.Hostname()
	}
	if host == "" {
		// Not parseable as a URL; fall back to everything before the first
		// path separator.
		host = strings.TrimPrefix(s, "http://")
		if i := strings.IndexAny(host, "/?#"); i >= 0 {
			host = host[:i]
		}
	}

	host = strings.TrimSuffix(host, ".")
	return strings.TrimPrefix(host, "www.")
}

// parts splits rawURL into the values exposed to rules.
func parts(rawURL string) (host, path string) {
	host = Normalize(rawURL)
	s := strings.TrimSpace(rawURL)
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	if u, err := url.Parse(s); err == nil {
		path = u.EscapedPath()
	}
	return host, path
}
