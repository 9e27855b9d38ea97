// Package install registers native messaging host manifests with Chrome and
// Firefox.
package install

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Browser selects which browser's manifest format and location to use.
type Browser int

const (
	Chrome Browser = iota
	Firefox
)

func (b Browser) String() string {
	switch b {
	case Chrome:
		return "chrome"
	case Firefox:
		return "firefox"
	}
	return fmt.Sprintf("Browser(%d)", int(b))
}

// ParseBrowser maps "chrome" or "firefox" to a Browser.
func ParseBrowser(s string) (Browser, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chrome", "chromium":
		return Chrome, nil
	case "firefox":
		return Firefox, nil
	}
	return 0, fmt.Errorf("unknown browser %q (want chrome or firefox)", s)
}

// ErrInvalidManifest is wrapped by Validate failures.
var ErrInvalidManifest = errors.New("invalid manifest")

// Manifest models the native messaging host manifest JSON.
//
// Chrome lists callers as allowed_origins ("chrome-extension://<id>/"),
// Firefox as allowed_extensions (add-on IDs).  See:
// https://developer.chrome.com/docs/apps/nativeMessaging/#native-messaging-host
// https://developer.mozilla.org/en-US/docs/Mozilla/Add-ons/WebExtensions/Native_manifests
type Manifest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Path              string   `json:"path"`
	Typ               string   `json:"type"`
	AllowedOrigins    []string `json:"allowed_origins,omitempty"`
	AllowedExtensions []string `json:"allowed_extensions,omitempty"`
}

// manifestType is the (only supported) value for the "type" field in the
// manifest.
const manifestType = "stdio"

const chromeOriginPrefix = "chrome-extension://"

var namePattern = regexp.MustCompile(`^([a-z0-9_]+)(\.[a-z0-9_]+)*$`)

// NewManifest returns a manifest for the host binary at path.  Callers that
// look like Chrome origins become allowed origins; everything else is taken
// to be a Firefox add-on ID.
func NewManifest(name, description, path string, callers []string) Manifest {
	m := Manifest{Name: name, Description: description, Path: path}
	for _, c := range callers {
		c = strings.TrimSpace(c)
		switch {
		case c == "":
		case strings.HasPrefix(c, chromeOriginPrefix):
			m.AllowedOrigins = append(m.AllowedOrigins, strings.TrimSuffix(c, "/")+"/")
		default:
			m.AllowedExtensions = append(m.AllowedExtensions, c)
		}
	}
	return m
}

// For returns the manifest as b expects it, with the other browser's caller
// list removed.
func (m Manifest) For(b Browser) Manifest {
	m.Typ = manifestType
	if b == Firefox {
		m.AllowedOrigins = nil
	} else {
		m.AllowedExtensions = nil
	}
	return m
}

// Validate checks that the browser will accept m.
func (m Manifest) Validate(b Browser) error {
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("%w: host name %q", ErrInvalidManifest, m.Name)
	}
	if !filepath.IsAbs(m.Path) {
		return fmt.Errorf("%w: path %q is not absolute", ErrInvalidManifest, m.Path)
	}
	switch b {
	case Chrome:
		if len(m.AllowedOrigins) == 0 {
			return fmt.Errorf("%w: chrome needs at least one allowed origin", ErrInvalidManifest)
		}
	case Firefox:
		if len(m.AllowedExtensions) == 0 {
			return fmt.Errorf("%w: firefox needs at least one allowed extension", ErrInvalidManifest)
		}
	}
	return nil
}

// Marshal returns on-disk encoding of the manifest for b.
func (m Manifest) Marshal(b Browser) ([]byte, error) {
	buf, err := json.MarshalIndent(m.For(b), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(buf, '\n'), nil
}

// Filename is the appropriate name for the manifest file (with no path).
func (m Manifest) Filename() string {
	return m.Name + ".json"
}

// Target says where to install a manifest.
type Target struct {
	Browser Browser

	// System installs for every user rather than the current one.
	System bool

	// HomeDir overrides the current user's home directory for user
	// installs.  Ignored on Windows.
	HomeDir string

	// Dir is where the manifest file is written on Windows, where the
	// registry points at it.  Empty means the directory of the host binary.
	Dir string
}

// Install validates m, writes it for t and returns the manifest path.
func Install(m Manifest, t Target) (string, error) {
	if err := m.Validate(t.Browser); err != nil {
		return "", err
	}
	buf, err := m.Marshal(t.Browser)
	if err != nil {
		return "", err
	}
	return installManifest(m, buf, t)
}

// write writes the serialized manifest buffer to the given path.
func write(name string, buf []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf(`creating manifest directory: %w`, err)
	}
	if err := os.WriteFile(name, buf, 0644); err != nil {
		return fmt.Errorf(`writing manifest: %w`, err)
	}
	return nil
}
