package host

import (
	"strings"
)

// Browser families that launch native messaging hosts.
const (
	BrowserChrome  = "chrome"
	BrowserFirefox = "firefox"
)

const chromeOriginPrefix = "chrome-extension://"

// Caller identifies the extension that launched the host.
type Caller struct {
	Browser string
	// ID is the extension origin for Chrome ("chrome-extension://<id>/") and
	// the add-on ID for Firefox.
	ID string
}

// ParseCaller inspects the host's command line arguments (without the program
// name).  Chrome passes the calling origin, followed on Windows by
// --parent-window=N.  Firefox passes the path to the host manifest and then
// the add-on ID.  Anything else yields the zero Caller.
func ParseCaller(args []string) Caller {
	if len(args) == 0 {
		return Caller{}
	}
	if strings.HasPrefix(args[0], chromeOriginPrefix) {
		return Caller{Browser: BrowserChrome, ID: normalizeOrigin(args[0])}
	}
	if len(args) >= 2 && strings.HasSuffix(strings.ToLower(args[0]), ".json") {
		return Caller{Browser: BrowserFirefox, ID: args[1]}
	}
	return Caller{}
}

// Known reports whether the caller was recognised.
func (c Caller) Known() bool {
	return c.ID != ""
}

// Allowed reports whether c is in allowed.  An empty list allows everyone,
// including unrecognised callers.
func (c Caller) Allowed(allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	if !c.Known() {
		return false
	}
	for _, a := range allowed {
		a = strings.TrimSpace(a)
		if strings.HasPrefix(a, chromeOriginPrefix) {
			a = normalizeOrigin(a)
		}
		if a == c.ID {
			return true
		}
	}
	return false
}

// normalizeOrigin makes "chrome-extension://id" and "chrome-extension://id/"
// compare equal.
func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(origin, "/") + "/"
}
