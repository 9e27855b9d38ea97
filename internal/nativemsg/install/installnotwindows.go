//go:build darwin || linux

package install

import (
	"fmt"
	"os/user"
	"path/filepath"
)

// ManifestDir returns the directory the browser searches for t.
func ManifestDir(_ Manifest, t Target) (string, error) {
	if t.System {
		d, ok := systemDirs[t.Browser]
		if !ok {
			return "", fmt.Errorf("no system manifest directory for %v", t.Browser)
		}
		return d, nil
	}

	sub, ok := userSubDirs[t.Browser]
	if !ok {
		return "", fmt.Errorf("no user manifest directory for %v", t.Browser)
	}
	home := t.HomeDir
	if home == "" {
		usr, err := user.Current()
		if err != nil {
			return "", err
		}
		home = usr.HomeDir
	}
	return filepath.Join(home, sub), nil
}

func installManifest(m Manifest, buf []byte, t Target) (string, error) {
	dir, err := ManifestDir(m, t)
	if err != nil {
		return "", err
	}
	name := filepath.Join(dir, m.Filename())
	return name, write(name, buf)
}
