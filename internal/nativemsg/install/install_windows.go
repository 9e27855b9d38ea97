package install

import (
	"fmt"
	"path/filepath"
)

import "golang.org/x/sys/windows/registry"

// keyPaths are the paths under the registry root where each browser looks up
// native messaging hosts.
var keyPaths = map[Browser]string{
	Chrome:  `SOFTWARE\Google\Chrome\NativeMessagingHosts`,
	Firefox: `SOFTWARE\Mozilla\NativeMessagingHosts`,
}

// ManifestDir returns the directory the manifest file is written to.
func ManifestDir(m Manifest, t Target) (string, error) {
	if t.Dir != "" {
		return t.Dir, nil
	}
	return filepath.Dir(m.Path), nil
}

// installManifest writes the manifest and registers it under
// HKEY_LOCAL_MACHINE for system installs, HKEY_CURRENT_USER otherwise.
func installManifest(m Manifest, buf []byte, t Target) (string, error) {
	dir, err := ManifestDir(m, t)
	if err != nil {
		return "", err
	}
	manifestPath := filepath.Join(dir, m.Filename())
	if err := write(manifestPath, buf); err != nil {
		return "", err
	}

	root := registry.CURRENT_USER
	if t.System {
		root = registry.LOCAL_MACHINE
	}
	return manifestPath, register(root, t.Browser, m.Name, manifestPath)
}

// register registers the native messaging host in the Windows registry.
func register(root registry.Key, b Browser, name string, manifestPath string) error {
	keyPath, ok := keyPaths[b]
	if !ok {
		return fmt.Errorf("no registry location for %v", b)
	}
	p := fmt.Sprintf(`%s\%s`, keyPath, name)
	k, _, err := registry.CreateKey(root, p, registry.CREATE_SUB_KEY|registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()
	return k.SetStringValue("", manifestPath)
}
