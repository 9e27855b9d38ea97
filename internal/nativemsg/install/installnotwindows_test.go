//go:build darwin || linux

package install

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallUser(t *testing.T) {
	home := t.TempDir()
	m := NewManifest("org.voce.host", "VOCE", absPath(t),
		[]string{"chrome-extension://abc/", "voce@example.org"})

	for _, b := range []Browser{Chrome, Firefox} {
		t.Run(b.String(), func(t *testing.T) {
			path, err := Install(m, Target{Browser: b, HomeDir: home})
			require.NoError(t, err)

			dir, err := ManifestDir(m, Target{Browser: b, HomeDir: home})
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "org.voce.host.json"), path)
			assert.Equal(t, filepath.Join(home, userSubDirs[b]), dir)

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			want, err := m.Marshal(b)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestManifestDirSystem(t *testing.T) {
	dir, err := ManifestDir(Manifest{}, Target{Browser: Chrome, System: true})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))

	_, err = ManifestDir(Manifest{}, Target{Browser: Browser(7), HomeDir: "/home/x"})
	assert.Error(t, err)
}
