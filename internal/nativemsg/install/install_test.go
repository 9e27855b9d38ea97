package install

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func absPath(t *testing.T) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("bin", "classify-host"))
	require.NoError(t, err)
	return p
}

func TestNewManifest(t *testing.T) {
	m := NewManifest("org.voce.host", "VOCE", "/opt/voce/classify-host", []string{
		"chrome-extension://abc",
		" voce@example.org ",
		"",
		"chrome-extension://def/",
	})
	assert.Equal(t, []string{"chrome-extension://abc/", "chrome-extension://def/"}, m.AllowedOrigins)
	assert.Equal(t, []string{"voce@example.org"}, m.AllowedExtensions)
}

func TestMarshal(t *testing.T) {
	m := NewManifest("org.voce.host", "VOCE", "/opt/voce/classify-host",
		[]string{"chrome-extension://abc/", "voce@example.org"})

	var tests = []struct {
		browser Browser
		want    string
	}{
		{Chrome, `{"name":"org.voce.host","description":"VOCE","path":"/opt/voce/classify-host","type":"stdio","allowed_origins":["chrome-extension://abc/"]}`},
		{Firefox, `{"name":"org.voce.host","description":"VOCE","path":"/opt/voce/classify-host","type":"stdio","allowed_extensions":["voce@example.org"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.browser.String(), func(t *testing.T) {
			buf, err := m.Marshal(tt.browser)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(buf))
		})
	}
}

func TestValidate(t *testing.T) {
	path := absPath(t)
	var tests = []struct {
		name    string
		m       Manifest
		browser Browser
		ok      bool
	}{
		{"Chrome", NewManifest("org.voce.host", "", path, []string{"chrome-extension://abc/"}), Chrome, true},
		{"Firefox", NewManifest("voce_host", "", path, []string{"voce@example.org"}), Firefox, true},
		{"Upper case name", NewManifest("Org.Voce", "", path, []string{"chrome-extension://abc/"}), Chrome, false},
		{"Trailing dot", NewManifest("org.", "", path, []string{"chrome-extension://abc/"}), Chrome, false},
		{"Relative path", NewManifest("org.voce.host", "", "bin/host", []string{"chrome-extension://abc/"}), Chrome, false},
		{"No origins", NewManifest("org.voce.host", "", path, []string{"voce@example.org"}), Chrome, false},
		{"No extensions", NewManifest("org.voce.host", "", path, []string{"chrome-extension://abc/"}), Firefox, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate(tt.browser)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidManifest)
			}
		})
	}
}

func TestParseBrowser(t *testing.T) {
	b, err := ParseBrowser("Firefox")
	require.NoError(t, err)
	assert.Equal(t, Firefox, b)

	b, err = ParseBrowser("chromium")
	require.NoError(t, err)
	assert.Equal(t, Chrome, b)

	_, err = ParseBrowser("netscape")
	assert.Error(t, err)
}

func TestInstallRejectsInvalid(t *testing.T) {
	_, err := Install(Manifest{Name: "bad name"}, Target{HomeDir: t.TempDir(), Dir: t.TempDir()})
	assert.ErrorIs(t, err, ErrInvalidManifest)
}

func TestManifestFileContents(t *testing.T) {
	m := NewManifest("org.voce.host", "VOCE", absPath(t), []string{"voce@example.org"})
	buf, err := m.Marshal(Firefox)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf, &decoded))
	assert.Equal(t, "stdio", decoded["type"])
	assert.NotContains(t, decoded, "allowed_origins")
}
