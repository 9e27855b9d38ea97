package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p00ya/voce-host/internal/app"
	"github.com/p00ya/voce-host/internal/nativemsg"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func configFile(t *testing.T, toml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(toml), 0o644))
	return path
}

const rulesConfig = `
[[classifier.rules]]
category = "auth"
expr = 'path.startsWith("/login")'

[cache]
backend = "none"
`

func frames(t *testing.T, msgs ...interface{}) *bytes.Buffer {
	t.Helper()
	var b bytes.Buffer
	ch := nativemsg.NewChannel(nil, &b)
	for _, m := range msgs {
		require.NoError(t, ch.WriteMessage(m))
	}
	return &b
}

func readAll(t *testing.T, out *bytes.Buffer) []map[string]string {
	t.Helper()
	ch := nativemsg.NewChannel(out, nil)
	var got []map[string]string
	for out.Len() > 0 {
		var m map[string]string
		require.NoError(t, ch.ReadMessage(&m))
		got = append(got, m)
	}
	return got
}

func TestRun(t *testing.T) {
	t.Setenv("LOGNAME", "aluno01")

	truncated := bytes.NewBuffer(make([]byte, 4))
	nativemsg.NativeEndian.PutUint32(truncated.Bytes(), 100)
	truncated.WriteString("0123456789")

	var tests = []struct {
		name   string
		config string
		args   []string
		stdin  *bytes.Buffer
		code   int
		want   []map[string]string
	}{
		{"Requests until EOF", rulesConfig, []string{"chrome-extension://abc/"},
			frames(t, "example.com/login", map[string]string{"text": "get_username_request"}), 0,
			[]map[string]string{
				{"status": "success", "category": "auth"},
				{"status": "success", "username": "aluno01"},
			}},
		{"Closed at once", rulesConfig, nil, &bytes.Buffer{}, 0, nil},
		{"Bad config", `byte_order = "middle"`, nil, frames(t, "example.com"), 0,
			[]map[string]string{{"status": "error", "message": "invalid configuration"}}},
		{"Truncated frame", rulesConfig, nil, truncated, 1, nil},
		{"Caller refused", `allowed_callers = ["chrome-extension://abc/"]`, nil, frames(t, "example.com"), 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			code := run(app.Options{ConfigPath: configFile(t, tt.config), Stdin: tt.stdin, Stdout: &out}, tt.args)
			assert.Equal(t, tt.code, code)

			got := readAll(t, &out)
			require.Len(t, got, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want["status"], got[i]["status"])
				assert.Equal(t, want["category"], got[i]["category"])
				assert.Equal(t, want["username"], got[i]["username"])
				assert.Contains(t, got[i]["message"], want["message"])
			}
		})
	}
}

func TestRunWriteFailure(t *testing.T) {
	var tests = []struct {
		name   string
		config string
	}{
		{"Serving", rulesConfig},
		{"Bad config", `byte_order = "middle"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := run(app.Options{ConfigPath: configFile(t, tt.config), Stdin: frames(t, "example.com"), Stdout: failingWriter{}}, nil)
			assert.Equal(t, 1, code)
		})
	}
}
