package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmame/txntools/release"
)

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		filepath.Join("main", "ota_update.h"): "#define FIRMWARE_VERSION \"0.9.0\"\n",
		filepath.Join("out", "player.bin"):    "firmware",
		"release.yaml":                        "build_dir: out\nfirmware_name: player.bin\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestRunReleaseWithoutBuildOrGit(t *testing.T) {
	root := newProject(t)
	// version, notes, update header, skip build, default dir, no commit, no tag
	stdin := strings.NewReader("1.0.0\nFirst release\ny\nn\n\nn\nn\n")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-root", root, "-no-color"}, stdin, &stdout, &stderr)

	require.Equal(t, 0, code, stdout.String()+stderr.String())
	assert.Contains(t, stdout.String(), "Release preparation complete!")
	assert.NotContains(t, stdout.String(), "\033[")

	m, err := release.ReadVersionFile(filepath.Join(root, "release", "version.json"))
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", m.Version)
	assert.Equal(t, "First release", m.ReleaseNotes)

	fw, err := os.ReadFile(filepath.Join(root, "release", "firmware.bin"))
	require.NoError(t, err)
	assert.Equal(t, "firmware", string(fw))
}

func TestRunAborted(t *testing.T) {
	root := newProject(t)
	stdin := strings.NewReader("1.0.0\n\nn\nn\n")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-root", root, "-no-color"}, stdin, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "Release aborted")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"-root", newProject(t), "-no-color"}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "Release process cancelled by user")
}

// stalledInput blocks every Read until released, like a terminal nobody
// types into.
type stalledInput struct {
	reading chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *stalledInput) Read([]byte) (int, error) {
	s.once.Do(func() { close(s.reading) })
	<-s.release
	return 0, io.EOF
}

func TestRunInterruptedWhileWaitingForInput(t *testing.T) {
	in := &stalledInput{reading: make(chan struct{}), release: make(chan struct{})}
	// the stalled step wakes up after run returned and writes into the
	// closed gate, not into stdout
	t.Cleanup(func() { close(in.release) })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-in.reading
		cancel()
	}()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"-root", newProject(t), "-no-color"}, in, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "New version (semantic: X.Y.Z)")
	assert.Contains(t, stdout.String(), "Release process cancelled by user")
}

func TestGatedWriter(t *testing.T) {
	var buf bytes.Buffer
	g := &gatedWriter{w: &buf}

	n, err := g.Write([]byte("before"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	g.Close()
	n, err = g.Write([]byte("after"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "before", buf.String())
}

func TestRunErrors(t *testing.T) {
	badConfig := newProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(badConfig, "release.yaml"), []byte("build_command: []\n"), 0o644))

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown flag", []string{"-bogus"}, 2},
		{"positional args", []string{"extra"}, 1},
		{"bad log level", []string{"-log-level", "loud"}, 1},
		{"bad config", []string{"-root", badConfig}, 1},
		{"not a project", []string{"-root", t.TempDir(), "-no-color"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, strings.NewReader(""), &stdout, &stderr)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-version"}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Equal(t, "releasehelper "+version+"\n", stdout.String())
}
