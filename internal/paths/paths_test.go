package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCore(t *testing.T, dist string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dist, "lib"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "lib", "codemirror.js"), []byte("var CodeMirror;"), 0o600))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in, want string
	}{
		{"~", home},
		{"~/.mirrorkit", filepath.Join(home, ".mirrorkit")},
		{"/abs/path", "/abs/path"},
		{"rel/~/path", "rel/~/path"},
		{"~user/x", "~user/x"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ExpandHome(tt.in))
		})
	}
}

func TestResolveDistDir(t *testing.T) {
	project := t.TempDir()
	dist := filepath.Join(project, "node_modules", "codemirror")
	writeCore(t, dist)

	tests := []struct {
		name, in, want string
	}{
		{"distribution root", dist, dist},
		{"project dir", project, dist},
		{"node_modules dir", filepath.Join(project, "node_modules"), dist},
		{"trailing slash", dist + "/", dist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveDistDir(tt.in))
		})
	}
}

func TestResolveDistDir_NoDistribution(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, dir, ResolveDistDir(dir))
}

func TestResolveDistDir_Empty(t *testing.T) {
	t.Chdir(t.TempDir())
	require.Equal(t, filepath.Join("node_modules", "codemirror"), ResolveDistDir(""))

	writeCore(t, filepath.Join("node_modules", "codemirror"))
	require.Equal(t, filepath.Join("node_modules", "codemirror"), ResolveDistDir(""))
}
