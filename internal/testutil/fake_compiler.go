package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// SyntaxError marks a shader source the fake compiler rejects.
const SyntaxError = "SYNTAX_ERROR"

// FakeCompiler is a stand-in for glslangValidator. It accepts the same
// `-V <src> -o <out>` arguments, copies the source to the output, and
// appends the source path to a log so tests can see invocation order.
type FakeCompiler struct {
	Bin string
	Log string
}

// Invocations returns the source paths the fake was called with, in order.
func (f *FakeCompiler) Invocations(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(f.Log)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Fields(string(data))
}

// NewFakeCompiler writes the fake compiler script into a temp directory.
// A source containing SyntaxError makes it print a diagnostic and exit
// with exitCode.
func NewFakeCompiler(t *testing.T, exitCode int) *FakeCompiler {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler is a POSIX shell script")
	}

	dir := t.TempDir()
	f := &FakeCompiler{
		Bin: filepath.Join(dir, "glslangValidator"),
		Log: filepath.Join(dir, "invocations.log"),
	}
	script := fmt.Sprintf(`#!/bin/sh
[ "$1" = "-V" ] && [ "$3" = "-o" ] || { echo "usage: $0 -V <src> -o <out>" >&2; exit 64; }
echo "$2" >> %q
if grep -q %s "$2"; then
	echo "ERROR: $2:1: '' : syntax error" >&2
	exit %d
fi
cat "$2" > "$4"
`, f.Log, SyntaxError, exitCode)
	require.NoError(t, os.WriteFile(f.Bin, []byte(script), 0o755))
	return f
}

// WriteShaders creates dir/name for every entry in files and returns dir.
func WriteShaders(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}
