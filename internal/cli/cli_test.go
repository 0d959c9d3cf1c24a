package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vk/spvbatch/internal/app"
	"github.com/vk/spvbatch/internal/compiler"
	"github.com/vk/spvbatch/internal/hcl"
	"github.com/vk/spvbatch/internal/shader"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		args           []string
		expectExit     bool
		expectErr      bool
		expectedConfig *app.Config
		checkOutput    func(t *testing.T, output string)
	}{
		{
			name: "No arguments uses ./shaders",
			args: nil,
			expectedConfig: &app.Config{
				ShaderDir:     "shaders",
				Compiler:      "glslangValidator",
				Jobs:          1,
				NotifyTimeout: 15 * time.Second,
				LogLevel:      "info",
				LogFormat:     "text",
			},
		},
		{
			name: "Happy path with all flags",
			args: []string{
				"-shaders", "/src/shaders",
				"--out=/build/spv",
				"--compiler=/opt/glslangValidator",
				"--ext=.vert,.frag", "--ext", ".comp",
				"--jobs=4",
				"--wgsl",
				"--notify-url=http://localhost:3000/socket.io/",
				"--notify-namespace=/hot",
				"--notify-timeout=3s",
				"--healthcheck-port=8080",
				"--log-level=debug",
				"--log-format=json",
			},
			expectedConfig: &app.Config{
				ShaderDir:       "/src/shaders",
				OutputDir:       "/build/spv",
				Compiler:        "/opt/glslangValidator",
				Extensions:      []string{".vert", ".frag", ".comp"},
				Jobs:            4,
				WGSL:            true,
				NotifyURL:       "http://localhost:3000/socket.io/",
				NotifyNamespace: "/hot",
				NotifyTimeout:   3 * time.Second,
				HealthcheckPort: 8080,
				LogLevel:        "debug",
				LogFormat:       "json",
			},
		},
		{
			name: "Positional argument for path",
			args: []string{"assets/glsl"},
			expectedConfig: &app.Config{
				ShaderDir:     "assets/glsl",
				Compiler:      "glslangValidator",
				Jobs:          1,
				NotifyTimeout: 15 * time.Second,
				LogLevel:      "info",
				LogFormat:     "text",
			},
		},
		{
			name:       "Help flag triggers clean exit",
			args:       []string{"-h"},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				require.Contains(t, output, "Usage:")
				require.Contains(t, output, "-V <source> -o <name>.spv")
			},
		},
		{name: "Unknown flag", args: []string{"--nope"}, expectErr: true},
		{name: "Two positional paths", args: []string{"a", "b"}, expectErr: true},
		{name: "Invalid log level", args: []string{"--log-level=loud"}, expectErr: true},
		{name: "Invalid log format", args: []string{"--log-format=xml"}, expectErr: true},
		{name: "Negative jobs", args: []string{"--jobs=-1"}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := &bytes.Buffer{}
			cfg, shouldExit, err := Parse(tc.args, out, hcl.NewLoader())

			require.Equal(t, tc.expectExit, shouldExit)
			if tc.expectErr {
				var exitErr *ExitError
				require.True(t, errors.As(err, &exitErr))
				require.Equal(t, ExitUsage, exitErr.Code)
				return
			}
			require.NoError(t, err)
			if tc.checkOutput != nil {
				tc.checkOutput(t, out.String())
			}
			if tc.expectedConfig != nil {
				if diff := cmp.Diff(tc.expectedConfig, cfg); diff != "" {
					t.Errorf("Parse() config mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestParse_ConfigFileMergesUnderFlags(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "spvbatch.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
shader_dir = "from-file"
output_dir = "out-from-file"
jobs       = 6
log {
  level = "warn"
}
`), 0o600))

	cfg, _, err := Parse([]string{"-config", path, "-jobs", "2", "flag-dir"}, &bytes.Buffer{}, hcl.NewLoader())
	require.NoError(t, err)

	require.Equal(t, "flag-dir", cfg.ShaderDir)
	require.Equal(t, 2, cfg.Jobs)
	require.Equal(t, "out-from-file", cfg.OutputDir)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, path, cfg.ConfigPath)
}

func TestParse_BrokenConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "spvbatch.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`jobs = `), 0o600))

	_, _, err := Parse([]string{"-config", path}, &bytes.Buffer{}, hcl.NewLoader())
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, ExitUsage, exitErr.Code)
}

func TestAsExitError(t *testing.T) {
	t.Parallel()

	src := shader.Source{Path: "shaders/bad.frag", BaseName: "bad", Ext: ".frag", Stage: shader.Fragment}

	testCases := []struct {
		name string
		err  error
		code int
	}{
		{"compilation failed propagates status", fmt.Errorf("batch: %w", &compiler.CompilationFailedError{Source: src, Code: 2}), 2},
		{"tool not found", fmt.Errorf("batch: %w", &compiler.ToolNotFoundError{Tool: "glslangValidator", Err: errors.New("not in PATH")}), ExitToolNotFound},
		{"exit error passes through", &ExitError{Code: 9, Message: "x"}, 9},
		{"other errors", errors.New("disk full"), 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.code, AsExitError(tc.err).Code)
		})
	}
	require.Nil(t, AsExitError(nil))
}
