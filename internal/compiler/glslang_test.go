package compiler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vk/spvbatch/internal/shader"
	"github.com/vk/spvbatch/internal/testutil"
)

func TestNewInvocation(t *testing.T) {
	t.Parallel()

	src := shader.Source{Path: "/abs/shaders/tri.vert", BaseName: "tri", Ext: ".vert", Stage: shader.Vertex}
	inv := NewInvocation("glslangValidator", src, "")

	want := Invocation{
		Executable: "glslangValidator",
		Args:       []string{"-V", "/abs/shaders/tri.vert", "-o", "tri.spv"},
	}
	if diff := cmp.Diff(want, inv); diff != "" {
		t.Errorf("NewInvocation() mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "tri.spv", inv.OutputPath())
}

func TestNewInvocation_RelativeSourceWithDir(t *testing.T) {
	t.Parallel()

	src, err := shader.NewSource(filepath.Join("shaders", "tri.frag"))
	require.NoError(t, err)

	inv := NewInvocation("glslangValidator", src, "/out")
	require.True(t, filepath.IsAbs(inv.Args[1]), "relative source must be made absolute")
	require.Equal(t, "tri.spv", inv.Args[3], "output stays relative to the working directory")
	require.Equal(t, filepath.Join("/out", "tri.spv"), inv.OutputPath())
}

func TestGlslang_Compile(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeCompiler(t, 2)
	shaderDir := testutil.WriteShaders(t, filepath.Join(t.TempDir(), "shaders"), map[string]string{
		"tri.vert": "#version 450\nvoid main() {}\n",
	})
	outDir := t.TempDir()

	src, err := shader.NewSource(filepath.Join(shaderDir, "tri.vert"))
	require.NoError(t, err)

	res, err := NewGlslang(fake.Bin, outDir).Compile(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(outDir, "tri.spv"), res.Output)

	data, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	require.Contains(t, string(data), "void main()")
}

func TestGlslang_CompilationFailed(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeCompiler(t, 2)
	shaderDir := testutil.WriteShaders(t, t.TempDir(), map[string]string{
		"bad.frag": testutil.SyntaxError,
	})
	outDir := t.TempDir()

	src, err := shader.NewSource(filepath.Join(shaderDir, "bad.frag"))
	require.NoError(t, err)

	_, err = NewGlslang(fake.Bin, outDir).Compile(context.Background(), src)
	require.ErrorIs(t, err, ErrCompilationFailed)

	var failed *CompilationFailedError
	require.True(t, errors.As(err, &failed))
	require.Equal(t, "bad.frag", filepath.Base(failed.Source.Path))
	require.Equal(t, 2, failed.ExitCode())
	require.Contains(t, failed.Output, "syntax error")
	require.NoFileExists(t, filepath.Join(outDir, "bad.spv"))
}

func TestGlslang_ToolNotFound(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "glslangValidator")
	src := shader.Source{Path: "a.vert", BaseName: "a", Ext: ".vert", Stage: shader.Vertex}

	_, err := NewGlslang(missing, "").Compile(context.Background(), src)
	require.ErrorIs(t, err, ErrToolNotFound)

	var notFound *ToolNotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, missing, notFound.Tool)
}

func TestCompilationFailedError_ExitCodeNeverZero(t *testing.T) {
	t.Parallel()
	require.Equal(t, 1, (&CompilationFailedError{Code: -1}).ExitCode())
	require.Equal(t, 3, (&CompilationFailedError{Code: 3}).ExitCode())
}

type stubCompiler struct{ calls []string }

func (s *stubCompiler) Compile(_ context.Context, src shader.Source) (*Result, error) {
	s.calls = append(s.calls, src.Path)
	return &Result{Source: src, Output: src.Output()}, nil
}

func TestByExtension(t *testing.T) {
	t.Parallel()

	glsl, wgsl := &stubCompiler{}, &stubCompiler{}
	c := ByExtension{".vert": glsl, ".frag": glsl, ".wgsl": wgsl}

	for _, p := range []string{"a.vert", "b.wgsl", "c.frag"} {
		src, err := shader.NewSource(p)
		require.NoError(t, err)
		_, err = c.Compile(context.Background(), src)
		require.NoError(t, err)
	}
	require.Equal(t, []string{"a.vert", "c.frag"}, glsl.calls)
	require.Equal(t, []string{"b.wgsl"}, wgsl.calls)

	_, err := ByExtension{}.Compile(context.Background(), shader.Source{Path: "x.vert", Ext: ".vert"})
	require.ErrorContains(t, err, "no compiler registered")
}

func TestGlslang_RelativeCompilerPathWithOutDir(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeCompiler(t, 2)
	wd, err := os.Getwd()
	require.NoError(t, err)
	relBin, err := filepath.Rel(wd, fake.Bin)
	require.NoError(t, err)
	require.False(t, filepath.IsAbs(relBin))

	shaderDir := testutil.WriteShaders(t, t.TempDir(), map[string]string{"tri.vert": "#version 450\n"})
	outDir := t.TempDir()

	src, err := shader.NewSource(filepath.Join(shaderDir, "tri.vert"))
	require.NoError(t, err)

	res, err := NewGlslang(relBin, outDir).Compile(context.Background(), src)
	require.NoError(t, err)
	require.FileExists(t, res.Output)
	require.Equal(t, filepath.Join(outDir, "tri.spv"), res.Output)
}

func TestInvocation_CommandBoundsWaitAfterCancel(t *testing.T) {
	t.Parallel()

	src := shader.Source{Path: "/abs/a.vert", BaseName: "a", Ext: ".vert", Stage: shader.Vertex}
	cmd := NewInvocation("glslangValidator", src, "/out").Command(context.Background())
	require.Equal(t, WaitDelay, cmd.WaitDelay)
	require.Equal(t, "/out", cmd.Dir)
}
