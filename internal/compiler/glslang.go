package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/vk/spvbatch/internal/ctxlog"
	"github.com/vk/spvbatch/internal/shader"
)

// Glslang runs the reference GLSL compiler as a child process.
type Glslang struct {
	// Bin is the executable name or path. Defaults to DefaultTool.
	Bin string
	// OutDir is the working directory of every child process.
	OutDir string
}

// NewGlslang returns a Glslang that writes outputs into outDir.
func NewGlslang(bin, outDir string) *Glslang {
	if bin == "" {
		bin = DefaultTool
	}
	return &Glslang{Bin: bin, OutDir: outDir}
}

// Compile implements Compiler. It waits for the child to exit; there is
// no timeout beyond ctx.
func (g *Glslang) Compile(ctx context.Context, src shader.Source) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	bin, err := exec.LookPath(g.Bin)
	if err != nil {
		return nil, &ToolNotFoundError{Tool: g.Bin, Err: err}
	}
	// The child runs in OutDir, where a relative executable path would
	// no longer resolve.
	if !filepath.IsAbs(bin) {
		if bin, err = filepath.Abs(bin); err != nil {
			return nil, &ToolNotFoundError{Tool: g.Bin, Err: err}
		}
	}

	inv := NewInvocation(bin, src, g.OutDir)
	cmd := inv.Command(ctx)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	logger.Debug("Running shader compiler.", "cmd", cmd.String(), "dir", inv.Dir)
	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("compiling %s: %w", src.Path, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &CompilationFailedError{
				Source: src,
				Code:   exitErr.ExitCode(),
				Output: strings.TrimSpace(out.String()),
				Err:    err,
			}
		}
		return nil, fmt.Errorf("failed to run %v: %w", cmd.Args, err)
	}

	return &Result{Source: src, Output: inv.OutputPath(), Duration: elapsed}, nil
}
