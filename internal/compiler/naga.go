package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/spirv"

	"github.com/vk/spvbatch/internal/ctxlog"
	"github.com/vk/spvbatch/internal/shader"
)

// Naga compiles WGSL sources in process. Outputs follow the same naming
// rule as Glslang.
type Naga struct {
	OutDir  string
	Options naga.CompileOptions
}

// NewNaga returns a Naga targeting SPIR-V 1.3 with IR validation on.
func NewNaga(outDir string) *Naga {
	opts := naga.DefaultOptions()
	opts.SPIRVVersion = spirv.Version1_3
	return &Naga{OutDir: outDir, Options: opts}
}

// Compile implements Compiler.
func (n *Naga) Compile(ctx context.Context, src shader.Source) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("compiling %s: %w", src.Path, err)
	}

	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src.Path, err)
	}

	start := time.Now()
	binary, err := naga.CompileWithOptions(string(data), n.Options)
	if err != nil {
		return nil, &CompilationFailedError{Source: src, Code: 1, Output: err.Error(), Err: err}
	}

	out := src.Output()
	if n.OutDir != "" {
		out = filepath.Join(n.OutDir, out)
	}
	if err := os.WriteFile(out, binary, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", out, err)
	}
	ctxlog.FromContext(ctx).Debug("WGSL compiled in process.", "source", src.Path, "bytes", len(binary))

	return &Result{Source: src, Output: out, Duration: time.Since(start)}, nil
}
