package compiler

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/spvbatch/internal/shader"
)

// Compiler compiles one source to SPIR-V and blocks until it is done.
type Compiler interface {
	Compile(ctx context.Context, src shader.Source) (*Result, error)
}

// Result describes a successful compilation.
type Result struct {
	Source   shader.Source
	Output   string
	Duration time.Duration
}

// ByExtension dispatches each source to the compiler registered for its
// extension.
type ByExtension map[string]Compiler

// Compile implements Compiler.
func (m ByExtension) Compile(ctx context.Context, src shader.Source) (*Result, error) {
	c, ok := m[src.Ext]
	if !ok {
		return nil, fmt.Errorf("no compiler registered for %q files (%s)", src.Ext, src.Path)
	}
	return c.Compile(ctx, src)
}
