package compiler

import (
	"context"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/vk/spvbatch/internal/shader"
)

// DefaultTool is the compiler executable looked up on PATH.
const DefaultTool = "glslangValidator"

// WaitDelay bounds how long a cancelled invocation may keep its output
// pipes open, e.g. through a grandchild process, before Run gives up.
const WaitDelay = 5 * time.Second

// Invocation is one run of the external compiler for one source.
type Invocation struct {
	Executable string
	Args       []string
	// Dir is the child's working directory, where the relative output is
	// written. Empty means the current working directory.
	Dir string
}

// NewInvocation builds `<tool> -V <source> -o <base>.spv`. The output
// path is always relative to dir. A relative source path is made
// absolute when dir is set so the child can still open it.
func NewInvocation(tool string, src shader.Source, dir string) Invocation {
	path := src.Path
	if dir != "" && !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return Invocation{
		Executable: tool,
		Args:       []string{"-V", path, "-o", src.Output()},
		Dir:        dir,
	}
}

// Command returns the ready-to-run process for the invocation.
func (inv Invocation) Command(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, inv.Executable, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.WaitDelay = WaitDelay
	return cmd
}

// OutputPath is where the compiled binary lands, as seen from the
// calling process.
func (inv Invocation) OutputPath() string {
	out := inv.Args[len(inv.Args)-1]
	if inv.Dir == "" {
		return out
	}
	return filepath.Join(inv.Dir, out)
}
