package compiler

import (
	"errors"
	"fmt"

	"github.com/vk/spvbatch/internal/shader"
)

var (
	// ErrToolNotFound matches any *ToolNotFoundError.
	ErrToolNotFound = errors.New("compiler not found")
	// ErrCompilationFailed matches any *CompilationFailedError.
	ErrCompilationFailed = errors.New("compilation failed")
)

// ToolNotFoundError reports that the compiler executable could not be
// resolved on the search path.
type ToolNotFoundError struct {
	Tool string
	Err  error
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("shader compiler %q not found: %v", e.Tool, e.Err)
}

func (e *ToolNotFoundError) Unwrap() error { return e.Err }

func (e *ToolNotFoundError) Is(target error) bool { return target == ErrToolNotFound }

// CompilationFailedError reports a non-zero exit of the compiler for one
// source file. Output holds whatever the compiler printed.
type CompilationFailedError struct {
	Source shader.Source
	Code   int
	Output string
	Err    error
}

func (e *CompilationFailedError) Error() string {
	msg := fmt.Sprintf("failed to compile %s (exit status %d)", e.Source.Path, e.Code)
	if e.Output != "" {
		msg += ":\n" + e.Output
	}
	return msg
}

func (e *CompilationFailedError) Unwrap() error { return e.Err }

func (e *CompilationFailedError) Is(target error) bool { return target == ErrCompilationFailed }

// ExitCode is the status the process should exit with. It is never 0.
func (e *CompilationFailedError) ExitCode() int {
	if e.Code <= 0 {
		return 1
	}
	return e.Code
}
