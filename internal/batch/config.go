package batch

import (
	"errors"

	"github.com/vk/spvbatch/internal/compiler"
	"github.com/vk/spvbatch/internal/shader"
)

// Config parameterises one CompileAll run.
type Config struct {
	// ShaderDir is searched (non-recursively) for sources.
	ShaderDir string
	// Extensions selects and orders source groups. Defaults to
	// shader.DefaultExtensions.
	Extensions []string
	// Compiler runs one source. Required.
	Compiler compiler.Compiler
	// Jobs is the number of concurrent invocations. Values below 2 mean
	// strictly sequential.
	Jobs int
	// Observers are notified about every source.
	Observers []Observer
}

func (c *Config) validate() error {
	if c.ShaderDir == "" {
		return errors.New("batch: ShaderDir must not be empty")
	}
	if c.Compiler == nil {
		return errors.New("batch: Compiler must not be nil")
	}
	if len(c.Extensions) == 0 {
		c.Extensions = shader.DefaultExtensions
	}
	return nil
}
