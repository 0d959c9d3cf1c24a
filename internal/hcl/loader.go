package hcl

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/spvbatch/internal/config"
	"github.com/vk/spvbatch/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// Environ supplies the `env` variable. Defaults to os.Environ.
	Environ func() []string
	// Getwd supplies the `cwd` variable. Defaults to os.Getwd.
	Getwd func() (string, error)
}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{Environ: os.Environ, Getwd: os.Getwd}
}

// Load parses and decodes the file at path. Unknown attributes and
// blocks are rejected.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	evalCtx, err := l.evalContext()
	if err != nil {
		return nil, err
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, evalCtx, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	model, err := translate(&root)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	logger.Debug("HCL loading complete.", "path", path)
	return model, nil
}

func (l *Loader) evalContext() (*hcl.EvalContext, error) {
	environ, getwd := l.Environ, l.Getwd
	if environ == nil {
		environ = os.Environ
	}
	if getwd == nil {
		getwd = os.Getwd
	}

	env := make(map[string]cty.Value)
	for _, kv := range environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		env[name] = cty.StringVal(value)
	}
	cwd, err := getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
			"cwd": cty.StringVal(cwd),
		},
	}, nil
}

func translate(root *fileRoot) (*config.Model, error) {
	for _, ext := range root.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return nil, fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if root.Jobs != nil && *root.Jobs < 0 {
		return nil, fmt.Errorf("jobs must not be negative, got %d", *root.Jobs)
	}

	m := &config.Model{
		ShaderDir:  root.ShaderDir,
		OutputDir:  root.OutputDir,
		Compiler:   root.Compiler,
		Extensions: root.Extensions,
		Jobs:       root.Jobs,
		WGSL:       root.WGSL,
	}
	if root.Log != nil {
		m.LogLevel = root.Log.Level
		m.LogFormat = root.Log.Format
	}
	if n := root.Notify; n != nil {
		notify := &config.Notify{URL: n.URL}
		if n.Namespace != nil {
			notify.Namespace = *n.Namespace
		}
		if n.InsecureSkipVerify != nil {
			notify.InsecureSkipVerify = *n.InsecureSkipVerify
		}
		if n.Timeout != nil {
			d, err := time.ParseDuration(*n.Timeout)
			if err != nil {
				return nil, fmt.Errorf("notify timeout: %w", err)
			}
			notify.Timeout = d
		}
		m.Notify = notify
	}
	return m, nil
}
