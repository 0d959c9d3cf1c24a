package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vk/spvbatch/internal/compiler"
	"github.com/vk/spvbatch/internal/config"
	"github.com/vk/spvbatch/internal/shader"
)

// Defaults applied by NewConfig.
const (
	DefaultShaderDir = "shaders"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ShaderDir  string   // searched for sources, non-recursively
	OutputDir  string   // where .spv files land; empty is the working directory
	Compiler   string   // glslangValidator executable
	Extensions []string // source groups in batch order
	Jobs       int
	WGSL       bool

	ConfigPath string

	NotifyURL       string
	NotifyNamespace string
	NotifyInsecure  bool
	NotifyTimeout   time.Duration

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig fills in defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ShaderDir == "" {
		cfg.ShaderDir = DefaultShaderDir
	}
	if cfg.Compiler == "" {
		cfg.Compiler = compiler.DefaultTool
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if cfg.Jobs < 0 {
		return nil, errors.New("jobs must not be negative")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck-port %d", cfg.HealthcheckPort)
	}
	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return nil, fmt.Errorf("extension %q must start with a dot", ext)
		}
		if _, ok := shader.StageFor(ext); !ok {
			return nil, fmt.Errorf("unsupported shader extension %q", ext)
		}
	}

	return &cfg, nil
}

// ApplyFile copies values from a loaded configuration file into cfg.
// isSet reports whether the named command-line flag was given explicitly;
// such values are never overridden by the file.
func (cfg *Config) ApplyFile(m *config.Model, isSet func(flag string) bool) {
	setString := func(flag string, dst *string, src *string) {
		if src != nil && !isSet(flag) {
			*dst = *src
		}
	}
	setString("shaders", &cfg.ShaderDir, m.ShaderDir)
	setString("out", &cfg.OutputDir, m.OutputDir)
	setString("compiler", &cfg.Compiler, m.Compiler)
	setString("log-level", &cfg.LogLevel, m.LogLevel)
	setString("log-format", &cfg.LogFormat, m.LogFormat)

	if m.Extensions != nil && !isSet("ext") {
		cfg.Extensions = m.Extensions
	}
	if m.Jobs != nil && !isSet("jobs") {
		cfg.Jobs = *m.Jobs
	}
	if m.WGSL != nil && !isSet("wgsl") {
		cfg.WGSL = *m.WGSL
	}
	if n := m.Notify; n != nil {
		if !isSet("notify-url") {
			cfg.NotifyURL = n.URL
		}
		if n.Namespace != "" && !isSet("notify-namespace") {
			cfg.NotifyNamespace = n.Namespace
		}
		if n.Timeout > 0 && !isSet("notify-timeout") {
			cfg.NotifyTimeout = n.Timeout
		}
		if n.InsecureSkipVerify {
			cfg.NotifyInsecure = true
		}
	}
}
