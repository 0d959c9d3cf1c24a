package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/vk/spvbatch/internal/app"
	"github.com/vk/spvbatch/internal/compiler"
	"github.com/vk/spvbatch/internal/config"
)

// Exit codes not propagated from the compiler itself.
const (
	ExitUsage        = 2
	ExitToolNotFound = 127
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// listFlag collects a comma separated or repeated flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// When -config is given the file is read with loader; explicit flags win
// over file values.
func Parse(args []string, output io.Writer, loader config.Loader) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("spvbatch", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
spvbatch - compile GLSL shaders to SPIR-V with glslangValidator.

Every .vert and then every .frag file directly inside SHADER_DIR is compiled
with '<compiler> -V <source> -o <name>.spv'. Outputs go to the working
directory (or -out). The first failure stops the batch and its exit status
becomes the exit status of spvbatch.

Usage:
  spvbatch [options] [SHADER_DIR]

Arguments:
  SHADER_DIR
    Directory holding the shader sources. Defaults to ./shaders.

Options:
`)
		flagSet.PrintDefaults()
	}

	var exts listFlag
	shadersFlag := flagSet.String("shaders", "", "Directory holding the shader sources (default \"shaders\").")
	sFlag := flagSet.String("s", "", "Directory holding the shader sources (shorthand).")
	outFlag := flagSet.String("out", "", "Directory the .spv files are written to. Defaults to the working directory.")
	compilerFlag := flagSet.String("compiler", compiler.DefaultTool, "Shader compiler executable, looked up on PATH.")
	flagSet.Var(&exts, "ext", "Source extensions in batch order, e.g. '.vert,.frag,.comp'.")
	jobsFlag := flagSet.Int("jobs", 1, "Number of concurrent compiler invocations.")
	wgslFlag := flagSet.Bool("wgsl", false, "Also compile .wgsl sources in process.")
	configFlag := flagSet.String("config", "", "Path to an HCL configuration file.")
	notifyFlag := flagSet.String("notify-url", "", "socket.io server to publish compile events to.")
	notifyNSFlag := flagSet.String("notify-namespace", "", "socket.io namespace for -notify-url.")
	notifyTimeoutFlag := flagSet.Duration("notify-timeout", 15*time.Second, "Connect timeout for -notify-url.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", app.DefaultLogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", app.DefaultLogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("expected at most one SHADER_DIR, got %d", flagSet.NArg())}
	}
	slog.Debug("Arguments parsed successfully.")

	explicit := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	path := ""
	if *shadersFlag != "" {
		path = *shadersFlag
	} else if *sFlag != "" {
		path = *sFlag
		explicit["shaders"] = true
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
		explicit["shaders"] = true
	}
	slog.Debug("Shader path determined.", "path", path)

	cfg := app.Config{
		ShaderDir:       path,
		OutputDir:       *outFlag,
		Compiler:        *compilerFlag,
		Extensions:      exts,
		Jobs:            *jobsFlag,
		WGSL:            *wgslFlag,
		ConfigPath:      *configFlag,
		NotifyURL:       *notifyFlag,
		NotifyNamespace: *notifyNSFlag,
		NotifyTimeout:   *notifyTimeoutFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       *logFormatFlag,
		LogLevel:        *logLevelFlag,
	}

	if cfg.ConfigPath != "" {
		if loader == nil {
			return nil, false, &ExitError{Code: ExitUsage, Message: "-config given but no configuration loader is available"}
		}
		model, err := loader.Load(context.Background(), cfg.ConfigPath)
		if err != nil {
			return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
		}
		cfg.ApplyFile(model, func(name string) bool { return explicit[name] })
		slog.Debug("Configuration file applied.", "path", cfg.ConfigPath)
	}

	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", validated)
	return validated, false, nil
}

// AsExitError maps an error returned by the application to the exit code
// the process should terminate with. A failed compiler invocation
// propagates its own exit status.
func AsExitError(err error) *ExitError {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	var failed *compiler.CompilationFailedError
	if errors.As(err, &failed) {
		return &ExitError{Code: failed.ExitCode(), Message: err.Error()}
	}
	if errors.Is(err, compiler.ErrToolNotFound) {
		return &ExitError{Code: ExitToolNotFound, Message: err.Error()}
	}
	return &ExitError{Code: 1, Message: err.Error()}
}
