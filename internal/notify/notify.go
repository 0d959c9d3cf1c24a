// Package notify publishes batch progress to a socket.io server, so a
// running renderer can hot-reload shaders as soon as they are rebuilt.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/spvbatch/internal/batch"
	"github.com/vk/spvbatch/internal/compiler"
	"github.com/vk/spvbatch/internal/ctxlog"
	"github.com/vk/spvbatch/internal/shader"
)

// Event names emitted by the Publisher.
const (
	EventStarted  = "shader:started"
	EventCompiled = "shader:compiled"
	EventFailed   = "shader:failed"
	EventDone     = "batch:done"
)

// Options configures the connection.
type Options struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	// ConnectTimeout bounds the initial handshake. Defaults to 15s.
	ConnectTimeout time.Duration
}

// Publisher emits one event per batch.Observer call.
type Publisher struct {
	emit  func(event string, payload map[string]any)
	close func()
}

var _ batch.Observer = (*Publisher)(nil)

// Dial connects to the server and waits for the handshake.
func Dial(ctx context.Context, opts Options) (*Publisher, error) {
	logger := ctxlog.FromContext(ctx).With("notify_url", opts.URL)

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse notify URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("notify URL %q must be absolute", opts.URL)
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "/"
	}
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(namespace, sockOpts)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	logger.Debug("Connecting to notify server...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
	logger.Info("Connected to notify server", "sid", io.Id())

	return &Publisher{
		emit: func(event string, payload map[string]any) {
			io.Emit(event, payload)
		},
		close: func() { io.Disconnect() },
	}, nil
}

// Started implements batch.Observer.
func (p *Publisher) Started(_ context.Context, src shader.Source) {
	p.emit(EventStarted, sourcePayload(src))
}

// Compiled implements batch.Observer.
func (p *Publisher) Compiled(_ context.Context, res *compiler.Result) {
	payload := sourcePayload(res.Source)
	payload["output"] = res.Output
	if abs, err := filepath.Abs(res.Output); err == nil {
		payload["output_abs"] = abs
	}
	payload["duration_ms"] = res.Duration.Milliseconds()
	p.emit(EventCompiled, payload)
}

// Failed implements batch.Observer.
func (p *Publisher) Failed(_ context.Context, src shader.Source, err error) {
	payload := sourcePayload(src)
	payload["error"] = err.Error()
	var failed *compiler.CompilationFailedError
	if errors.As(err, &failed) {
		payload["exit_code"] = failed.ExitCode()
		payload["log"] = failed.Output
	}
	p.emit(EventFailed, payload)
}

// Done reports the outcome of the whole batch.
func (p *Publisher) Done(report *batch.Report, err error) {
	payload := map[string]any{"ok": err == nil}
	if report != nil {
		payload["sources"] = len(report.Sources)
		payload["compiled"] = len(report.Results)
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	p.emit(EventDone, payload)
}

// Close disconnects from the server.
func (p *Publisher) Close() {
	if p.close != nil {
		p.close()
	}
}

func sourcePayload(src shader.Source) map[string]any {
	return map[string]any{
		"source": src.Path,
		"name":   src.BaseName,
		"stage":  src.Stage.String(),
	}
}
