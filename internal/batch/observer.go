package batch

import (
	"context"

	"github.com/vk/spvbatch/internal/compiler"
	"github.com/vk/spvbatch/internal/ctxlog"
	"github.com/vk/spvbatch/internal/shader"
)

// Observer is told about each source as the batch progresses. Calls for
// one source are ordered; with Jobs > 1 calls for different sources may
// interleave and come from different goroutines.
type Observer interface {
	Started(ctx context.Context, src shader.Source)
	Compiled(ctx context.Context, res *compiler.Result)
	Failed(ctx context.Context, src shader.Source, err error)
}

// observers fans a single event out to every Observer.
type observers []Observer

func (o observers) Started(ctx context.Context, src shader.Source) {
	for _, ob := range o {
		ob.Started(ctx, src)
	}
}

func (o observers) Compiled(ctx context.Context, res *compiler.Result) {
	for _, ob := range o {
		ob.Compiled(ctx, res)
	}
}

func (o observers) Failed(ctx context.Context, src shader.Source, err error) {
	for _, ob := range o {
		ob.Failed(ctx, src, err)
	}
}

// logObserver writes progress to the context logger.
type logObserver struct{}

func (logObserver) Started(ctx context.Context, src shader.Source) {
	ctxlog.FromContext(ctx).Debug("Compiling shader.", "source", src.Path, "stage", src.Stage.String())
}

func (logObserver) Compiled(ctx context.Context, res *compiler.Result) {
	ctxlog.FromContext(ctx).Info("Shader compiled.", "source", res.Source.Path, "output", res.Output, "duration", res.Duration)
}

func (logObserver) Failed(ctx context.Context, src shader.Source, err error) {
	ctxlog.FromContext(ctx).Error("Shader compilation failed.", "source", src.Path, "error", err)
}
