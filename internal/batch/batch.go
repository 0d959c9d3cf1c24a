package batch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vk/spvbatch/internal/compiler"
	"github.com/vk/spvbatch/internal/ctxlog"
	"github.com/vk/spvbatch/internal/shader"
)

// Report summarises a run. On failure Results holds only the sources
// that finished before the batch was aborted.
type Report struct {
	Sources    []shader.Source
	Results    []*compiler.Result
	Collisions map[string][]shader.Source
}

// CompileAll compiles every matching source in cfg.ShaderDir. A directory
// without matching files is a successful, empty run.
func CompileAll(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Batch compile started.", "shader_dir", cfg.ShaderDir, "extensions", cfg.Extensions, "jobs", cfg.Jobs)

	sources, err := shader.Discover(cfg.ShaderDir, cfg.Extensions...)
	if err != nil {
		return nil, err
	}
	report := &Report{Sources: sources, Collisions: shader.Collisions(sources)}
	for out, group := range report.Collisions {
		paths := make([]string, len(group))
		for i, s := range group {
			paths[i] = s.Path
		}
		logger.Warn("Sources share an output name; the last one compiled overwrites the others.",
			"output", out, "sources", strings.Join(paths, ", "))
	}

	if len(sources) == 0 {
		logger.Warn("No shader sources found.", "shader_dir", cfg.ShaderDir)
		return report, nil
	}
	logger.Info("Compiling shaders.", "count", len(sources), "shader_dir", cfg.ShaderDir)

	obs := append(observers{logObserver{}}, cfg.Observers...)
	if cfg.Jobs > 1 {
		err = runPool(ctx, cfg.Compiler, obs, sources, cfg.Jobs, report)
	} else {
		err = runSequential(ctx, cfg.Compiler, obs, sources, report)
	}
	if err != nil {
		return report, err
	}

	logger.Info("Batch compile finished.", "compiled", len(report.Results))
	return report, nil
}

func runSequential(ctx context.Context, c compiler.Compiler, obs Observer, sources []shader.Source, report *Report) error {
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("batch aborted before %s: %w", src.Path, err)
		}
		res, err := compileOne(ctx, c, obs, src)
		if err != nil {
			return err
		}
		report.Results = append(report.Results, res)
	}
	return nil
}

func compileOne(ctx context.Context, c compiler.Compiler, obs Observer, src shader.Source) (*compiler.Result, error) {
	obs.Started(ctx, src)
	res, err := c.Compile(ctx, src)
	if err != nil {
		obs.Failed(ctx, src, err)
		return nil, err
	}
	obs.Compiled(ctx, res)
	return res, nil
}

type job struct {
	index int
	src   shader.Source
}

// runPool compiles with up to n concurrent invocations. The first error
// cancels the shared context, which stops dispatch and kills running
// siblings.
func runPool(ctx context.Context, c compiler.Compiler, obs Observer, sources []shader.Source, n int, report *Report) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		once     sync.Once
		firstErr error
	)
	done := make(map[int]*compiler.Result)
	jobs := make(chan job)

	if n > len(sources) {
		n = len(sources)
	}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			wctx := ctxlog.With(ctx, "workerID", workerID)
			for j := range jobs {
				if ctx.Err() != nil {
					continue
				}
				res, err := compileOne(wctx, c, obs, j.src)
				if err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				mu.Lock()
				done[j.index] = res
				mu.Unlock()
			}
		}(i)
	}

dispatch:
	for i, src := range sources {
		select {
		case jobs <- job{index: i, src: src}:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	indexes := make([]int, 0, len(done))
	for i := range done {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	for _, i := range indexes {
		report.Results = append(report.Results, done[i])
	}

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
