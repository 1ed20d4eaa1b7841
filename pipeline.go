package genstage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// PipelineOption configures a Pipeline created by [NewPipeline].
type PipelineOption func(*Pipeline)

// WithLogger sets the logger the pipeline and its stages log through.
// The package default logger is used otherwise.
func WithLogger(log Logger) PipelineOption {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// Pipeline supervises a fixed, linear chain of stages. Stages are created
// individually, wired with [Subscribe], added with [Pipeline.Add] and run
// together with [Pipeline.Run].
type Pipeline struct {
	log    Logger
	stages []Stage

	mu      sync.Mutex
	started bool
}

// NewPipeline creates an empty pipeline supervisor.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{log: defaultLogger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add registers stages with the pipeline. Adding after Run has been called
// has no effect on the running pipeline.
func (p *Pipeline) Add(stages ...Stage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stages = append(p.stages, stages...)
}

// Run starts one goroutine per stage and blocks while the pipeline runs.
// It returns nil when ctx is cancelled, which is the shutdown hook: every
// stage loop observes the cancellation at its next blocking point and exits.
// If any stage fails, the remaining stages are cancelled and Run returns the
// failing stage's error wrapped with its name.
//
// Run may be called once; subsequent calls return ErrAlreadyStarted.
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.started = true
	stages := make([]Stage, len(p.stages))
	copy(stages, p.stages)
	p.mu.Unlock()

	if len(stages) == 0 {
		return errors.New("genstage: pipeline has no stages")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(stages))
	var wg sync.WaitGroup
	for _, stage := range stages {
		wg.Add(1)
		go func(stage Stage) {
			defer wg.Done()
			p.log.Debug("GENSTAGE: Stage started", "stage", stage.Name())
			if err := stage.run(ctx, p.log); err != nil {
				p.log.Error("GENSTAGE: Stage failed", "stage", stage.Name(), "error", err)
				errCh <- fmt.Errorf("genstage: stage %q: %w", stage.Name(), err)
				cancel()
				return
			}
			p.log.Debug("GENSTAGE: Stage stopped", "stage", stage.Name())
		}(stage)
	}

	wg.Wait()
	close(errCh)
	return <-errCh
}
