package sandbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	ErrPoolClosed = errors.New("sandbox pool is closed")
	ErrTimeout    = errors.New("sandbox acquisition timeout")
)

// acquireTimeout bounds how long Acquire waits for an idle runtime
const acquireTimeout = 5 * time.Second

// Pool manages a pool of reusable hardened runtimes
type Pool struct {
	config    Config
	opts      []Option
	recorder  Recorder
	sandboxes chan *Runtime
	size      int
	mu        sync.RWMutex
	closed    bool
}

// NewPool creates a pool of size runtimes. Runtimes are built and hardened
// in parallel; each owns its own VM.
func NewPool(config Config, size int, opts ...Option) (*Pool, error) {
	if size <= 0 {
		size = 4
	}

	probe := &Runtime{recorder: nopRecorder{}}
	for _, opt := range opts {
		opt(probe)
	}

	pool := &Pool{
		config:    config,
		opts:      opts,
		recorder:  probe.recorder,
		sandboxes: make(chan *Runtime, size),
		size:      size,
	}

	runtimes := make([]*Runtime, size)
	var g errgroup.Group
	for i := range runtimes {
		i := i
		g.Go(func() error {
			rt, err := New(config, opts...)
			if err != nil {
				return err
			}
			runtimes[i] = rt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, rt := range runtimes {
			if rt != nil {
				rt.Close()
			}
		}
		return nil, err
	}

	for _, rt := range runtimes {
		pool.sandboxes <- rt
	}
	pool.recorder.SetPoolAvailable(len(pool.sandboxes))

	return pool, nil
}

// Acquire gets a runtime from the pool with timeout
func (p *Pool) Acquire(ctx context.Context) (*Runtime, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	select {
	case sandbox := <-p.sandboxes:
		p.recorder.SetPoolAvailable(len(p.sandboxes))
		return sandbox, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(acquireTimeout):
		return nil, ErrTimeout
	}
}

// Release rebuilds the runtime's realm and returns it to the pool, so no
// state from one script reaches the next.
func (p *Pool) Release(sandbox *Runtime) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return sandbox.Close()
	}

	if err := sandbox.Reset(); err != nil {
		sandbox.Close()
		if replacement, newErr := New(p.config, p.opts...); newErr == nil {
			p.sandboxes <- replacement
			p.recorder.SetPoolAvailable(len(p.sandboxes))
		}
		return err
	}

	select {
	case p.sandboxes <- sandbox:
		p.recorder.SetPoolAvailable(len(p.sandboxes))
		return nil
	default:
		// Pool full, close sandbox
		return sandbox.Close()
	}
}

// Execute runs script on a pooled runtime
func (p *Pool) Execute(ctx context.Context, script string) (*Result, error) {
	sandbox, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(sandbox)

	return sandbox.Execute(ctx, script)
}

// Close closes pool and all runtimes
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	close(p.sandboxes)

	for sandbox := range p.sandboxes {
		sandbox.Close()
	}
	p.recorder.SetPoolAvailable(0)

	return nil
}

// Stats returns pool statistics
func (p *Pool) Stats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]interface{}{
		"size":      p.size,
		"available": len(p.sandboxes),
		"in_use":    p.size - len(p.sandboxes),
		"closed":    p.closed,
	}
}
