package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/harden/internal/harden"
	"github.com/GriffinCanCode/AgentOS/harden/internal/id"
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("sandbox is closed")

var _ Sandbox = (*Runtime)(nil)

// Runtime wraps a goja VM whose intrinsics are hardened before any script
// is allowed to run.
type Runtime struct {
	id       id.SandboxID
	vm       *goja.Runtime
	config   Config
	logger   *zap.Logger
	recorder Recorder
	report   *harden.Report
	mu       sync.RWMutex

	// Console output
	console   []LogEntry
	consoleMu sync.Mutex

	// Interrupt channel
	interrupt chan struct{}
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for the runtime and its hardening runs.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder sets the statistics sink.
func WithRecorder(rec Recorder) Option {
	return func(r *Runtime) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// New creates a new sandboxed runtime
func New(config Config, opts ...Option) (*Runtime, error) {
	r := &Runtime{
		id:        id.NewSandboxID(),
		config:    config,
		logger:    zap.NewNop(),
		recorder:  nopRecorder{},
		console:   []LogEntry{},
		interrupt: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(zap.String("sandbox_id", r.id.String()))

	if err := r.buildRealm(); err != nil {
		return nil, err
	}
	return r, nil
}

// ID returns the sandbox identifier
func (r *Runtime) ID() id.SandboxID {
	return r.id
}

// Report returns the report of the last hardening run, or nil when
// hardening is disabled.
func (r *Runtime) Report() *harden.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.report
}

// Execute runs JavaScript code with timeout and resource limits
func (r *Runtime) Execute(ctx context.Context, script string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return nil, ErrClosed
	}

	start := time.Now()
	result := &Result{
		Console: []LogEntry{},
	}

	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()

	vm := r.vm
	done := r.interrupt
	go func() {
		select {
		case <-timer.C:
			vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-done:
			return
		}
	}()

	r.consoleMu.Lock()
	r.console = []LogEntry{}
	r.consoleMu.Unlock()

	val, err := vm.RunString(script)

	// Stop the watcher and drop an interrupt that fired after the run ended
	close(r.interrupt)
	r.interrupt = make(chan struct{})
	vm.ClearInterrupt()

	result.Duration = time.Since(start)

	r.consoleMu.Lock()
	result.Console = append([]LogEntry{}, r.console...)
	r.consoleMu.Unlock()

	if err != nil {
		result.Error = err
		r.recorder.RecordExecution("error", result.Duration)
		r.logger.Debug("Script failed", zap.Error(err), zap.Duration("duration", result.Duration))
		return result, err
	}

	result.Value = exportValue(val)
	r.recorder.RecordExecution("success", result.Duration)
	return result, nil
}

// buildRealm creates a fresh VM, installs the host globals and hardens the
// intrinsics. Callers hold r.mu or own r exclusively.
func (r *Runtime) buildRealm() error {
	vm := goja.New()
	if r.config.MaxMemoryMB > 0 {
		vm.SetMaxCallStackSize(1024)
	}

	r.vm = vm
	r.report = nil
	r.setupGlobals()

	if !r.config.Harden {
		r.logger.Warn("Intrinsics hardening disabled")
		return nil
	}

	table, err := harden.Collect(vm)
	if err != nil {
		return fmt.Errorf("failed to collect intrinsics: %w", err)
	}

	h, err := harden.New(vm,
		harden.WithLogger(r.logger.Named("harden")),
		harden.WithRecorder(r.recorder),
		harden.WithExtraDangerous(r.config.ExtraDangerous...),
	)
	if err != nil {
		return fmt.Errorf("failed to prepare hardening: %w", err)
	}

	report, err := h.Harden(table)
	r.report = report
	if err != nil {
		return fmt.Errorf("failed to harden intrinsics: %w", err)
	}
	return nil
}

// setupGlobals removes host escape hatches and installs the console
func (r *Runtime) setupGlobals() {
	for _, name := range []string{"require", "process", "module", "exports"} {
		r.vm.Set(name, goja.Undefined())
	}

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		for _, level := range []string{"log", "warn", "error", "info"} {
			console.Set(level, r.makeConsoleFunc(level))
		}
		r.vm.Set("console", console)
	}

	// Timers are accepted and ignored
	noop := func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	}
	r.vm.Set("setTimeout", noop)
	r.vm.Set("setInterval", noop)
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

// exportValue converts goja value to Go value
func exportValue(val goja.Value) interface{} {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}

// Reset discards the realm and builds a freshly hardened one
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return ErrClosed
	}

	r.console = []LogEntry{}
	return r.buildRealm()
}

// Close releases resources
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.console = nil
	return nil
}
