package sandbox

import (
	"context"
	"time"

	"github.com/GriffinCanCode/AgentOS/harden/internal/config"
	"github.com/GriffinCanCode/AgentOS/harden/internal/harden"
)

// Config defines sandbox configuration
type Config struct {
	MaxMemoryMB    int64         // Heap size hint in MB
	Timeout        time.Duration // Execution timeout
	EnableConsole  bool          // Allow console.log/warn/error/info
	Harden         bool          // Harden realm intrinsics before any script runs
	ExtraDangerous []string      // Additional accessors replaced during repair
}

// Result holds execution result
type Result struct {
	Value    interface{}   // Return value
	Console  []LogEntry    // Console output
	Duration time.Duration // Execution time
	Error    error         // Execution error
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    // log, warn, error, info
	Message string    // Log message
	Time    time.Time // Timestamp
}

// Sandbox defines the JavaScript execution interface
type Sandbox interface {
	Execute(ctx context.Context, script string) (*Result, error)
	Reset() error
	Close() error
}

// Recorder receives hardening and execution statistics.
// *monitoring.Metrics implements it.
type Recorder interface {
	harden.Recorder
	RecordExecution(status string, duration time.Duration)
	SetPoolAvailable(count int)
}

type nopRecorder struct{}

func (nopRecorder) RecordHardenRun(string, time.Duration) {}
func (nopRecorder) RecordPass(string, int)                {}
func (nopRecorder) RecordRepairs(int, int)                {}
func (nopRecorder) RecordExecution(string, time.Duration) {}
func (nopRecorder) SetPoolAvailable(int)                  {}

// DefaultConfig returns the default sandbox configuration
func DefaultConfig() Config {
	return Config{
		MaxMemoryMB:   50,
		Timeout:       5 * time.Second,
		EnableConsole: true,
		Harden:        true,
	}
}

// FromConfig derives sandbox settings from the application configuration
func FromConfig(cfg *config.Config) Config {
	return Config{
		MaxMemoryMB:    cfg.Sandbox.MaxMemoryMB,
		Timeout:        cfg.Sandbox.Timeout,
		EnableConsole:  cfg.Sandbox.EnableConsole,
		Harden:         cfg.Harden.Enabled,
		ExtraDangerous: append([]string(nil), cfg.Harden.ExtraDangerous...),
	}
}
