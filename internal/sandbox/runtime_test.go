package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRuntime(t *testing.T, config Config) *Runtime {
	t.Helper()
	runtime, err := New(config)
	require.NoError(t, err, "Failed to create runtime")
	t.Cleanup(func() { runtime.Close() })
	return runtime
}

func TestRuntimeExecution(t *testing.T) {
	runtime := newTestRuntime(t, DefaultConfig())

	tests := []struct {
		name    string
		script  string
		want    interface{}
		wantErr bool
	}{
		{
			name:   "simple return",
			script: "42",
			want:   int64(42),
		},
		{
			name:   "console log",
			script: "console.log('hello'); 'test'",
			want:   "test",
		},
		{
			name:   "math operations",
			script: "Math.sqrt(16)",
			want:   int64(4),
		},
		{
			name:   "string operations",
			script: "'hello'.toUpperCase()",
			want:   "HELLO",
		},
		{
			name:   "array methods",
			script: "[1, 2, 3].map(function (x) { return x * 2; }).join(',')",
			want:   "2,4,6",
		},
		{
			name:    "syntax error",
			script:  "function (",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := runtime.Execute(context.Background(), tt.script)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.EqualValues(t, tt.want, result.Value)
		})
	}
}

func TestRuntimeSecurity(t *testing.T) {
	runtime := newTestRuntime(t, DefaultConfig())

	dangerousScripts := []struct {
		name   string
		script string
	}{
		{
			name:   "require blocked",
			script: "require('fs')",
		},
		{
			name:   "process blocked",
			script: "process.exit(1)",
		},
		{
			name:   "module blocked",
			script: "module.exports = {}",
		},
	}

	for _, tt := range dangerousScripts {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := runtime.Execute(context.Background(), tt.script)

			// Should either error or return undefined
			if result != nil && result.Value != nil {
				t.Errorf("Dangerous script executed successfully: %v", result.Value)
			}
		})
	}
}

func TestIntrinsicsFrozen(t *testing.T) {
	runtime := newTestRuntime(t, DefaultConfig())

	result, err := runtime.Execute(context.Background(), `
		[Object, Object.prototype, Array.prototype, Function.prototype,
		 String.prototype, Promise, Math, JSON, Reflect].every(Object.isFrozen)
	`)
	require.NoError(t, err)
	assert.Equal(t, true, result.Value)

	report := runtime.Report()
	require.NotNil(t, report)
	assert.Greater(t, report.Frozen, 0)
	assert.Contains(t, report.Repaired, "ObjectPrototype.__proto__")
}

func TestPrototypePollutionBlocked(t *testing.T) {
	runtime := newTestRuntime(t, DefaultConfig())

	// Sloppy mode: writes to frozen objects are silently ignored
	result, err := runtime.Execute(context.Background(), `
		Array.prototype.polluted = 1;
		Object.prototype.polluted = 2;
		Math.max = function () { return 0; };
		[typeof [].polluted, typeof ({}).polluted, Math.max(1, 2)].join(',')
	`)
	require.NoError(t, err)
	assert.Equal(t, "undefined,undefined,2", result.Value)

	// Strict mode: the same write throws
	_, err = runtime.Execute(context.Background(), `'use strict'; Array.prototype.polluted = 1;`)
	assert.Error(t, err)

	// __proto__ is a frozen data property now, so assignment cannot rewire a prototype
	result, err = runtime.Execute(context.Background(), `
		var o = {};
		o.__proto__ = Array.prototype;
		Object.getPrototypeOf(o) === Object.prototype
	`)
	require.NoError(t, err)
	assert.Equal(t, true, result.Value)
}

func TestHardeningDisabled(t *testing.T) {
	config := DefaultConfig()
	config.Harden = false
	runtime := newTestRuntime(t, config)

	assert.Nil(t, runtime.Report())

	result, err := runtime.Execute(context.Background(), "Object.isFrozen(Object.prototype)")
	require.NoError(t, err)
	assert.Equal(t, false, result.Value)
}

func TestRuntimeTimeout(t *testing.T) {
	config := DefaultConfig()
	config.Timeout = 100 * time.Millisecond
	runtime := newTestRuntime(t, config)

	script := `
		let i = 0;
		while(true) {
			i++;
		}
	`

	result, err := runtime.Execute(context.Background(), script)

	if err == nil {
		t.Error("Expected timeout error, got nil")
	}

	if result != nil && result.Error == nil {
		t.Error("Expected error in result")
	}

	// The runtime stays usable after an interrupt
	result, err = runtime.Execute(context.Background(), "1 + 1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Value)
}

func TestRuntimeContextCancel(t *testing.T) {
	runtime := newTestRuntime(t, DefaultConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := runtime.Execute(ctx, "for (;;) {}")
	assert.Error(t, err)
}

func TestRuntimeConsoleCapture(t *testing.T) {
	runtime := newTestRuntime(t, DefaultConfig())

	script := `
		console.log('info message');
		console.warn('warning message');
		console.error('error message');
		'done'
	`

	result, err := runtime.Execute(context.Background(), script)
	require.NoError(t, err)

	require.Len(t, result.Console, 3)

	levels := []string{"log", "warn", "error"}
	for i, entry := range result.Console {
		assert.Equal(t, levels[i], entry.Level, "console entry %d", i)
	}
	assert.Equal(t, "info message", result.Console[0].Message)
}

func TestRuntimeReset(t *testing.T) {
	runtime := newTestRuntime(t, DefaultConfig())

	_, err := runtime.Execute(context.Background(), "var leaked = 'yes'")
	require.NoError(t, err)
	first := runtime.Report()

	require.NoError(t, runtime.Reset())

	result, err := runtime.Execute(context.Background(), "typeof leaked")
	require.NoError(t, err)
	assert.Equal(t, "undefined", result.Value)

	second := runtime.Report()
	require.NotNil(t, second)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRuntimeClosed(t *testing.T) {
	runtime, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, runtime.Close())

	_, err = runtime.Execute(context.Background(), "1")
	assert.ErrorIs(t, err, ErrClosed)

	assert.ErrorIs(t, runtime.Reset(), ErrClosed, "a closed runtime stays closed")
	_, err = runtime.Execute(context.Background(), "1")
	assert.ErrorIs(t, err, ErrClosed)
}
