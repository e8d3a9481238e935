package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/GriffinCanCode/AgentOS/harden/internal/harden"
	"github.com/GriffinCanCode/AgentOS/harden/internal/sandbox"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// RunOutput is what run prints.
type RunOutput struct {
	Scripts []RunResult `yaml:"scripts" json:"scripts"`
	Stats   RunStats    `yaml:"stats" json:"stats"`
}

// RunResult is the outcome of one script.
type RunResult struct {
	File      string         `yaml:"file" json:"file"`
	SandboxID string         `yaml:"sandbox_id" json:"sandbox_id"`
	Value     interface{}    `yaml:"value" json:"value"`
	Console   []ConsoleLine  `yaml:"console,omitempty" json:"console,omitempty"`
	Duration  string         `yaml:"duration" json:"duration"`
	Error     string         `yaml:"error,omitempty" json:"error,omitempty"`
	Hardening *harden.Report `yaml:"hardening,omitempty" json:"hardening,omitempty"`
}

// ConsoleLine is one captured console call.
type ConsoleLine struct {
	Level   string `yaml:"level" json:"level"`
	Message string `yaml:"message" json:"message"`
}

// RunStats mirrors the counters collected while the command ran.
type RunStats struct {
	HardenRuns     int64 `yaml:"harden_runs" json:"harden_runs"`
	NodesFrozen    int64 `yaml:"nodes_frozen" json:"nodes_frozen"`
	Executions     int64 `yaml:"executions" json:"executions"`
	ExecutionFails int64 `yaml:"execution_failures" json:"execution_failures"`
}

// NewRunCommand creates the run command.
func NewRunCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>...",
		Short: "Evaluate scripts in hardened sandboxes",
		Long: `Evaluate JavaScript files in sandboxes whose intrinsics were hardened
before any script was loaded. Files run concurrently on a pool of up to
SANDBOX_POOL_SIZE runtimes; each file gets a freshly hardened realm.
Prints the result value, console output and timing per file. Exits
non-zero when any script throws or times out.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.run(cmd.Context(), args)
			if out != nil {
				if werr := write(cmd.OutOrStdout(), a.opts.Output, out); werr != nil {
					return werr
				}
			}
			return err
		},
	}
	return cmd
}

func (a *app) run(ctx context.Context, paths []string) (*RunOutput, error) {
	sources := make([]string, len(paths))
	for i, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading script: %w", err)
		}
		sources[i] = string(src)
	}

	size := a.config.Sandbox.PoolSize
	if size <= 0 || size > len(paths) {
		size = len(paths)
	}
	pool, err := sandbox.NewPool(sandbox.FromConfig(a.config), size,
		sandbox.WithLogger(a.logger.Sandbox()),
		sandbox.WithRecorder(a.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sandbox pool: %w", err)
	}
	defer pool.Close()

	out := &RunOutput{Scripts: make([]RunResult, len(paths))}
	failures := make([]error, len(paths))

	// Script errors are reported per file; only pool errors stop the group.
	g, gctx := errgroup.WithContext(ctx)
	for i := range paths {
		i := i
		g.Go(func() error {
			rt, err := pool.Acquire(gctx)
			if err != nil {
				return err
			}
			defer pool.Release(rt)

			res, execErr := runScript(gctx, rt, sources[i])
			res.File = paths[i]
			out.Scripts[i] = res
			if execErr != nil {
				failures[i] = fmt.Errorf("%s: %w", paths[i], execErr)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("running scripts: %w", err)
	}

	snap := a.metrics.Snapshot()
	out.Stats = RunStats{
		HardenRuns:     snap.HardenRuns,
		NodesFrozen:    snap.NodesFrozen,
		Executions:     snap.Executions,
		ExecutionFails: snap.ExecutionFails,
	}

	if err := multierr.Combine(failures...); err != nil {
		return out, fmt.Errorf("script failed: %w", err)
	}
	return out, nil
}

func runScript(ctx context.Context, rt *sandbox.Runtime, src string) (RunResult, error) {
	result, err := rt.Execute(ctx, src)

	res := RunResult{
		SandboxID: rt.ID().String(),
		Hardening: rt.Report(),
	}
	if result != nil {
		res.Value = result.Value
		res.Duration = result.Duration.String()
		for _, entry := range result.Console {
			res.Console = append(res.Console, ConsoleLine{Level: entry.Level, Message: entry.Message})
		}
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res, err
}
