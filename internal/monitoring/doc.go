/*
Package monitoring provides Prometheus metrics for hardening runs and
sandboxed script execution.

# Metrics

  - harden_runs_total{status}, harden_run_duration_seconds
  - harden_pass_nodes_total{pass}
  - harden_properties_repaired_total, harden_repair_failures_total
  - sandbox_executions_total{status}, sandbox_execution_duration_seconds
  - sandbox_pool_available

# Usage

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	h, err := harden.New(vm, harden.WithRecorder(metrics))

*Metrics satisfies harden.Recorder and sandbox.Recorder.
*/
package monitoring
