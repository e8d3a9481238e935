// Package config provides 12-factor configuration for the hardened sandbox.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override a few values for development.
//
// Configuration Sections:
//   - Logging: Log level and output format
//   - Sandbox: Script timeout, pool size, memory hint, console capture
//   - Harden: Whether intrinsics are hardened, extra accessors to repair
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	pool, err := sandbox.NewPool(sandbox.FromConfig(cfg), cfg.Sandbox.PoolSize)
//
// Environment Variables:
//   - LOG_LEVEL, LOG_DEV
//   - SANDBOX_TIMEOUT, SANDBOX_POOL_SIZE, SANDBOX_MAX_MEMORY_MB, SANDBOX_CONSOLE
//   - HARDEN_ENABLED, HARDEN_EXTRA_DANGEROUS (comma separated)
package config
