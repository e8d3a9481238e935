/*
Package sandbox runs untrusted JavaScript in goja runtimes whose built-in
objects have been hardened.

# Overview

Each Runtime owns one goja VM. Building it:

 1. Creates the VM and removes host escape hatches (require, process,
    module, exports)
 2. Installs the captured console and no-op timers
 3. Collects the realm intrinsics and hardens them (repair, then deep
    freeze) before any script is evaluated

After step 3 every built-in prototype and constructor is frozen, so a
script cannot pollute Object.prototype or Array.prototype for the next
script, and the __proto__ accessor no longer rewires prototypes.

# Limits

  - Execution timeout via VM interrupt, also on context cancellation
  - Call stack bound
  - A failed hardening run fails New: a half-frozen realm is never handed out

# Pooling

Pool keeps hardened runtimes ready. Release rebuilds the realm of a
returned runtime so nothing a script did survives into the next one.

	pool, err := sandbox.NewPool(sandbox.DefaultConfig(), 4,
		sandbox.WithLogger(logger), sandbox.WithRecorder(metrics))
	if err != nil {
		return err
	}
	defer pool.Close()

	result, err := pool.Execute(ctx, "[1, 2, 3].map(x => x * 2)")
*/
package sandbox
