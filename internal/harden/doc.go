/*
Package harden locks down the built-in objects ("intrinsics") of a goja realm
so that code evaluated later cannot tamper with them.

# Overview

Hardening runs once per realm, after the realm is built and before any
untrusted script runs. It takes an intrinsics table (identifier → object) and
leaves every object reachable from it permanently immutable:

 1. Stage: the table entries are copied onto a throwaway, prototype-less
    carrier object that roots the traversal. The carrier is never frozen.
 2. Repair: accessors on the dangerous list (__proto__, legacy RegExp
    statics) are replaced by non-writable data properties holding a snapshot.
 3. Freeze: every reachable object gets all own properties locked and is then
    made non-extensible.

Both passes use the same Walker, which follows own property values (string
and symbol keys), accessor functions and prototype links, visits each object
once and terminates on cyclic graphs.

# Reflection

All inspection goes through the realm's own Reflect functions, captured when
the Hardener is created. Descriptors are read, never property values, so no
getter runs during a pass. Proxies still see their traps invoked.

# Errors

  - *RepairError: a dangerous accessor could not be converted. Collected on
    Report.RepairErr; the run continues.
  - *FreezeError: an object refused to be locked. Fatal.
  - *TraversalError: keys, descriptors or the prototype could not be read.
    Fatal.

# Usage

	vm := goja.New()
	table, err := harden.Collect(vm)
	if err != nil {
		return err
	}
	h, err := harden.New(vm, harden.WithLogger(logger))
	if err != nil {
		return err
	}
	report, err := h.Harden(table)

A frozen accessor pair cannot be replaced, but its getter may still hand out
fresh mutable objects. Only accessors on the repair list are converted.

A repaired __proto__ is a data property holding its holder's prototype, so
ObjectPrototype.__proto__ becomes null. Every ordinary object inherits that
value: ({}).__proto__ reads null even though Object.getPrototypeOf still
returns Object.prototype, and assigning __proto__ no longer changes a
prototype. Use Object.getPrototypeOf and Object.setPrototypeOf instead.
*/
package harden
