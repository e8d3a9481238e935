// Command realmctl hardens goja realms and runs scripts inside them.
//
// Usage:
//
//	realmctl inspect --output json
//	realmctl run script.js
//
// Configuration:
//   - Environment variables (LOG_*, SANDBOX_*, HARDEN_*)
//   - CLI flags (override env vars)
package main
