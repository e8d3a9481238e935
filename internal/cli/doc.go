// Package cli implements the realmctl commands.
//
//	realmctl inspect [-o yaml|json]      harden a fresh realm, print the report
//	realmctl run FILE... [-o yaml|json]  evaluate each FILE in a hardened sandbox
//
// Settings load from the environment through internal/config; --log-level
// and --dev override the logging part.
package cli
