// Package testutil drives the slots collections and the reference model with
// the same deterministic operation stream and compares what callers observe.
package testutil
