// Package ports defines the driven-side interfaces of the runtime: the
// key-value store backing the localStorage action and the Host capability
// set the executor uses to reach the render layer.
//
// Adapters live under pkg/adapters; reusable contract suites for these
// interfaces live under pkg/ports/tests.
package ports
