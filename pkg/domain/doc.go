// Package domain contains the shared types of the binding runtime: the
// five-namespace evaluation context, action definitions and their normalized
// result shape, and the error taxonomy of the expression sandbox.
//
// Everything that crosses the boundary between the expression engine, the
// action executor and the host is defined here and nowhere else.
package domain
