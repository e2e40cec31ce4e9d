// Package filesystem provides filesystem implementations for binscript.
//
// This package contains implementations of the types.FS interface,
// including the standard OS filesystem and an in-memory filesystem for tests.
package filesystem
