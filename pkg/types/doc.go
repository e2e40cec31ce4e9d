// Package types defines the small set of shared types used across binscript:
// the filesystem abstraction and the flat configuration Section.
package types
