package types

import (
	"io/fs"
)

// FS is the filesystem surface the recipe and its template stores need.
// It is satisfied by the OS filesystem and by in-memory test doubles.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Chmod(name string, mode fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error

	// Other operations
	Remove(name string) error
}
