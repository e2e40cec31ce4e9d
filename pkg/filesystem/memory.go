package filesystem

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/arthur-debert/binscript/pkg/types"
)

// MemoryFS is an in-memory types.FS. WriteFile applies the configured umask
// to new files, mirroring what the kernel does for the OS filesystem.
type MemoryFS struct {
	mu    sync.Mutex
	files map[string]*memFile
	dirs  map[string]fs.FileMode
	umask fs.FileMode
}

type memFile struct {
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

// NewMemory creates an empty in-memory filesystem with a 022 umask.
func NewMemory() *MemoryFS {
	return &MemoryFS{
		files: make(map[string]*memFile),
		dirs:  map[string]fs.FileMode{"/": fs.ModeDir | 0755},
		umask: 0022,
	}
}

var _ types.FS = (*MemoryFS)(nil)

// SetUmask changes the mask applied to newly created files.
func (m *MemoryFS) SetUmask(mask fs.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.umask = mask
}

// Paths returns every file path held, sorted.
func (m *MemoryFS) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func clean(name string) string {
	return path.Clean(filepath.ToSlash(name))
}

func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = clean(name)
	if f, ok := m.files[name]; ok {
		return &memInfo{name: path.Base(name), size: int64(len(f.data)), mode: f.mode, modTime: f.modTime}, nil
	}
	if mode, ok := m.dirs[name]; ok {
		return &memInfo{name: path.Base(name), mode: mode}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = clean(name)
	if _, ok := m.dirs[name]; ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	f, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(f.data))
	copy(out, f.data)
	return out, nil
}

func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = clean(name)
	if _, ok := m.dirs[path.Dir(name)]; !ok {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if _, ok := m.dirs[name]; ok {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	if f, ok := m.files[name]; ok {
		// existing files keep their mode, like O_TRUNC on a real file
		f.data = buf
		f.modTime = time.Now()
		return nil
	}
	m.files[name] = &memFile{data: buf, mode: perm.Perm() &^ m.umask, modTime: time.Now()}
	return nil
}

func (m *MemoryFS) Chmod(name string, mode fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = clean(name)
	if f, ok := m.files[name]; ok {
		f.mode = mode.Perm()
		return nil
	}
	if _, ok := m.dirs[name]; ok {
		m.dirs[name] = fs.ModeDir | mode.Perm()
		return nil
	}
	return &fs.PathError{Op: "chmod", Path: name, Err: fs.ErrNotExist}
}

func (m *MemoryFS) MkdirAll(p string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	for cur := p; ; cur = path.Dir(cur) {
		if _, ok := m.files[cur]; ok {
			return &fs.PathError{Op: "mkdir", Path: cur, Err: fs.ErrExist}
		}
		if _, ok := m.dirs[cur]; !ok {
			m.dirs[cur] = fs.ModeDir | perm.Perm()
		}
		if cur == "/" || cur == "." {
			break
		}
	}
	return nil
}

func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = clean(name)
	if _, ok := m.files[name]; ok {
		delete(m.files, name)
		return nil
	}
	return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
}

type memInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (i *memInfo) Name() string       { return i.name }
func (i *memInfo) Size() int64        { return i.size }
func (i *memInfo) Mode() fs.FileMode  { return i.mode }
func (i *memInfo) ModTime() time.Time { return i.modTime }
func (i *memInfo) IsDir() bool        { return i.mode.IsDir() }
func (i *memInfo) Sys() interface{}   { return nil }
