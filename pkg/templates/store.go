package templates

import (
	"embed"
	stderrors "errors"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/binscript/pkg/errors"
	"github.com/arthur-debert/binscript/pkg/types"
)

// BundledPrefix is the resource directory bundled templates live under.
const BundledPrefix = "templates"

//go:embed templates
var bundled embed.FS

// Bundled returns the template resources compiled into the binary.
func Bundled() fs.FS {
	return bundled
}

// Store resolves a template name to its raw text. Implementations return an
// error with code errors.ErrTemplateNotFound when the name is unknown.
type Store interface {
	Resolve(name string) (string, error)
}

// NotFound builds the error stores return for an unknown template.
func NotFound(name string) error {
	return errors.Newf(errors.ErrTemplateNotFound, "template %s does not exist", name).
		WithDetail("template", name)
}

// IsNotFound reports whether err means the template could not be found.
func IsNotFound(err error) bool {
	return errors.IsErrorCode(err, errors.ErrTemplateNotFound)
}

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(name string) (string, error)

func (f StoreFunc) Resolve(name string) (string, error) {
	return f(name)
}

// BundledStore resolves names against templates/<name> in a resource set.
type BundledStore struct {
	resources fs.FS
}

// NewBundledStore creates a store over resources. A nil resource set
// resolves nothing.
func NewBundledStore(resources fs.FS) *BundledStore {
	return &BundledStore{resources: resources}
}

func (s *BundledStore) Resolve(name string) (string, error) {
	if s.resources == nil {
		return "", NotFound(name)
	}
	p := path.Join(BundledPrefix, filepath.ToSlash(name))
	if !fs.ValidPath(p) || !strings.HasPrefix(p, BundledPrefix+"/") {
		return "", NotFound(name)
	}
	data, err := fs.ReadFile(s.resources, p)
	if err != nil {
		// anything unreadable inside the resource set counts as absent
		return "", NotFound(name)
	}
	return string(data), nil
}

// DirStore resolves names against files in a directory.
type DirStore struct {
	fs  types.FS
	dir string
}

// NewDirStore creates a store reading <dir>/<name> through fsys.
func NewDirStore(fsys types.FS, dir string) *DirStore {
	return &DirStore{fs: fsys, dir: dir}
}

func (s *DirStore) Resolve(name string) (string, error) {
	p := filepath.Join(s.dir, name)
	info, err := s.fs.Stat(p)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", NotFound(name)
		}
		return "", err
	}
	if info.IsDir() {
		return "", NotFound(name)
	}
	data, err := s.fs.ReadFile(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Chain resolves a name against each store in order and returns the first
// hit. Errors other than "not found" stop the search.
type Chain []Store

func (c Chain) Resolve(name string) (string, error) {
	for _, s := range c {
		text, err := s.Resolve(name)
		if err == nil {
			return text, nil
		}
		if !IsNotFound(err) {
			return "", err
		}
	}
	return "", NotFound(name)
}

// List returns the names of the templates in a bundled resource set.
func List(resources fs.FS) ([]string, error) {
	var names []string
	err := fs.WalkDir(resources, BundledPrefix, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel := p[len(BundledPrefix)+1:]
		names = append(names, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
