package irload

import (
	"fmt"
	"os"
	"path/filepath"
)

// Locator resolves a resource name to a readable file path.
type Locator interface {
	Locate(name string) (string, error)
}

// DirLocator resolves names relative to Dir. Absolute names are used as-is.
type DirLocator struct {
	Dir string
}

// Locate returns the path of name, or an error wrapping ErrNotFound.
func (l DirLocator) Locate(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrNotFound)
	}

	path := name
	if !filepath.IsAbs(name) {
		path = filepath.Join(l.Dir, name)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	return path, nil
}

// FileSource opens a named impulse response through a Locator.
type FileSource struct {
	Locator Locator
	Name    string
}

// Open resolves and decodes the impulse response. The returned string is
// the resolved path, used to label load results.
func (s FileSource) Open() (*ImpulseResponse, string, error) {
	if s.Locator == nil {
		return nil, s.Name, fmt.Errorf("%w: no locator for %q", ErrNotFound, s.Name)
	}

	path, err := s.Locator.Locate(s.Name)
	if err != nil {
		return nil, s.Name, err
	}

	ir, err := Load(path)
	if err != nil {
		return nil, path, err
	}

	return ir, path, nil
}
