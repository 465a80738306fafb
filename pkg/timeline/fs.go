package timeline

import (
	"io/fs"
	"os"
)

// FS is the filesystem capability the core depends on. It exists so that
// tests and embedding applications can substitute an in-memory store; the
// core never touches the OS filesystem directly except through this
// interface.
type FS interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
}

// Disk is the OS-backed FS implementation.
type Disk struct{}

func (Disk) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (Disk) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// MemFS is an in-memory FS for tests.
type MemFS map[string][]byte

func (m MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m MemFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	out := make([]byte, len(data))
	copy(out, data)
	m[path] = out
	return nil
}
