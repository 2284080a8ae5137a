package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrFileNotFound = errors.New("filesystem: file not found")
	ErrInvalidPath  = errors.New("filesystem: invalid path")
)

// Filesystem is the file access needed by the file routes: one whole-file
// read or write per call.
type Filesystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, content []byte) error
	FileExists(path string) (bool, error)
}

type localFileSystem struct {
	fileMode os.FileMode
	dirMode  os.FileMode
}

func NewLocalFileSystem() Filesystem {
	return &localFileSystem{
		fileMode: 0644,
		dirMode:  0770,
	}
}

func (filesystem *localFileSystem) FileExists(path string) (bool, error) {
	if path == "" {
		return false, ErrInvalidPath
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return !info.IsDir(), nil
}

func (filesystem *localFileSystem) ReadFile(path string) ([]byte, error) {
	exists, err := filesystem.FileExists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	return os.ReadFile(path)
}

// WriteFile creates or truncates the file at path, creating its directory
// when needed.
func (filesystem *localFileSystem) WriteFile(path string, content []byte) error {
	if path == "" {
		return ErrInvalidPath
	}

	if err := os.MkdirAll(filepath.Dir(path), filesystem.dirMode); err != nil {
		return fmt.Errorf("filesystem: creating directory for %s: %w", path, err)
	}

	return os.WriteFile(path, content, filesystem.fileMode)
}
