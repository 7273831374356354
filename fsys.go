package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem is the file system capability the scanner and executor depend on.
type FileSystem interface {
	WalkDir(root string, fn fs.WalkDirFunc) error
	Stat(path string) (fs.FileInfo, error)
	Remove(path string) error
}

type osFS struct{}

func newOSFS() FileSystem {
	return osFS{}
}

func (osFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

func (osFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (osFS) Remove(path string) error {
	return os.Remove(path)
}

// exists reports whether path is still present. Stat errors other than
// not-exist count as present so the caller never drops a file it cannot see.
func exists(fsys FileSystem, path string) bool {
	_, err := fsys.Stat(path)
	if err == nil {
		return true
	}
	return !errors.Is(err, fs.ErrNotExist)
}

func validateDeletePath(path string) (string, error) {
	if path == "" {
		return "", errors.New("delete: empty path")
	}
	cleaned := filepath.Clean(path)
	if !filepath.IsAbs(cleaned) {
		return "", errors.New("delete: relative paths are not allowed")
	}
	if cleaned == filepath.VolumeName(cleaned)+string(os.PathSeparator) {
		return "", errors.New("delete: refusing to delete root")
	}
	return cleaned, nil
}
