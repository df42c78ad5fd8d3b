package storage

import (
	"io"
	"os"
	"path/filepath"
)

// FileStore keeps attachment bytes on local disk under a single
// directory. Records in the database carry the full stored path.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the reader's contents under the given stored name and
// returns the full path.
func (s *FileStore) Save(storedName string, r io.Reader) (string, error) {
	path := filepath.Join(s.dir, storedName)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// Exists reports whether the stored file is still present on disk.
func (s *FileStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes the stored file. Removing a file that is already
// gone is not an error.
func (s *FileStore) Remove(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
