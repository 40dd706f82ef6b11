package auth

import (
	"encoding/json"
	"os"
	"path/filepath"

	errs "igcomments/pkg/errors"
)

// FileStore persists the credential bundle as a single JSON file. Readers
// never write; writes stage to a temporary file in the same directory and
// promote atomically, so no reader ever observes a half-written bundle.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the persisted bundle. A missing, corrupt, or structurally
// incomplete file yields (nil, nil): the caller treats all three the same
// way, by re-authenticating. Only real I/O failures return an error.
func (s *FileStore) Load() (*Bundle, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.New(errs.ErrorTypeStorage, "failed to read credential file: "+err.Error())
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, nil
	}
	if !bundle.Cookies.complete() {
		return nil, nil
	}

	return &bundle, nil
}

// Save atomically replaces the stored bundle
func (s *FileStore) Save(bundle *Bundle) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errs.New(errs.ErrorTypeStorage, "failed to create credential directory: "+err.Error())
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return errs.New(errs.ErrorTypeStorage, "failed to encode credential bundle: "+err.Error())
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return errs.New(errs.ErrorTypeStorage, "failed to create temporary credential file: "+err.Error())
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errs.New(errs.ErrorTypeStorage, "failed to write credential file: "+err.Error())
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errs.New(errs.ErrorTypeStorage, "failed to sync credential file: "+err.Error())
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errs.New(errs.ErrorTypeStorage, "failed to close credential file: "+err.Error())
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return errs.New(errs.ErrorTypeStorage, "failed to set credential file mode: "+err.Error())
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return errs.New(errs.ErrorTypeStorage, "failed to replace credential file: "+err.Error())
	}

	return nil
}

// Delete removes the stored bundle. Missing file is not an error.
func (s *FileStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errs.New(errs.ErrorTypeStorage, "failed to remove credential file: "+err.Error())
	}
	return nil
}
