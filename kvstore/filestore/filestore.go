// Package filestore persists key-value pairs in a single YAML document on disk.
package filestore

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-waterres-client/kvstore"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Store rewrites the whole file on every change. The file is small: a couple
// of tokens and, optionally, sealed credentials.
type Store struct {
	path string
	mu   sync.Mutex
}

var _ kvstore.Store = (*Store)(nil)

// New returns a store backed by path. The file and its directory are created
// on the first Set.
func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", kvstore.ErrNotFound
	}
	return value, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	if key == "" {
		return errors.New("key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

func (s *Store) load() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "filestore.load ReadFile")
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "filestore.load decode %s", s.path)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

func (s *Store) save(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "filestore.save encode")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "filestore.save MkdirAll")
	}

	tmp, err := os.CreateTemp(dir, ".kv-*")
	if err != nil {
		return errors.Wrap(err, "filestore.save CreateTemp")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "filestore.save Write")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "filestore.save Chmod")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "filestore.save Close")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "filestore.save Rename")
}
