// Package docstore provides durable storage for uploaded source documents.
package docstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/cloo-solutions/paperchat/internal/domain"
)

// LocalStore keeps uploaded documents in a directory on the local filesystem.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the storage directory if needed and returns a store.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.StorageError(fmt.Sprintf("failed to create document directory %q", dir), err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes an uploaded document into the store, replacing any existing
// file with the same name.
func (s *LocalStore) Save(ctx context.Context, filename string, r io.Reader) (*domain.Document, error) {
	if err := domain.ValidateFilename(filename); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return nil, domain.StorageError("failed to create document file", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return nil, domain.StorageError("failed to write document file", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, domain.StorageError("failed to write document file", err)
	}

	return s.stat(filename)
}

// Delete removes a document from the store.
func (s *LocalStore) Delete(ctx context.Context, filename string) error {
	if err := domain.ValidateFilename(filename); err != nil {
		return err
	}

	path := filepath.Join(s.dir, filename)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrDocumentNotFound
		}
		return domain.StorageError("failed to delete document file", err)
	}
	return nil
}

// List returns all supported documents in the store, sorted by name.
// Files with unsupported extensions are skipped.
func (s *LocalStore) List(ctx context.Context) ([]*domain.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, domain.StorageError("failed to read document directory", err)
	}

	docs := make([]*domain.Document, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, ok := domain.FormatForFilename(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, domain.StorageError("failed to stat document file", err)
		}
		docs = append(docs, &domain.Document{
			Name:       entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime().UTC(),
			Format:     format,
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// Fetch returns a local filesystem path for a stored document so loaders can
// parse it. The cleanup function is a no-op for the local store.
func (s *LocalStore) Fetch(ctx context.Context, filename string) (string, func(), error) {
	if err := domain.ValidateFilename(filename); err != nil {
		return "", nil, err
	}

	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil, domain.ErrDocumentNotFound
		}
		return "", nil, domain.StorageError("failed to stat document file", err)
	}
	return path, func() {}, nil
}

func (s *LocalStore) stat(filename string) (*domain.Document, error) {
	info, err := os.Stat(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, domain.StorageError("failed to stat document file", err)
	}
	format, _ := domain.FormatForFilename(filename)
	return &domain.Document{
		Name:       filename,
		Size:       info.Size(),
		ModifiedAt: info.ModTime().UTC(),
		Format:     format,
	}, nil
}
