// Package memblob is an in-memory blob.Store that can also serve its objects
// over HTTP for the demo server.
package memblob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/folkbase/folkbase/pkg/blob"
)

type object struct {
	contentType string
	data        []byte
}

type Store struct {
	mu        sync.Mutex
	baseURL   string
	objects   map[string]object
	uploadErr error
	deleteErr func(path string) error
}

var _ blob.Store = (*Store)(nil)

// New returns an empty store whose URLs are baseURL + "/" + path
func New(baseURL string) *Store {
	return &Store{baseURL: strings.TrimSuffix(baseURL, "/"), objects: make(map[string]object)}
}

func (s *Store) Upload(ctx context.Context, path, contentType string, r io.Reader, size int64, progress blob.ProgressFunc) (string, error) {
	s.mu.Lock()
	failure := s.uploadErr
	s.mu.Unlock()
	if failure != nil {
		return "", failure
	}

	var buf bytes.Buffer
	chunk := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := r.Read(chunk)
		buf.Write(chunk[:n])
		if n > 0 && progress != nil {
			progress(int64(buf.Len()), size)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read upload: %w", err)
		}
	}

	s.mu.Lock()
	s.objects[path] = object{contentType: contentType, data: buf.Bytes()}
	s.mu.Unlock()
	return s.URL(path), nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		if err := s.deleteErr(path); err != nil {
			return err
		}
	}
	delete(s.objects, path)
	return nil
}

func (s *Store) URL(path string) string {
	return s.baseURL + "/" + path
}

func (s *Store) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok
}

// Paths returns every stored path
func (s *Store) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.objects))
	for p := range s.objects {
		paths = append(paths, p)
	}
	return paths
}

// FailUploads makes every following Upload return err; nil restores normal behaviour
func (s *Store) FailUploads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadErr = err
}

// FailDeletes installs a hook consulted before each Delete
func (s *Store) FailDeletes(fn func(path string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = fn
}

// ServeHTTP serves GET /<path> for objects in the store
func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")

	s.mu.Lock()
	obj, ok := s.objects[path]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	if obj.contentType != "" {
		w.Header().Set("Content-Type", obj.contentType)
	}
	w.Write(obj.data)
}
