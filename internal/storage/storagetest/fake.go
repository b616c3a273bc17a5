// Package storagetest provides an in-memory ObjectStore for tests.
package storagetest

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"photomap-service/internal/storage"
)

// FakeObjectStore keeps objects in a map and records every call. The *Err
// fields inject failures. Like the MinIO client, every call fails with the
// context error once ctx is done.
type FakeObjectStore struct {
	mu sync.Mutex

	Objects      map[string][]byte
	ContentTypes map[string]string

	PutErr     error
	RemoveErr  error
	PresignErr error
	// PresignErrFor fails presigning for specific keys only.
	PresignErrFor map[string]error

	PutCalls     []string
	RemoveCalls  []string
	PresignCalls []string
}

var _ storage.ObjectStore = (*FakeObjectStore)(nil)

func NewFakeObjectStore() *FakeObjectStore {
	return &FakeObjectStore{
		Objects:       map[string][]byte{},
		ContentTypes:  map[string]string{},
		PresignErrFor: map[string]error{},
	}
}

func (f *FakeObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.PutCalls = append(f.PutCalls, key)
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.PutErr != nil {
		return f.PutErr
	}
	if _, ok := f.Objects[key]; ok {
		return storage.ErrObjectExists
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.Objects[key] = data
	f.ContentTypes[key] = contentType
	return nil
}

func (f *FakeObjectStore) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.RemoveCalls = append(f.RemoveCalls, key)
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	delete(f.Objects, key)
	delete(f.ContentTypes, key)
	return nil
}

func (f *FakeObjectStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.PresignCalls = append(f.PresignCalls, key)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.PresignErr != nil {
		return "", f.PresignErr
	}
	if err, ok := f.PresignErrFor[key]; ok {
		return "", err
	}
	return fmt.Sprintf("https://objects.test/photos/%s?expires=%d", key, int(ttl.Seconds())), nil
}

// Has reports whether an object is stored at key.
func (f *FakeObjectStore) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Objects[key]
	return ok
}

// Count returns the number of stored objects.
func (f *FakeObjectStore) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Objects)
}

// Removed returns a copy of the keys passed to Remove.
func (f *FakeObjectStore) Removed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.RemoveCalls...)
}

// Presigned returns a copy of the keys passed to PresignGet.
func (f *FakeObjectStore) Presigned() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.PresignCalls...)
}
