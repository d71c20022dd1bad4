package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

var (
	ErrDisabled = errors.New("object storage is not configured")
	ErrNotFound = errors.New("object not found")
)

type Object struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

type Provider interface {
	Enabled() bool
	Put(ctx context.Context, key, contentType string, body []byte) (Object, error)
	Get(ctx context.Context, key string) ([]byte, error)
	URL(key string) string
}

// NewKey builds an object key under prefix/platformID with a ULID file name.
func NewKey(prefix, platformID, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	name := ulid.Make().String()
	if ext != "" {
		name = fmt.Sprintf("%s.%s", name, ext)
	}
	return path.Join(prefix, platformID, name)
}

type NoOpProvider struct{}

func (p *NoOpProvider) Enabled() bool { return false }

func (p *NoOpProvider) Put(ctx context.Context, key, contentType string, body []byte) (Object, error) {
	return Object{}, ErrDisabled
}

func (p *NoOpProvider) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrDisabled
}

func (p *NoOpProvider) URL(key string) string { return "" }

// MemoryProvider keeps objects in process memory.
type MemoryProvider struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

func NewMemory(baseURL string) *MemoryProvider {
	return &MemoryProvider{objects: map[string][]byte{}, baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *MemoryProvider) Enabled() bool { return true }

func (p *MemoryProvider) Put(ctx context.Context, key, contentType string, body []byte) (Object, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.objects[key] = append([]byte(nil), body...)
	return Object{Key: key, URL: p.URL(key), ContentType: contentType, Size: int64(len(body))}, nil
}

func (p *MemoryProvider) Get(ctx context.Context, key string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	body, ok := p.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), body...), nil
}

func (p *MemoryProvider) URL(key string) string {
	return p.baseURL + "/" + key
}
