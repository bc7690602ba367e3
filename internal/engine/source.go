package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// Source is one named report input.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads a report from disk.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return f.Path }

func (f FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}
	return file, nil
}

// ReaderSource wraps an already open stream such as stdin. The stream is
// read once on the first Open; later opens replay the buffered bytes, so
// reloads see the same data. Use it through a pointer.
type ReaderSource struct {
	Label  string
	Reader io.Reader

	mu   sync.Mutex
	read bool
	data []byte
	err  error
}

func (r *ReaderSource) Name() string {
	if r.Label == "" {
		return "-"
	}
	return r.Label
}

func (r *ReaderSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.read {
		r.data, r.err = io.ReadAll(ctxReader{ctx: ctx, r: r.Reader})
		r.read = true
	}
	if r.err != nil {
		return nil, r.err
	}
	return io.NopCloser(bytes.NewReader(r.data)), nil
}

// ctxReader fails the next Read once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// readAll reads the whole source, checking ctx between reads.
func readAll(ctx context.Context, s Source) ([]byte, error) {
	rc, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(ctxReader{ctx: ctx, r: rc})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Name(), err)
	}
	return data, nil
}
