package export

import (
	"context"
	"errors"
	"sync"

	"github.com/vango-dev/vgv/pkg/raster"
)

// fakeMuxer records what the pipeline writes.
type fakeMuxer struct {
	mu        sync.Mutex
	spec      MuxSpec
	frames    [][]byte
	failAfter int // Fail the write after this many frames, 0 never fails
	closeErr  error
	closed    bool
	aborted   bool
}

func (m *fakeMuxer) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAfter > 0 && len(m.frames) >= m.failAfter {
		return 0, errors.New("disk full")
	}
	m.frames = append(m.frames, append([]byte(nil), p...))
	return len(p), nil
}

func (m *fakeMuxer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.closeErr
}

func (m *fakeMuxer) Abort() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aborted = true
	return nil
}

func (m *fakeMuxer) factory() MuxerFactory {
	return MuxerFunc(func(_ context.Context, spec MuxSpec) (Muxer, error) {
		m.spec = spec
		return m, nil
	})
}

// fakeRasterizer fills each frame with the length of its markup.
type fakeRasterizer struct {
	mu     sync.Mutex
	calls  []string
	sizes  [][2]int
	failAt int // Fail on this call number (1-based), 0 never fails
	panic  bool
}

func (r *fakeRasterizer) Rasterize(markup string, w, h int) ([]byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, markup)
	r.sizes = append(r.sizes, [2]int{w, h})
	n := len(r.calls)
	r.mu.Unlock()

	if r.failAt > 0 && n == r.failAt {
		if r.panic {
			panic("rasterizer exploded")
		}
		return nil, errors.New("bad markup")
	}
	buf := make([]byte, raster.BufferSize(w, h))
	for i := range buf {
		buf[i] = byte(len(markup))
	}
	return buf, nil
}
