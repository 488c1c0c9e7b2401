package fontatlas

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/fontatlas/fontcore"
)

// FontHandle is a stable reference to a font of an atlas. It survives
// rebuilds: every build realizes the handle again and notifies
// OnFontChanged listeners.
type FontHandle interface {
	// Available reports whether the installed build has a loaded font for
	// the handle.
	Available() bool

	// LoadErr returns the error that kept the installed build from
	// producing the handle's font.
	LoadErr() error

	// TryLock locks the font of the installed build. The returned lock
	// keeps the build alive until released.
	TryLock() (*LockedFont, error)

	// Lock is TryLock that waits for a build providing the font.
	Lock(ctx context.Context) (*LockedFont, error)

	// LockUntilPostFrame locks the font until the owning atlas starts its
	// next frame. It returns nil when the font is not available.
	LockUntilPostFrame() *fontcore.Font

	// OnFontChanged registers fn to run after each installed build. The
	// lock passed to fn is released when fn returns; call NewRef to keep
	// it.
	OnFontChanged(fn func(h FontHandle, lf *LockedFont)) (remove func())

	// Wait blocks until the font is available. It returns the build error
	// when a build installed without the font.
	Wait(ctx context.Context) error

	// Close detaches the handle. It is idempotent.
	Close() error

	String() string

	core() *handle
}

type managerRef struct{ m HandleManager }

// handle is the state shared by both handle kinds.
type handle struct {
	self  FontHandle
	atlas *FontAtlas
	mgr   atomic.Pointer[managerRef]

	mu        sync.Mutex
	listeners map[uint64]func(FontHandle, *LockedFont)
	nextID    uint64
	changed   chan struct{}
	closed    chan struct{}
}

func (h *handle) init(self FontHandle, atlas *FontAtlas, m HandleManager) {
	h.self = self
	h.atlas = atlas
	h.mgr.Store(&managerRef{m: m})
	h.changed = make(chan struct{})
	h.closed = make(chan struct{})
}

func (h *handle) core() *handle { return h }

func (h *handle) manager() (HandleManager, error) {
	ref := h.mgr.Load()
	if ref == nil {
		return nil, ErrHandleDisposed
	}
	if ref.m.base().closed.Load() {
		return nil, ErrAtlasDisposed
	}
	return ref.m, nil
}

func (h *handle) substance() Substance {
	m, err := h.manager()
	if err != nil {
		return nil
	}
	return m.Substance()
}

func (h *handle) Available() bool {
	s := h.substance()
	return s != nil && s.Font(h.self).Loaded()
}

func (h *handle) LoadErr() error {
	if s := h.substance(); s != nil {
		return s.LoadErr(h.self)
	}
	return nil
}

func (h *handle) TryLock() (*LockedFont, error) {
	var prev Substance
	for {
		m, err := h.manager()
		if err != nil {
			return nil, err
		}
		s := m.Substance()
		if s == nil {
			return nil, ErrAtlasNotBuilt
		}
		if s == prev {
			if loadErr := s.LoadErr(h.self); loadErr != nil {
				return nil, errors.Join(ErrFontNotBuilt, loadErr)
			}
			return nil, ErrFontNotBuilt
		}
		prev = s

		root := s.DataRoot()
		if _, err := root.AddRef(); err != nil {
			continue
		}
		f := s.Font(h.self)
		if f == nil {
			_, _ = root.Release()
			continue
		}
		return &LockedFont{font: f, root: root}, nil
	}
}

// changedChan returns the channel closed by the next font change.
func (h *handle) changedChan() chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.changed
}

func (h *handle) Lock(ctx context.Context) (*LockedFont, error) {
	for {
		ch := h.changedChan()
		lf, err := h.TryLock()
		if err == nil {
			return lf, nil
		}
		if errors.Is(err, ErrHandleDisposed) || errors.Is(err, ErrAtlasDisposed) {
			return nil, err
		}
		select {
		case <-ch:
		case <-h.closed:
			return nil, ErrHandleDisposed
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (h *handle) LockUntilPostFrame() *fontcore.Font {
	lf, err := h.TryLock()
	if err != nil {
		return nil
	}
	if !h.atlas.addFrameLock(lf) {
		lf.Release()
		return nil
	}
	return lf.Font()
}

func (h *handle) OnFontChanged(fn func(FontHandle, *LockedFont)) (remove func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listeners == nil {
		h.listeners = make(map[uint64]func(FontHandle, *LockedFont))
	}
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

func (h *handle) Wait(ctx context.Context) error {
	for {
		ch := h.changedChan()
		if _, err := h.manager(); err != nil {
			return err
		}
		if h.Available() {
			return nil
		}
		if err := h.LoadErr(); err != nil {
			return err
		}
		select {
		case <-ch:
		case <-h.closed:
			return ErrHandleDisposed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *handle) Close() error {
	ref := h.mgr.Swap(nil)
	if ref == nil {
		return nil
	}
	ref.m.FreeFontHandle(h.self)

	h.mu.Lock()
	h.listeners = nil
	close(h.closed)
	h.mu.Unlock()
	return nil
}

// invokeFontChanged wakes Lock and Wait callers. Listeners run only when
// the build produced the font.
func (h *handle) invokeFontChanged(lf *LockedFont) {
	h.mu.Lock()
	var fns []func(FontHandle, *LockedFont)
	if lf != nil {
		for _, fn := range h.listeners {
			fns = append(fns, fn)
		}
	}
	close(h.changed)
	h.changed = make(chan struct{})
	h.mu.Unlock()

	for _, fn := range fns {
		err := invokeSafely(func() error {
			fn(h.self, lf)
			return nil
		})
		if err != nil {
			h.atlas.logger().Error("fontatlas: font changed listener failed",
				slog.String("handle", h.self.String()),
				slog.Any("error", err))
		}
	}
}

// LockedFont is a locked font of a built atlas. It holds one reference on
// the atlas data; Release drops it. The font must not be used after
// Release.
type LockedFont struct {
	font     *fontcore.Font
	root     *DataRoot
	released atomic.Bool
}

// Font returns the locked font.
func (l *LockedFont) Font() *fontcore.Font { return l.font }

// DataRoot returns the data kept alive by the lock.
func (l *LockedFont) DataRoot() *DataRoot { return l.root }

// NewRef returns an independent lock of the same font.
func (l *LockedFont) NewRef() (*LockedFont, error) {
	if l.released.Load() {
		return nil, ErrDataRootDisposed
	}
	if _, err := l.root.AddRef(); err != nil {
		return nil, err
	}
	return &LockedFont{font: l.font, root: l.root}, nil
}

// Release drops the lock. It is idempotent.
func (l *LockedFont) Release() {
	if l.released.Swap(true) {
		return
	}
	_, _ = l.root.Release()
}

// Close implements io.Closer through Release.
func (l *LockedFont) Close() error {
	l.Release()
	return nil
}
