package fontatlas

import (
	"log/slog"
	"slices"
	"strconv"
	"sync/atomic"

	"github.com/gogpu/fontatlas/fontcore"
)

// DelegateFontHandle is a handle whose font is produced by a user
// callback. The callback runs once per build step.
type DelegateFontHandle struct {
	handle
	callback BuildStepFunc
	id       uint64
}

func (h *DelegateFontHandle) String() string {
	return "DelegateFontHandle#" + strconv.FormatUint(h.id, 10)
}

type delegateManager struct {
	managerBase
	fa *FontAtlas

	// guarded by mu
	handles map[*DelegateFontHandle]struct{}
	nextID  uint64
}

var _ HandleManager = (*delegateManager)(nil)

func newDelegateManager(fa *FontAtlas) *delegateManager {
	m := &delegateManager{
		fa:      fa,
		handles: make(map[*DelegateFontHandle]struct{}),
	}
	m.name = fa.name + ":delegate"
	m.logger = fa.logger()
	m.recommend = fa.onRebuildRecommend
	return m
}

func (m *delegateManager) newFontHandle(fn BuildStepFunc) *DelegateFontHandle {
	h := &DelegateFontHandle{callback: fn}
	h.init(h, m.fa, m)

	m.mu.Lock()
	m.nextID++
	h.id = m.nextID
	m.handles[h] = struct{}{}
	m.mu.Unlock()

	m.recommendRebuild()
	return h
}

func (m *delegateManager) FreeFontHandle(h FontHandle) {
	dh, ok := h.(*DelegateFontHandle)
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handles, dh)
}

func (m *delegateManager) NewSubstance(root *DataRoot) Substance {
	s := &delegateSubstance{
		mgr:   m,
		root:  root,
		fonts: make(map[*DelegateFontHandle]*fontcore.Font),
		errs:  make(map[*DelegateFontHandle]error),
	}
	m.mu.Lock()
	for h := range m.handles {
		s.handles = append(s.handles, h)
	}
	m.mu.Unlock()
	slices.SortFunc(s.handles, func(a, b *DelegateFontHandle) int {
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		}
		return 0
	})
	return s
}

// delegateSubstance runs the delegate callbacks of one build, in handle
// creation order.
type delegateSubstance struct {
	mgr     *delegateManager
	root    *DataRoot
	handles []*DelegateFontHandle

	fonts map[*DelegateFontHandle]*fontcore.Font
	errs  map[*DelegateFontHandle]error

	closed atomic.Bool
}

var _ Substance = (*delegateSubstance)(nil)

func (s *delegateSubstance) Manager() HandleManager { return s.mgr }
func (s *delegateSubstance) DataRoot() *DataRoot    { return s.root }

func (s *delegateSubstance) Font(h FontHandle) *fontcore.Font {
	dh, ok := h.(*DelegateFontHandle)
	if !ok || s.closed.Load() {
		return nil
	}
	return s.fonts[dh]
}

func (s *delegateSubstance) LoadErr(h FontHandle) error {
	dh, ok := h.(*DelegateFontHandle)
	if !ok {
		return nil
	}
	return s.errs[dh]
}

func (s *delegateSubstance) RelevantHandles() []FontHandle {
	out := make([]FontHandle, len(s.handles))
	for i, h := range s.handles {
		out[i] = h
	}
	return out
}

func (s *delegateSubstance) OnPreBuild(tk PreBuildToolkit) {
	for _, h := range s.handles {
		if h.mgr.Load() == nil {
			continue
		}
		before := len(tk.Fonts())
		tk.SetFont(nil)
		if err := invokeSafely(func() error { return h.callback(tk) }); err != nil {
			s.fail(h, BuildStepPreBuild, err)
			continue
		}

		fonts := tk.Fonts()
		added := fonts[min(before, len(fonts)):]
		f := tk.Font()
		if f == nil {
			switch len(added) {
			case 0:
				s.fail(h, BuildStepPreBuild, ErrDelegateNoFont)
				continue
			case 1:
			default:
				s.mgr.logger.Warn("fontatlas: delegate added several fonts without setting Font, using the last",
					slog.String("handle", h.String()),
					slog.Int("added", len(added)))
			}
			f = added[len(added)-1]
		}

		switch {
		case countFont(fonts, f) > 1:
			s.fail(h, BuildStepPreBuild, ErrFontAddedTwice)
		case !slices.Contains(added, f):
			s.fail(h, BuildStepPreBuild, fontcore.ErrFontNotInAtlas)
		default:
			s.fonts[h] = f
		}
	}
	tk.SetFont(nil)
}

func (s *delegateSubstance) OnPreBuildCleanup(PreBuildToolkit) {}

func (s *delegateSubstance) OnPostBuild(tk PostBuildToolkit) {
	for _, h := range s.handles {
		f, ok := s.fonts[h]
		if !ok {
			continue
		}
		tk.SetFont(f)
		if err := invokeSafely(func() error { return h.callback(tk) }); err != nil {
			s.fail(h, BuildStepPostBuild, err)
		}
	}
	tk.SetFont(nil)
}

func (s *delegateSubstance) OnPostPromotion(tk PostPromotionToolkit) {
	for _, h := range s.handles {
		f, ok := s.fonts[h]
		if !ok {
			continue
		}
		tk.SetFont(f)
		if err := invokeSafely(func() error { return h.callback(tk) }); err != nil {
			s.mgr.logger.Error("fontatlas: delegate font post-promotion failed",
				slog.String("atlas", s.root.Name()),
				slog.String("handle", h.String()),
				slog.Any("error", err))
		}
	}
	tk.SetFont(nil)
}

func (s *delegateSubstance) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *delegateSubstance) fail(h *DelegateFontHandle, step BuildStep, err error) {
	delete(s.fonts, h)
	herr := &HandleBuildError{Handle: h.String(), Step: step, Err: err}
	s.errs[h] = herr
	s.mgr.logger.Error("fontatlas: delegate font failed",
		slog.String("atlas", s.root.Name()),
		slog.Any("error", herr))
}

func countFont(fonts []*fontcore.Font, f *fontcore.Font) int {
	n := 0
	for _, x := range fonts {
		if x == f {
			n++
		}
	}
	return n
}
