package fontatlas

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/fontatlas/fontcore"
	"github.com/gogpu/fontatlas/gamefont"
	"github.com/gogpu/fontatlas/glyphrange"
)

// GameFontHandle is a handle to a prebaked game font style.
type GameFontHandle struct {
	handle
	style gamefont.Style
}

// Style returns the requested style.
func (h *GameFontHandle) Style() gamefont.Style { return h.style }

func (h *GameFontHandle) String() string { return "GameFontHandle(" + h.style.String() + ")" }

type gameFontManager struct {
	managerBase
	fa      *FontAtlas
	library *gamefont.Library

	// guarded by mu
	refs    map[gamefont.Style]int
	handles map[*GameFontHandle]struct{}
}

var _ HandleManager = (*gameFontManager)(nil)

func newGameFontManager(fa *FontAtlas) *gameFontManager {
	m := &gameFontManager{
		fa:      fa,
		library: fa.factory.library,
		refs:    make(map[gamefont.Style]int),
		handles: make(map[*GameFontHandle]struct{}),
	}
	m.name = fa.name + ":game"
	m.logger = fa.logger()
	m.recommend = fa.onRebuildRecommend
	return m
}

func (m *gameFontManager) newFontHandle(style gamefont.Style) (*GameFontHandle, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	h := &GameFontHandle{style: style}
	h.init(h, m.fa, m)

	m.mu.Lock()
	m.refs[style]++
	m.handles[h] = struct{}{}
	suggest := true
	if s, ok := m.Substance().(*gameFontSubstance); ok && s.fonts[style].Loaded() {
		suggest = false
	}
	m.mu.Unlock()

	if suggest {
		m.recommendRebuild()
	}
	return h, nil
}

func (m *gameFontManager) FreeFontHandle(h FontHandle) {
	gh, ok := h.(*GameFontHandle)
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.handles[gh]; !ok {
		return
	}
	delete(m.handles, gh)
	if m.refs[gh.style]--; m.refs[gh.style] <= 0 {
		delete(m.refs, gh.style)
	}
}

// RefCount returns the number of live handles of style.
func (m *gameFontManager) RefCount(style gamefont.Style) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refs[style]
}

func (m *gameFontManager) NewSubstance(root *DataRoot) Substance {
	s := &gameFontSubstance{
		mgr:          m,
		root:         root,
		fonts:        make(map[gamefont.Style]*fontcore.Font),
		errs:         make(map[gamefont.Style]error),
		plans:        make(map[gamefont.Style]*glyphDrawPlan),
		plansByStyle: make(map[gamefont.Style]*glyphDrawPlan),
	}
	m.mu.Lock()
	for style := range m.refs {
		s.styles = append(s.styles, style)
	}
	for h := range m.handles {
		s.handles = append(s.handles, h)
	}
	m.mu.Unlock()
	return s
}

// gameFontSubstance realizes game font styles against one build. Fonts
// are keyed by the unscaled style; plans by the scaled one.
type gameFontSubstance struct {
	mgr  *gameFontManager
	root *DataRoot

	styles  []gamefont.Style
	handles []*GameFontHandle

	fonts map[gamefont.Style]*fontcore.Font
	errs  map[gamefont.Style]error

	plans        map[gamefont.Style]*glyphDrawPlan
	plansByStyle map[gamefont.Style]*glyphDrawPlan
	order        []*glyphDrawPlan

	closed atomic.Bool
}

var _ Substance = (*gameFontSubstance)(nil)

func (s *gameFontSubstance) Manager() HandleManager { return s.mgr }
func (s *gameFontSubstance) DataRoot() *DataRoot    { return s.root }

func (s *gameFontSubstance) Font(h FontHandle) *fontcore.Font {
	gh, ok := h.(*GameFontHandle)
	if !ok || s.closed.Load() {
		return nil
	}
	return s.fonts[gh.style]
}

func (s *gameFontSubstance) LoadErr(h FontHandle) error {
	gh, ok := h.(*GameFontHandle)
	if !ok {
		return nil
	}
	return s.errs[gh.style]
}

func (s *gameFontSubstance) RelevantHandles() []FontHandle {
	out := make([]FontHandle, len(s.handles))
	for i, h := range s.handles {
		out[i] = h
	}
	return out
}

func (s *gameFontSubstance) OnPreBuild(tk PreBuildToolkit) {
	for _, style := range s.styles {
		p, err := s.plan(tk, style)
		if err != nil {
			s.fail(style, BuildStepPreBuild, err)
			continue
		}
		s.fonts[style] = p.full
	}
}

func (s *gameFontSubstance) OnPreBuildCleanup(tk PreBuildToolkit) {
	for _, p := range s.order {
		if err := p.ensureGlyphs(tk.Atlas()); err != nil {
			s.failPlan(p, BuildStepPreBuild, err)
		}
	}
}

func (s *gameFontSubstance) OnPostBuild(tk PostBuildToolkit) {
	pages := newChannelPages(s.mgr.library)
	for _, p := range s.order {
		if p.failed {
			continue
		}
		if err := p.setFullRangeFontGlyphs(tk, pages); err != nil {
			s.failPlan(p, BuildStepPostBuild, err)
			continue
		}
		p.postProcessFullRangeFont()
	}
	for _, p := range s.order {
		if !p.failed {
			p.copyGlyphsToRanges(tk)
		}
	}
}

func (s *gameFontSubstance) OnPostPromotion(PostPromotionToolkit) {}

func (s *gameFontSubstance) Close() error {
	s.closed.Store(true)
	return nil
}

// plan returns the plan drawing style, creating it and its full font on
// first use.
func (s *gameFontSubstance) plan(tk PreBuildToolkit, style gamefont.Style) (*glyphDrawPlan, error) {
	if p, ok := s.plansByStyle[style]; ok {
		return p, nil
	}
	if s.mgr.library == nil {
		return nil, ErrNoGameFontAssets
	}

	scaled := style.Scale(tk.Scale())
	if p, ok := s.plans[scaled]; ok {
		p.sources = append(p.sources, style)
		s.plansByStyle[style] = p
		return p, nil
	}

	fdt, err := s.mgr.library.FDT(scaled.FamilyAndSize)
	if err != nil {
		return nil, err
	}
	p := newGlyphDrawPlan(scaled, tk.Scale(), fdt, s.mgr.library)
	if p.full, err = s.addTemplateFont(tk, p); err != nil {
		return nil, err
	}
	p.addKerning()
	p.sources = append(p.sources, style)

	s.plans[scaled] = p
	s.plansByStyle[style] = p
	s.order = append(s.order, p)
	return p, nil
}

// addTemplateFont adds a font for p: the default font's space glyph plus
// the language glyphs the FDT lacks, at the scaled size, exempt from the
// toolkit's scale handling.
func (s *gameFontSubstance) addTemplateFont(tk PreBuildToolkit, p *glyphDrawPlan) (*fontcore.Font, error) {
	cfg := DefaultSafeFontConfig()
	cfg.SizePx = p.style.SizePx
	cfg.GlyphRanges = []uint16{' ', ' ', 0}
	f, err := tk.AddFontFromMemory(s.mgr.fa.factory.cfg.DefaultFontData, cfg, "game:"+p.style.String())
	if err != nil {
		return nil, err
	}
	tk.SetFontScaleMode(f, FontScaleModeSkipHandling)

	extra := cfg
	extra.MergeFont = f
	extra.GlyphRanges = glyphrange.New().
		WithLanguage(s.mgr.fa.factory.lang).
		WithoutRanges(p.fdt.Ranges(nil)).
		BuildExact()
	if len(extra.GlyphRanges) > 1 {
		if err := tk.AddExtraGlyphsForLanguage(extra); err != nil {
			s.mgr.logger.Warn("fontatlas: language glyphs for game font",
				slog.String("style", p.style.String()),
				slog.Any("error", err))
		}
	}
	return f, nil
}

// addGameGlyphs serves PreBuildToolkit.AddGameGlyphs.
func (s *gameFontSubstance) addGameGlyphs(tk PreBuildToolkit, style gamefont.Style, ranges []uint16, merge *fontcore.Font) (*fontcore.Font, error) {
	p, err := s.plan(tk, style)
	if err != nil {
		return nil, err
	}
	if ranges == nil && merge == nil {
		return p.full, nil
	}
	target, owned := merge, false
	if target == nil {
		if target, err = s.addTemplateFont(tk, p); err != nil {
			return nil, err
		}
		owned = true
	}
	p.attachFont(target, ranges, owned)
	return target, nil
}

func (s *gameFontSubstance) fail(style gamefont.Style, step BuildStep, err error) {
	delete(s.fonts, style)
	herr := &HandleBuildError{Handle: style.String(), Step: step, Err: err}
	s.errs[style] = herr
	s.mgr.logger.Error("fontatlas: game font failed",
		slog.String("atlas", s.root.Name()),
		slog.Any("error", herr))
}

func (s *gameFontSubstance) failPlan(p *glyphDrawPlan, step BuildStep, err error) {
	p.failed = true
	for _, style := range p.sources {
		s.fail(style, step, err)
	}
}
