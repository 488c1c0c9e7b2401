package fontatlas

import (
	"io"
	"log/slog"

	"github.com/gogpu/fontatlas/fontcore"
	"github.com/gogpu/fontatlas/gamefont"
	"github.com/gogpu/fontatlas/gpuupload"
	"github.com/gogpu/fontatlas/internal/dispose"
)

// BuildStep is the stage of a build a toolkit belongs to.
type BuildStep int

// Build steps, in the order a build passes through them.
const (
	BuildStepInvalid BuildStep = iota
	BuildStepPreBuild
	BuildStepBuild
	BuildStepPostBuild
	BuildStepPostPromotion
)

func (s BuildStep) String() string {
	switch s {
	case BuildStepPreBuild:
		return "PreBuild"
	case BuildStepBuild:
		return "Build"
	case BuildStepPostBuild:
		return "PostBuild"
	case BuildStepPostPromotion:
		return "PostPromotion"
	default:
		return "Invalid"
	}
}

// FontScaleMode controls how the global scale applies to a font.
type FontScaleMode int

const (
	// FontScaleModeDefault rasterizes at the scaled size and divides the
	// metrics back after the build.
	FontScaleModeDefault FontScaleMode = iota

	// FontScaleModeSkipHandling leaves the font untouched: the config is
	// used as given and the metrics stay in rasterized pixels.
	FontScaleModeSkipHandling

	// FontScaleModeUndoGlobalScale rasterizes at the configured size and
	// divides the metrics by the scale, so the font keeps its pixel size
	// on screen.
	FontScaleModeUndoGlobalScale
)

func (m FontScaleMode) String() string {
	switch m {
	case FontScaleModeDefault:
		return "Default"
	case FontScaleModeSkipHandling:
		return "SkipHandling"
	case FontScaleModeUndoGlobalScale:
		return "UndoGlobalScale"
	default:
		return "Unknown"
	}
}

// BuildStepFunc is a delegate font callback. It runs once per step; switch
// on tk.BuildStep and assert the matching toolkit interface.
type BuildStepFunc func(tk Toolkit) error

// Toolkit is the part of the build toolkit available in every step.
type Toolkit interface {
	BuildStep() BuildStep

	// Scale is the global scale of the build.
	Scale() float32

	// IsAsync reports whether the build runs off the caller's goroutine.
	IsAsync() bool

	// Font is the font of the delegate handle being processed.
	Font() *fontcore.Font
	SetFont(f *fontcore.Font)

	Atlas() fontcore.Atlas
	Fonts() []*fontcore.Font

	// DisposeWithAtlas closes c when the built data is torn down.
	DisposeWithAtlas(c io.Closer)

	// DisposeAfterBuild closes c when the build attempt ends.
	DisposeAfterBuild(c io.Closer)

	// FontFor returns the font h has in this build, or nil.
	FontFor(h FontHandle) *fontcore.Font
}

// PreBuildToolkit adds fonts to the atlas being built.
type PreBuildToolkit interface {
	Toolkit

	AddFontFromMemory(data []byte, cfg SafeFontConfig, tag string) (*fontcore.Font, error)
	AddFontFromReader(r io.Reader, cfg SafeFontConfig, tag string) (*fontcore.Font, error)
	AddFontFromFile(path string, cfg SafeFontConfig) (*fontcore.Font, error)

	// AddFontFromSystem resolves name in the OS font directories.
	AddFontFromSystem(name string, cfg SafeFontConfig) (*fontcore.Font, error)

	// AddDefaultFont adds the factory's default font. A negative sizePx is
	// a multiple of the default size; zero means the default size. Empty
	// ranges mean the factory's default ranges.
	AddDefaultFont(sizePx float32, ranges []uint16) (*fontcore.Font, error)

	// AddGameGlyphs adds the glyphs of a prebaked game font style. With a
	// nil merge a new font is created; nil ranges mean every glyph.
	AddGameGlyphs(style gamefont.Style, ranges []uint16, merge *fontcore.Font) (*fontcore.Font, error)

	// AddExtraGlyphsForLanguage merges the factory's language fallback font
	// into cfg.MergeFont. Non-empty cfg.GlyphRanges restrict the added
	// glyphs. It does nothing when no fallback font is available.
	AddExtraGlyphsForLanguage(cfg SafeFontConfig) error

	// IgnoreGlobalScale sets FontScaleModeUndoGlobalScale on f.
	IgnoreGlobalScale(f *fontcore.Font)
	SetFontScaleMode(f *fontcore.Font, mode FontScaleMode)
	FontScaleMode(f *fontcore.Font) FontScaleMode

	// RegisterPostBuild queues fn to run after the substances finished the
	// post-build step.
	RegisterPostBuild(fn func(tk PostBuildToolkit) error)
}

// FontEditor edits built fonts.
type FontEditor interface {
	CopyGlyphsAcrossFonts(src, dst *fontcore.Font, missingOnly bool, lo, hi rune) bool
	BuildLookupTable(f *fontcore.Font)
	FitRatio(f *fontcore.Font)
}

// PostBuildToolkit edits the built fonts before they are installed.
type PostBuildToolkit interface {
	Toolkit
	FontEditor

	// Uploader is the factory's texture uploader.
	Uploader() gpuupload.Uploader

	// StoreTexture hands t to the built data and returns its atlas page.
	StoreTexture(t gpuupload.Texture) int
}

// PostPromotionToolkit edits fonts right after their build was installed.
type PostPromotionToolkit interface {
	Toolkit
	FontEditor
}

// buildToolkit is the single implementation of the toolkit interfaces. It
// lives for one build attempt, or for the promotion of one build.
type buildToolkit struct {
	fa     *FontAtlas
	root   *DataRoot
	logger *slog.Logger

	step  BuildStep
	scale float32
	async bool

	font       *fontcore.Font
	scaleModes map[*fontcore.Font]FontScaleMode
	kerning    []pendingKerning
	postBuild  []func(PostBuildToolkit) error

	substances []Substance
	game       *gameFontSubstance

	garbage *dispose.Scope
}

var (
	_ PreBuildToolkit      = (*buildToolkit)(nil)
	_ PostBuildToolkit     = (*buildToolkit)(nil)
	_ PostPromotionToolkit = (*buildToolkit)(nil)
)

func newBuildToolkit(fa *FontAtlas, root *DataRoot, async bool) *buildToolkit {
	tk := &buildToolkit{
		fa:         fa,
		root:       root,
		logger:     fa.logger(),
		scale:      root.Scale(),
		async:      async,
		scaleModes: make(map[*fontcore.Font]FontScaleMode),
		garbage:    dispose.New(),
	}
	for _, s := range root.Substances() {
		tk.addSubstance(s)
	}
	return tk
}

func (tk *buildToolkit) addSubstance(s Substance) {
	tk.substances = append(tk.substances, s)
	if gs, ok := s.(*gameFontSubstance); ok {
		tk.game = gs
	}
}

func (tk *buildToolkit) close() {
	if err := tk.garbage.Close(); err != nil {
		tk.logger.Error("fontatlas: disposing build garbage",
			slog.String("atlas", tk.fa.name),
			slog.Any("error", err))
	}
}

func (tk *buildToolkit) BuildStep() BuildStep         { return tk.step }
func (tk *buildToolkit) Scale() float32               { return tk.scale }
func (tk *buildToolkit) IsAsync() bool                { return tk.async }
func (tk *buildToolkit) Font() *fontcore.Font         { return tk.font }
func (tk *buildToolkit) SetFont(f *fontcore.Font)     { tk.font = f }
func (tk *buildToolkit) Atlas() fontcore.Atlas        { return tk.root.atlas }
func (tk *buildToolkit) Fonts() []*fontcore.Font      { return tk.root.atlas.Fonts() }
func (tk *buildToolkit) Uploader() gpuupload.Uploader { return tk.fa.factory.cfg.Uploader }

func (tk *buildToolkit) DisposeWithAtlas(c io.Closer) { dispose.Add(tk.root.garbage, c) }

func (tk *buildToolkit) DisposeAfterBuild(c io.Closer) { dispose.Add(tk.garbage, c) }

func (tk *buildToolkit) FontFor(h FontHandle) *fontcore.Font {
	if h == nil {
		return nil
	}
	for _, s := range tk.substances {
		if f := s.Font(h); f != nil {
			return f
		}
	}
	return nil
}

func (tk *buildToolkit) IgnoreGlobalScale(f *fontcore.Font) {
	tk.SetFontScaleMode(f, FontScaleModeUndoGlobalScale)
}

func (tk *buildToolkit) SetFontScaleMode(f *fontcore.Font, mode FontScaleMode) {
	if f == nil {
		return
	}
	if mode == FontScaleModeDefault {
		delete(tk.scaleModes, f)
		return
	}
	tk.scaleModes[f] = mode
}

func (tk *buildToolkit) FontScaleMode(f *fontcore.Font) FontScaleMode {
	return tk.scaleModes[f]
}

func (tk *buildToolkit) RegisterPostBuild(fn func(PostBuildToolkit) error) {
	tk.postBuild = append(tk.postBuild, fn)
}

func (tk *buildToolkit) StoreTexture(t gpuupload.Texture) int {
	return tk.root.storeTexture(t)
}

func (tk *buildToolkit) CopyGlyphsAcrossFonts(src, dst *fontcore.Font, missingOnly bool, lo, hi rune) bool {
	return fontcore.CopyGlyphsAcrossFonts(src, dst, missingOnly, lo, hi)
}

func (tk *buildToolkit) BuildLookupTable(f *fontcore.Font) {
	if f != nil {
		f.BuildLookupTable()
	}
}

func (tk *buildToolkit) FitRatio(f *fontcore.Font) {
	if f != nil {
		f.FitRatio()
	}
}
