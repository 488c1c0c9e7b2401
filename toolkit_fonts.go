package fontatlas

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/flopp/go-findfont"

	"github.com/gogpu/fontatlas/fontcore"
	"github.com/gogpu/fontatlas/gamefont"
	"github.com/gogpu/fontatlas/glyphrange"
	"github.com/gogpu/fontatlas/gpuupload"
	"github.com/gogpu/fontatlas/truetype"
)

// pendingKerning holds the pair adjustments of one added config until the
// config has its final size.
type pendingKerning struct {
	cfg   *fontcore.FontConfig
	pairs []truetype.PairAdjustment
}

func (tk *buildToolkit) requireStep(step BuildStep) error {
	if tk.step != step {
		return fmt.Errorf("%w: needs %s, build is in %s", ErrWrongBuildStep, step, tk.step)
	}
	return nil
}

func (tk *buildToolkit) AddFontFromMemory(data []byte, cfg SafeFontConfig, tag string) (*fontcore.Font, error) {
	if err := tk.requireStep(BuildStepPreBuild); err != nil {
		return nil, err
	}
	return tk.addFont(data, cfg, tag)
}

func (tk *buildToolkit) AddFontFromReader(r io.Reader, cfg SafeFontConfig, tag string) (*fontcore.Font, error) {
	if err := tk.requireStep(BuildStepPreBuild); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("fontatlas: reading %s: %w", tag, err)
	}
	return tk.addFont(data, cfg, tag)
}

func (tk *buildToolkit) AddFontFromFile(path string, cfg SafeFontConfig) (*fontcore.Font, error) {
	if err := tk.requireStep(BuildStepPreBuild); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fontatlas: %w", err)
	}
	return tk.addFont(data, cfg, path)
}

func (tk *buildToolkit) AddFontFromSystem(name string, cfg SafeFontConfig) (*fontcore.Font, error) {
	if err := tk.requireStep(BuildStepPreBuild); err != nil {
		return nil, err
	}
	path, err := findfont.Find(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSystemFontNotFound, name, err)
	}
	return tk.AddFontFromFile(path, cfg)
}

func (tk *buildToolkit) AddDefaultFont(sizePx float32, ranges []uint16) (*fontcore.Font, error) {
	if err := tk.requireStep(BuildStepPreBuild); err != nil {
		return nil, err
	}
	factory := tk.fa.factory
	switch def := factory.cfg.DefaultFontSizePx; {
	case sizePx < 0:
		sizePx = -sizePx * def
	case sizePx == 0:
		sizePx = def
	}
	if len(ranges) == 0 {
		ranges = factory.DefaultGlyphRanges()
	}

	cfg := DefaultSafeFontConfig()
	cfg.SizePx = sizePx
	cfg.GlyphRanges = ranges
	f, err := tk.addFont(factory.cfg.DefaultFontData, cfg, "default")
	if err != nil {
		return nil, err
	}

	extra := cfg
	extra.GlyphRanges = nil
	extra.MergeFont = f
	if err := tk.AddExtraGlyphsForLanguage(extra); err != nil {
		tk.logger.Warn("fontatlas: language glyphs for the default font",
			slog.String("atlas", tk.fa.name),
			slog.Any("error", err))
	}
	return f, nil
}

func (tk *buildToolkit) AddGameGlyphs(style gamefont.Style, ranges []uint16, merge *fontcore.Font) (*fontcore.Font, error) {
	if err := tk.requireStep(BuildStepPreBuild); err != nil {
		return nil, err
	}
	if err := style.Validate(); err != nil {
		return nil, err
	}
	if ranges != nil {
		if err := glyphrange.Validate(ranges); err != nil {
			return nil, err
		}
	}
	return tk.game.addGameGlyphs(tk, style, ranges, merge)
}

func (tk *buildToolkit) AddExtraGlyphsForLanguage(cfg SafeFontConfig) error {
	if err := tk.requireStep(BuildStepPreBuild); err != nil {
		return err
	}
	if cfg.MergeFont == nil {
		return &ConfigError{Field: "MergeFont", Reason: "must be set"}
	}
	fb := tk.fa.factory.languageFont()
	if fb == nil {
		return nil
	}

	wanted := glyphrange.New().WithLanguage(tk.fa.factory.lang)
	if len(cfg.GlyphRanges) > 0 {
		restrict := glyphrange.New().WithRanges(cfg.GlyphRanges)
		both := glyphrange.New()
		for r := range glyphrange.Codepoints(wanted.BuildExact()) {
			if restrict.Has(r) {
				both.With(r)
			}
		}
		wanted = both
	}
	if wanted.Len() == 0 {
		return nil
	}

	cfg.FontNo = fb.fontNo
	cfg.GlyphRanges = wanted.BuildExact()
	_, err := tk.addFont(fb.data, cfg, fb.path)
	return err
}

// addFont adds a font file to the atlas and queues its kerning pairs.
func (tk *buildToolkit) addFont(data []byte, cfg SafeFontConfig, tag string) (*fontcore.Font, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fontatlas: %s: %w", tag, err)
	}
	if err := truetype.CheckCompatible(data, cfg.FontNo); err != nil {
		return nil, fmt.Errorf("fontatlas: %s: %w", tag, err)
	}
	if cfg.Name == "" {
		cfg.Name = tag
	}

	fc := cfg.fontConfig(data)
	f, err := tk.root.atlas.AddFont(&fc)
	if err != nil {
		return nil, fmt.Errorf("fontatlas: %s: %w", tag, err)
	}
	configs := tk.root.atlas.Configs()
	if pairs := tk.fa.factory.pairAdjustments(data, cfg.FontNo); len(pairs) > 0 {
		tk.kerning = append(tk.kerning, pendingKerning{cfg: configs[len(configs)-1], pairs: pairs})
	}

	tk.logger.Debug("fontatlas: font added",
		slog.String("atlas", tk.fa.name),
		slog.String("font", tag),
		slog.Float64("size_px", float64(cfg.SizePx)))
	return f, nil
}

// invalidMergeConfigs returns the configs whose destination font is not a
// font of the atlas, such as a font kept from an earlier build.
func (tk *buildToolkit) invalidMergeConfigs() []*fontcore.FontConfig {
	var bad []*fontcore.FontConfig
	for _, cfg := range tk.root.atlas.Configs() {
		if !fontcore.ContainsFont(tk.root.atlas, cfg.MergeFont) {
			bad = append(bad, cfg)
		}
	}
	return bad
}

// redirectMerges points bad configs at a newly added default font.
func (tk *buildToolkit) redirectMerges(bad []*fontcore.FontConfig) error {
	def, err := tk.AddDefaultFont(-1, nil)
	if err != nil {
		return err
	}
	for _, cfg := range bad {
		cfg.MergeFont = def
	}
	return nil
}

// normalizeScale applies the global scale to the configs of default mode
// fonts, then adds the queued kerning pairs at the final sizes.
func (tk *buildToolkit) normalizeScale() {
	for _, cfg := range tk.root.atlas.Configs() {
		if tk.FontScaleMode(cfg.MergeFont) == FontScaleModeDefault {
			scaleConfig(cfg, tk.scale)
		}
	}

	for _, k := range tk.kerning {
		in := glyphrange.New().WithRanges(k.cfg.GlyphRanges)
		for _, p := range k.pairs {
			if in.Has(p.Left) && in.Has(p.Right) {
				k.cfg.MergeFont.AddKerningPair(p.Left, p.Right, p.Distance*k.cfg.SizePixels)
			}
		}
	}
	tk.kerning = nil
}

// doBuild runs the packer. Its failure loses the whole build.
func (tk *buildToolkit) doBuild() error {
	tk.step = BuildStepBuild
	atlas := tk.root.atlas
	if len(atlas.Configs()) == 0 {
		cfg := DefaultSafeFontConfig()
		cfg.SizePx = 1
		cfg.GlyphRanges = []uint16{' ', ' ', 0}
		if _, err := tk.addFont(tk.fa.factory.cfg.DefaultFontData, cfg, "placeholder"); err != nil {
			return fmt.Errorf("%w: %w", ErrAtlasBuildFailed, err)
		}
	}

	start := time.Now()
	if err := atlas.Build(); err != nil {
		return fmt.Errorf("%w: %w", ErrAtlasBuildFailed, err)
	}
	w, h := atlas.TexSize()
	tk.logger.Debug("fontatlas: atlas packed",
		slog.String("atlas", tk.fa.name),
		slog.Int("width", w),
		slog.Int("height", h),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// unscaleFonts divides the metrics of scaled fonts back to logical units
// and picks their fallback and ellipsis glyphs.
func (tk *buildToolkit) unscaleFonts() {
	tk.step = BuildStepPostBuild
	inv := 1 / tk.scale
	for _, f := range tk.Fonts() {
		if tk.FontScaleMode(f) != FontScaleModeSkipHandling {
			f.AdjustGlyphMetrics(inv, inv)
		}
		selectFallbackAndEllipsis(f)
	}
}

func (tk *buildToolkit) runPostBuildActions() {
	for i, fn := range tk.postBuild {
		if err := invokeSafely(func() error { return fn(tk) }); err != nil {
			tk.logger.Error("fontatlas: post-build action failed",
				slog.String("atlas", tk.fa.name),
				slog.Int("action", i),
				slog.Any("error", err))
		}
	}
	tk.postBuild = nil
}

func (tk *buildToolkit) buildLookupTables() {
	for _, f := range tk.Fonts() {
		f.BuildLookupTable()
	}
}

// uploadTextures uploads the pixel pages that have no texture yet and
// hands the textures to the built data.
func (tk *buildToolkit) uploadTextures() error {
	u := tk.Uploader()
	for i, page := range tk.root.atlas.Textures() {
		if page.ID != 0 {
			continue
		}
		var (
			t   gpuupload.Texture
			err error
		)
		switch {
		case page.RGBA32 != nil:
			t, err = gpuupload.UploadRGBA32(u, page.RGBA32, page.Width, page.Height)
		case page.Alpha8 != nil:
			t, err = gpuupload.UploadAlpha8(u, page.Alpha8, page.Width, page.Height)
		default:
			tk.logger.Warn("fontatlas: texture page without pixels",
				slog.String("atlas", tk.fa.name),
				slog.Int("page", i))
			continue
		}
		if err != nil {
			return fmt.Errorf("fontatlas: uploading page %d: %w", i, err)
		}
		tk.root.addTexture(t)
		page.ID = t.ID()
		page.Alpha8, page.RGBA32 = nil, nil
	}
	return nil
}

// selectFallbackAndEllipsis picks the first available fallback and
// ellipsis codepoints.
func selectFallbackAndEllipsis(f *fontcore.Font) {
	for _, r := range glyphrange.FallbackCodepoints {
		if f.SetFallbackChar(r) {
			break
		}
	}
	if f.EllipsisChar >= 0 && f.FindGlyphNoFallback(f.EllipsisChar) != nil {
		return
	}
	f.EllipsisChar = -1
	for _, r := range glyphrange.EllipsisCodepoints {
		if f.FindGlyphNoFallback(r) != nil {
			f.EllipsisChar = r
			return
		}
	}
}
