package fontatlas

import (
	"log/slog"
	"os"
	"sync"

	"github.com/flopp/go-findfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/language"

	"github.com/gogpu/fontatlas/framethread"
	"github.com/gogpu/fontatlas/gamefont"
	"github.com/gogpu/fontatlas/glyphrange"
	"github.com/gogpu/fontatlas/gpuupload"
	"github.com/gogpu/fontatlas/internal/cache"
	"github.com/gogpu/fontatlas/softatlas"
	"github.com/gogpu/fontatlas/truetype"
)

// FactoryConfig holds the environment shared by the atlases of a factory.
type FactoryConfig struct {
	// Scale returns the global UI scale. Nil means 1.
	Scale func() float32

	// Language is the BCP 47 tag selecting language glyph presets and the
	// language fallback font. Default: "en"
	Language string

	// LanguageFontFiles overrides the system font names searched for the
	// language fallback font. The first compatible match wins.
	LanguageFontFiles []string

	// Uploader turns texture pages into GPU textures. Required.
	Uploader gpuupload.Uploader

	// Assets serves the game font files. Nil disables game fonts.
	Assets gamefont.AssetSource

	// RendererReady, when set, is waited on before textures are uploaded.
	RendererReady <-chan struct{}

	// Dispatcher, when set, runs async build installation and rebuild
	// recommendations on the frame thread.
	Dispatcher framethread.Dispatcher

	// DefaultFontSizePx is the size of AddDefaultFont(0, ...). Default: 16
	DefaultFontSizePx float32

	// DefaultFontData is the default font file. Default: Go Regular
	DefaultFontData []byte

	// Atlas configures the atlas primitive of every build.
	Atlas softatlas.Config

	// PairCacheSize is the per-shard limit of the kerning pair cache. It
	// must be at least 1. Default: 64
	PairCacheSize int

	// Logger overrides the package logger for this factory.
	Logger *slog.Logger
}

// DefaultFactoryConfig returns a config with every default set. Uploader
// must still be provided.
func DefaultFactoryConfig() FactoryConfig {
	return FactoryConfig{
		Language:          "en",
		DefaultFontSizePx: 16,
		DefaultFontData:   goregular.TTF,
		Atlas:             softatlas.DefaultConfig(),
		PairCacheSize:     64,
	}
}

// Validate checks if the configuration is valid.
func (c *FactoryConfig) Validate() error {
	if c.Uploader == nil {
		return &ConfigError{Field: "Uploader", Reason: "must be set"}
	}
	if !(c.DefaultFontSizePx > 0) {
		return &ConfigError{Field: "DefaultFontSizePx", Reason: "must be positive"}
	}
	if len(c.DefaultFontData) == 0 {
		return &ConfigError{Field: "DefaultFontData", Reason: "must not be empty"}
	}
	if c.PairCacheSize < 1 {
		return &ConfigError{Field: "PairCacheSize", Reason: "must be at least 1"}
	}
	if _, err := language.Parse(c.Language); err != nil {
		return &ConfigError{Field: "Language", Reason: err.Error()}
	}
	if err := c.Atlas.Validate(); err != nil {
		return err
	}
	return nil
}

// faceCacheSize is the per-shard limit of the parsed font cache.
const faceCacheSize = 16

// languageFonts lists well known system fonts per base language.
var languageFonts = map[string][]string{
	"ja": {"NotoSansCJKjp-Regular.otf", "NotoSansJP-Regular.ttf", "YuGothM.ttc", "msgothic.ttc"},
	"zh": {"NotoSansCJKsc-Regular.otf", "NotoSansSC-Regular.ttf", "msyh.ttc", "simsun.ttc"},
	"ko": {"NotoSansCJKkr-Regular.otf", "NotoSansKR-Regular.ttf", "malgun.ttf"},
}

type languageFont struct {
	data   []byte
	path   string
	fontNo int
}

type pairKey struct {
	cache.ContentKey
	FontNo int
}

// Factory creates font atlases sharing an uploader, a game font library
// and a kerning pair cache.
type Factory struct {
	cfg     FactoryConfig
	lang    language.Tag
	library *gamefont.Library
	pairs   *cache.ShardedCache[pairKey, []truetype.PairAdjustment]
	faces   *softatlas.FaceCache

	languageFont func() *languageFont
}

// NewFactory creates a factory.
func NewFactory(cfg FactoryConfig) (*Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Factory{
		cfg:  cfg,
		lang: language.Make(cfg.Language),
		pairs: cache.NewSharded[pairKey, []truetype.PairAdjustment](cfg.PairCacheSize, func(k pairKey) uint64 {
			return cache.ContentKeyHasher(k.ContentKey) + uint64(k.FontNo)
		}),
		faces: cfg.Atlas.Faces,
	}
	if f.faces == nil {
		f.faces = softatlas.NewFaceCache(faceCacheSize)
	}
	if cfg.Assets != nil {
		f.library = gamefont.NewLibrary(cfg.Assets)
	}
	f.languageFont = sync.OnceValue(f.findLanguageFont)
	return f, nil
}

func (f *Factory) logger() *slog.Logger {
	if f.cfg.Logger != nil {
		return f.cfg.Logger
	}
	return Logger()
}

// NewFontAtlas creates an atlas. With globalScaled the atlas rasterizes at
// the factory's global scale.
func (f *Factory) NewFontAtlas(name string, mode RebuildMode, globalScaled bool) (*FontAtlas, error) {
	if mode < RebuildModeDisable || mode > RebuildModeAsync {
		return nil, &ConfigError{Field: "RebuildMode", Reason: "unknown mode " + mode.String()}
	}
	return newFontAtlas(f, name, mode, globalScaled), nil
}

// Library returns the game font library, or nil without assets.
func (f *Factory) Library() *gamefont.Library { return f.library }

// Language returns the parsed language tag.
func (f *Factory) Language() language.Tag { return f.lang }

// Scale returns the current global scale.
func (f *Factory) Scale() float32 {
	if f.cfg.Scale == nil {
		return 1
	}
	return f.cfg.Scale()
}

// DefaultGlyphRanges returns Basic Latin and Latin-1 plus the glyphs of
// the factory language, with fallback and ellipsis codepoints.
func (f *Factory) DefaultGlyphRanges() []uint16 {
	return glyphrange.New().
		WithRange(0x20, 0xFF).
		WithLanguage(f.lang).
		Build(true, true)
}

// pairAdjustments returns the cached kerning pairs of a font file.
func (f *Factory) pairAdjustments(data []byte, fontNo int) []truetype.PairAdjustment {
	key := pairKey{ContentKey: cache.KeyOf(data), FontNo: fontNo}
	return f.pairs.GetOrCreate(key, func() []truetype.PairAdjustment {
		return truetype.ExtractHorizontalPairAdjustments(data, fontNo)
	})
}

func (f *Factory) findLanguageFont() *languageFont {
	names := f.cfg.LanguageFontFiles
	if len(names) == 0 {
		base, _ := f.lang.Base()
		names = languageFonts[base.String()]
	}
	for _, name := range names {
		path, err := findfont.Find(name)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			f.logger().Warn("fontatlas: reading language font",
				slog.String("path", path),
				slog.Any("error", err))
			continue
		}
		if err := truetype.CheckCompatible(data, 0); err != nil {
			f.logger().Debug("fontatlas: language font not usable",
				slog.String("path", path),
				slog.Any("error", err))
			continue
		}
		f.logger().Debug("fontatlas: language font selected",
			slog.String("language", f.lang.String()),
			slog.String("path", path))
		return &languageFont{data: data, path: path}
	}
	if len(names) > 0 {
		f.logger().Debug("fontatlas: no language font found",
			slog.String("language", f.lang.String()))
	}
	return nil
}
