package fontatlas

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/fontatlas/fontcore"
	"github.com/gogpu/fontatlas/glyphrange"
)

// SafeFontConfig is the font configuration accepted by the build toolkit.
// Start from DefaultSafeFontConfig; numeric fields left at zero take their
// default when the config is converted.
type SafeFontConfig struct {
	// Name labels the font in logs.
	Name string

	// SizePx is the line height in pixels before the global scale.
	SizePx float32

	// FontNo selects the face of a TTC collection.
	FontNo int

	OversampleH int
	OversampleV int
	PixelSnapH  bool

	GlyphExtraSpacing mgl32.Vec2
	GlyphOffset       mgl32.Vec2

	// GlyphRanges is a zero-terminated range list. Empty means
	// glyphrange.Default.
	GlyphRanges []uint16

	GlyphMinAdvanceX float32
	GlyphMaxAdvanceX float32

	// MergeFont adds the glyphs to an existing font of the same build.
	MergeFont *fontcore.Font

	RasterizerMultiply float32
	RasterizerGamma    float32

	// EllipsisChar picks the ellipsis glyph; 0 or -1 select automatically.
	EllipsisChar rune
}

// DefaultSafeFontConfig returns the defaults of the atlas primitive.
func DefaultSafeFontConfig() SafeFontConfig {
	d := fontcore.DefaultFontConfig()
	return SafeFontConfig{
		OversampleH:        d.OversampleH,
		OversampleV:        d.OversampleV,
		PixelSnapH:         d.PixelSnapH,
		GlyphMaxAdvanceX:   d.GlyphMaxAdvanceX,
		RasterizerMultiply: d.RasterizerMultiply,
		RasterizerGamma:    d.RasterizerGamma,
		EllipsisChar:       d.EllipsisChar,
	}
}

// SizePt returns SizePx in points.
func (c SafeFontConfig) SizePt() float32 { return c.SizePx * 3 / 4 }

// WithSizePt returns c with SizePx set from a size in points.
func (c SafeFontConfig) WithSizePt(pt float32) SafeFontConfig {
	c.SizePx = pt * 4 / 3
	return c
}

// Validate checks if the configuration is valid.
func (c SafeFontConfig) Validate() error {
	fc := c.fontConfig(nil)
	return fc.Validate()
}

// fontConfig converts c for the atlas primitive, filling zero fields with
// defaults and empty ranges with glyphrange.Default.
func (c SafeFontConfig) fontConfig(data []byte) fontcore.FontConfig {
	d := fontcore.DefaultFontConfig()
	fc := fontcore.FontConfig{
		Name:               c.Name,
		FontData:           data,
		FontNo:             c.FontNo,
		SizePixels:         c.SizePx,
		OversampleH:        orDefault(c.OversampleH, d.OversampleH),
		OversampleV:        orDefault(c.OversampleV, d.OversampleV),
		PixelSnapH:         c.PixelSnapH,
		GlyphExtraSpacing:  c.GlyphExtraSpacing,
		GlyphOffset:        c.GlyphOffset,
		GlyphRanges:        c.GlyphRanges,
		GlyphMinAdvanceX:   c.GlyphMinAdvanceX,
		GlyphMaxAdvanceX:   orDefault(c.GlyphMaxAdvanceX, d.GlyphMaxAdvanceX),
		MergeFont:          c.MergeFont,
		RasterizerMultiply: orDefault(c.RasterizerMultiply, d.RasterizerMultiply),
		RasterizerGamma:    orDefault(c.RasterizerGamma, d.RasterizerGamma),
		EllipsisChar:       c.EllipsisChar,
	}
	if fc.EllipsisChar == 0 {
		fc.EllipsisChar = -1
	}
	if len(fc.GlyphRanges) == 0 {
		fc.GlyphRanges = glyphrange.Default()
	}
	return fc
}

func orDefault[T int | float32](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}

// scaleConfig multiplies the size and spacing fields of cfg by scale,
// clamping non-finite results.
func scaleConfig(cfg *fontcore.FontConfig, scale float32) {
	cfg.SizePixels *= scale
	cfg.GlyphMaxAdvanceX = fontcore.ClampFinite(cfg.GlyphMaxAdvanceX * scale)
	cfg.GlyphMinAdvanceX = fontcore.ClampFinite(cfg.GlyphMinAdvanceX * scale)
	cfg.GlyphOffset = mgl32.Vec2{
		fontcore.ClampFinite(cfg.GlyphOffset.X() * scale),
		fontcore.ClampFinite(cfg.GlyphOffset.Y() * scale),
	}
}

// safeScale maps unusable scale values to 1.
func safeScale(v float32) float32 {
	if !(v > 0) || math.IsInf(float64(v), 0) {
		return 1
	}
	return v
}
