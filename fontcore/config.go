package fontcore

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/fontatlas/glyphrange"
)

// FontConfig describes one font source added to an atlas. Several configs
// may feed the same Font through MergeFont.
type FontConfig struct {
	// Name is a free-form label used in logs.
	Name string

	// FontData is the SFNT or TTC file content. The atlas keeps a
	// reference; callers must not modify it afterwards.
	FontData []byte

	// FontNo selects the face inside a TTC collection.
	FontNo int

	// SizePixels is the line height in pixels, ascender to descender.
	SizePixels float32

	// OversampleH and OversampleV rasterize at a higher resolution and
	// downsample. Default: 1.
	OversampleH int
	OversampleV int

	// PixelSnapH aligns advances to whole pixels. Default: true.
	PixelSnapH bool

	// GlyphExtraSpacing is added to every advance (only X is used).
	GlyphExtraSpacing mgl32.Vec2

	// GlyphOffset shifts every glyph quad.
	GlyphOffset mgl32.Vec2

	// GlyphRanges is a zero-terminated range list; nil means the default
	// set.
	GlyphRanges []uint16

	// GlyphMinAdvanceX and GlyphMaxAdvanceX clamp every advance.
	GlyphMinAdvanceX float32
	GlyphMaxAdvanceX float32

	// MergeFont, when set, adds the glyphs into an existing font instead
	// of creating a new one. Configs stored by an atlas always carry
	// their destination font here.
	MergeFont *Font

	// RasterizerMultiply scales coverage values. Default: 1.
	RasterizerMultiply float32

	// RasterizerGamma is applied to coverage before multiplying.
	// Default: 1.7.
	RasterizerGamma float32

	// EllipsisChar overrides the ellipsis glyph. -1 selects automatically.
	EllipsisChar rune
}

// DefaultFontConfig returns a configuration with the atlas defaults and no
// font data.
func DefaultFontConfig() FontConfig {
	return FontConfig{
		OversampleH:        1,
		OversampleV:        1,
		PixelSnapH:         true,
		GlyphMaxAdvanceX:   math.MaxFloat32,
		RasterizerMultiply: 1,
		RasterizerGamma:    1.7,
		EllipsisChar:       -1,
	}
}

// SizePt returns SizePixels in points.
func (c *FontConfig) SizePt() float32 { return c.SizePixels * 3 / 4 }

// SetSizePt sets SizePixels from a size in points.
func (c *FontConfig) SetSizePt(pt float32) { c.SizePixels = pt * 4 / 3 }

// Validate checks if the configuration is valid.
func (c *FontConfig) Validate() error {
	if c.FontNo < 0 {
		return &ConfigError{Field: "FontNo", Reason: "must not be negative"}
	}
	if !(c.SizePixels > 0) || !finite(c.SizePixels) {
		return &ConfigError{Field: "SizePixels", Reason: "must be a positive number"}
	}
	if c.OversampleH < 1 {
		return &ConfigError{Field: "OversampleH", Reason: "must be at least 1"}
	}
	if c.OversampleV < 1 {
		return &ConfigError{Field: "OversampleV", Reason: "must be at least 1"}
	}
	if !finite(c.GlyphMinAdvanceX) {
		return &ConfigError{Field: "GlyphMinAdvanceX", Reason: "must be a finite number"}
	}
	if !finite(c.GlyphMaxAdvanceX) {
		return &ConfigError{Field: "GlyphMaxAdvanceX", Reason: "must be a finite number"}
	}
	if !(c.RasterizerMultiply > 0) {
		return &ConfigError{Field: "RasterizerMultiply", Reason: "must be a positive number"}
	}
	if !(c.RasterizerGamma > 0) {
		return &ConfigError{Field: "RasterizerGamma", Reason: "must be a positive number"}
	}
	if err := glyphrange.Validate(c.GlyphRanges); err != nil {
		return &RangeError{Err: err}
	}
	return nil
}

// ClampFinite maps infinities and NaN to ±math.MaxFloat32, keeping the
// sign of v (NaN maps to -MaxFloat32).
func ClampFinite(v float32) float32 {
	if finite(v) {
		return v
	}
	if v > 0 {
		return math.MaxFloat32
	}
	return -math.MaxFloat32
}

func finite(v float32) bool {
	return !math.IsInf(float64(v), 0) && !math.IsNaN(float64(v))
}
