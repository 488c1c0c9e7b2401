package gamefont

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Style is a requested rendition of a prebaked family. Style is comparable
// and used as a map key by the atlas.
type Style struct {
	FamilyAndSize FamilyAndSize

	// SizePx is the rendered pixel size.
	SizePx float32

	// Weight is the synthetic emboldening strength in pixels. 0 renders
	// the prebaked glyphs unchanged.
	Weight float32

	// SkewStrength is the synthetic horizontal shear at SizePx, in pixels
	// across the line height. Positive values lean right.
	SkewStrength float32
}

// NewStyle returns a style of family at sizePx, using the recommended
// prebaked size.
func NewStyle(family Family, sizePx float32) Style {
	return Style{
		FamilyAndSize: RecommendedFamilyAndSize(family, sizePx*3/4),
		SizePx:        sizePx,
	}
}

// StyleOf returns f at its native size.
func StyleOf(f FamilyAndSize) Style {
	return Style{FamilyAndSize: f, SizePx: f.BaseSizePx()}
}

// SizePt is SizePx in points.
func (s Style) SizePt() float32 { return s.SizePx * 3 / 4 }

// WithSizePt returns s resized to pt points.
func (s Style) WithSizePt(pt float32) Style {
	s.SizePx = pt * 4 / 3
	return s
}

// Family is the typeface of s.
func (s Style) Family() Family { return s.FamilyAndSize.Family() }

// BaseSizePx is the pixel size of the prebaked font.
func (s Style) BaseSizePx() float32 { return s.FamilyAndSize.BaseSizePx() }

// BaseSkewStrength is SkewStrength expressed at the prebaked size.
func (s Style) BaseSkewStrength() float32 {
	if s.SizePx == 0 {
		return 0
	}
	return s.SkewStrength * s.BaseSizePx() / s.SizePx
}

// WithBaseSkewStrength returns s with the skew set from a strength
// expressed at the prebaked size.
func (s Style) WithBaseSkewStrength(v float32) Style {
	if base := s.BaseSizePx(); base != 0 {
		s.SkewStrength = v * s.SizePx / base
	}
	return s
}

// Bold reports whether s is emboldened.
func (s Style) Bold() bool { return s.Weight > 0 }

// WithBold returns s with weight 1 or 0.
func (s Style) WithBold(bold bool) Style {
	s.Weight = 0
	if bold {
		s.Weight = 1
	}
	return s
}

// Italic reports whether s is skewed.
func (s Style) Italic() bool { return s.SkewStrength != 0 }

// WithItalic returns s with a skew of one sixth of its size, or none.
func (s Style) WithItalic(italic bool) Style {
	s.SkewStrength = 0
	if italic {
		s.SkewStrength = s.SizePx / 6
	}
	return s
}

// Synthesized reports whether glyphs of s need to be re-rendered instead of
// being referenced from the prebaked textures.
func (s Style) Synthesized() bool { return s.Weight > 0 || s.SkewStrength != 0 }

// Scale returns s scaled by scale, switching to the prebaked size
// recommended for the new point size.
func (s Style) Scale(scale float32) Style {
	return Style{
		FamilyAndSize: RecommendedFamilyAndSize(s.Family(), s.SizePt()*scale),
		SizePx:        s.SizePx * scale,
		Weight:        s.Weight,
		SkewStrength:  s.SkewStrength * scale,
	}
}

// BaseWidthAdjustment returns how many extra columns a glyph needs at the
// prebaked size to hold the synthetic weight and skew of s.
func (s Style) BaseWidthAdjustment(h FontHeader, e Entry) int {
	delta := s.Weight
	if h.LineHeight != 0 {
		lh := float32(h.LineHeight)
		switch skew := s.BaseSkewStrength(); {
		case skew > 0:
			delta += skew * float32(h.LineHeight-int32(e.CurrentOffsetY)) / lh
		case skew < 0:
			delta -= skew * float32(int32(e.CurrentOffsetY)+int32(e.BoundingHeight)) / lh
		}
	}
	return int(math.Ceil(float64(delta)))
}

// Validate checks that s names a prebaked font and has a usable size.
func (s Style) Validate() error {
	switch {
	case !s.FamilyAndSize.Valid():
		return errors.Wrapf(ErrUnknownFamily, "style %v", s)
	case !finite(s.SizePx) || s.SizePx <= 0:
		return errors.Wrapf(ErrInvalidStyle, "size %v must be positive", s.SizePx)
	case !finite(s.Weight) || s.Weight < 0:
		return errors.Wrapf(ErrInvalidStyle, "weight %v must be non-negative", s.Weight)
	case !finite(s.SkewStrength):
		return errors.Wrapf(ErrInvalidStyle, "skew %v must be finite", s.SkewStrength)
	}
	return nil
}

func (s Style) String() string {
	return fmt.Sprintf("GameFontStyle(%s, %gpt, skew=%g, weight=%g)", s.FamilyAndSize, s.SizePt(), s.SkewStrength, s.Weight)
}
