package fontcore

import "math"

func floor32(v float32) float32 { return float32(math.Floor(float64(v))) }

// round32 rounds half away from zero.
func round32(v float32) float32 { return float32(math.Round(float64(v))) }

func trunc32(v float32) float32 { return float32(math.Trunc(float64(v))) }

// AdjustGlyphMetrics multiplies every metric of f by scale. When round is
// positive, font metrics, advances and kerning are then rounded to the
// nearest multiple of round; glyph quads are scaled without rounding.
// Descent is recomputed as FontSize - Ascent.
func (f *Font) AdjustGlyphMetrics(scale, round float32) {
	rounder := func(v float32) float32 { return v }
	if round > 0 {
		rounder = func(v float32) float32 { return round32(v/round) * round }
	}

	f.FontSize = rounder(f.FontSize * scale)
	f.Ascent = rounder(f.Ascent * scale)
	f.Descent = f.FontSize - f.Ascent
	if f.Config != nil {
		f.Config.SizePixels = rounder(f.Config.SizePixels * scale)
	}

	for i := range f.advance {
		f.advance[i] = rounder(f.advance[i] * scale)
	}
	for i := range f.Glyphs {
		g := &f.Glyphs[i]
		g.X0 *= scale
		g.X1 *= scale
		g.Y0 *= scale
		g.Y1 *= scale
		g.AdvanceX = rounder(g.AdvanceX * scale)
	}
	for i := range f.kerning {
		f.kerning[i].AdvanceX = rounder(f.kerning[i].AdvanceX * scale)
	}
}

// CopyGlyphsAcrossFonts copies the glyphs of src with codepoints in
// [lo, hi] into dst, rescaled to dst's size and re-anchored to dst's
// ascent. With missingOnly, glyphs dst already has are kept. Kerning pairs
// of src whose both sides were copied follow. If anything changed, dst's
// fallback is cleared and its lookup table rebuilt. Fonts that are nil or
// not loaded are left alone.
func CopyGlyphsAcrossFonts(src, dst *Font, missingOnly bool, lo, hi rune) (changed bool) {
	if !src.Loaded() || !dst.Loaded() || len(src.Glyphs) == 0 {
		return false
	}

	scale := dst.FontSize / src.FontSize
	added := make(map[rune]struct{})
	for _, g := range src.Glyphs {
		if g.Codepoint < lo || g.Codepoint > hi {
			continue
		}
		moved := g
		moved.X0 = g.X0 * scale
		moved.X1 = g.X1 * scale
		moved.Y0 = (g.Y0-src.Ascent)*scale + dst.Ascent
		moved.Y1 = (g.Y1-src.Ascent)*scale + dst.Ascent
		moved.AdvanceX = g.AdvanceX * scale

		prev := dst.FindGlyphNoFallback(g.Codepoint)
		switch {
		case prev == nil:
			added[g.Codepoint] = struct{}{}
			dst.AddGlyph(dst.Config, moved)
			changed = true
		case !missingOnly:
			added[g.Codepoint] = struct{}{}
			moved.Visible = prev.Visible
			*prev = moved
		}
	}

	if len(dst.Glyphs) == 0 {
		return changed
	}

	for _, kp := range src.kerning {
		_, l := added[kp.Left]
		_, r := added[kp.Right]
		if l && r {
			dst.AddKerningPair(kp.Left, kp.Right, kp.AdvanceX)
			changed = true
		}
	}

	if changed {
		dst.ClearFallback()
		dst.BuildLookupTable()
	}
	return changed
}

// FitRatio shrinks glyphs larger than the font size to fit a square cell
// of FontSize, centres every glyph in that cell and sets every advance to
// FontSize. The lookup table is rebuilt.
func (f *Font) FitRatio() {
	size := f.FontSize
	for i := range f.Glyphs {
		g := &f.Glyphs[i]
		w0, h0 := g.X1-g.X0, g.Y1-g.Y0
		ratio := float32(1)
		if w0 > size {
			ratio = max(ratio, w0/size)
		}
		if h0 > size {
			ratio = max(ratio, h0/size)
		}
		w := trunc32(w0 / ratio)
		h := round32(h0 / ratio)
		g.X0 = trunc32((size - w) / 2)
		g.Y0 = round32((size - h) / 2)
		g.X1 = g.X0 + w
		g.Y1 = g.Y0 + h
		g.AdvanceX = size
	}
	f.ClearFallback()
	f.BuildLookupTable()
}
