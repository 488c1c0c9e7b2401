package fontatlas

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/fontatlas/fontcore"
	"github.com/gogpu/fontatlas/gamefont"
	"github.com/gogpu/fontatlas/glyphrange"
	"github.com/gogpu/fontatlas/gpuupload"
)

// glyphDrawPlan lays out one scaled game font style for one build. The
// full font receives every glyph of the pinned FDT; targets receive copies
// of the codepoints they asked for.
type glyphDrawPlan struct {
	// style is already multiplied by the global scale.
	style   gamefont.Style
	scale   float32
	fdt     *gamefont.FDT
	library *gamefont.Library

	full    *fontcore.Font
	targets []*planTarget

	// rects maps a codepoint to its custom rect in the atlas.
	rects map[rune]int

	// bgra caches the expanded TEX files by file index.
	bgra map[int][]byte

	// sources are the unscaled styles resolved to this plan.
	sources []gamefont.Style
	failed  bool
}

type planTarget struct {
	font   *fontcore.Font
	wanted *glyphrange.Builder

	// owned targets were created for the plan and take its metrics.
	owned bool
}

func newGlyphDrawPlan(style gamefont.Style, scale float32, fdt *gamefont.FDT, library *gamefont.Library) *glyphDrawPlan {
	return &glyphDrawPlan{
		style:   style,
		scale:   scale,
		fdt:     fdt,
		library: library,
		rects:   make(map[rune]int),
		bgra:    make(map[int][]byte),
	}
}

// pixelScale converts prebaked pixels into rasterized pixels.
func (p *glyphDrawPlan) pixelScale() float32 {
	if p.fdt.FontHeader.Size <= 0 {
		return 1
	}
	return p.style.SizePt() / p.fdt.FontHeader.Size
}

// attachFont requests the codepoints of ranges, or every FDT glyph for nil
// ranges, in target.
func (p *glyphDrawPlan) attachFont(target *fontcore.Font, ranges []uint16, owned bool) {
	if target == p.full {
		return
	}
	if ranges == nil {
		ranges = p.fdt.Ranges(nil)
	}
	for _, t := range p.targets {
		if t.font == target {
			t.wanted.WithRanges(ranges)
			return
		}
	}
	p.targets = append(p.targets, &planTarget{
		font:   target,
		wanted: glyphrange.New().WithRanges(ranges),
		owned:  owned,
	})
}

// addKerning copies the FDT kerning into the full font in rasterized
// pixels.
func (p *glyphDrawPlan) addKerning() {
	ps := p.pixelScale()
	for _, k := range p.fdt.Kerning {
		p.full.AddKerningPair(k.Left(), k.Right(), float32(k.RightOffset)*ps)
	}
}

// glyphs yields the FDT entries that become glyphs.
func (p *glyphDrawPlan) glyphs() []gamefont.Entry {
	out := make([]gamefont.Entry, 0, len(p.fdt.Glyphs))
	for _, e := range p.fdt.Glyphs {
		if e.Codepoint() >= ' ' {
			out = append(out, e)
		}
	}
	return out
}

// ensureGlyphs reserves a custom rect for each glyph a synthesized style
// has to draw. Glyphs without pixels get no rect.
func (p *glyphDrawPlan) ensureGlyphs(atlas fontcore.Atlas) error {
	if !p.style.Synthesized() {
		return nil
	}
	hOff := float32(p.style.FamilyAndSize.HorizontalOffset())
	for _, e := range p.glyphs() {
		c := e.Codepoint()
		if _, ok := p.rects[c]; ok {
			continue
		}
		w := int(e.BoundingWidth) + p.style.BaseWidthAdjustment(p.fdt.FontHeader, e)
		h := int(e.BoundingHeight)
		if w <= 0 || h <= 0 {
			continue
		}
		id, err := atlas.AddCustomRectFontGlyph(p.full, c, w, h,
			float32(e.AdvanceWidth()), mgl32.Vec2{hOff, float32(e.CurrentOffsetY)})
		if err != nil {
			return fmt.Errorf("fontatlas: reserving %U: %w", c, err)
		}
		p.rects[c] = id
	}
	return nil
}

// setFullRangeFontGlyphs fills the full font: metrics, then either the
// synthesized rect glyphs or glyphs referencing the prebaked textures.
func (p *glyphDrawPlan) setFullRangeFontGlyphs(tk PostBuildToolkit, pages *channelPages) error {
	ps := p.pixelScale()
	hdr := p.fdt.FontHeader
	f := p.full
	f.FontSize = p.style.SizePx
	f.Ascent = float32(hdr.Ascent) * ps
	f.Descent = float32(hdr.Descent()) * ps
	if f.Config != nil {
		f.Config.SizePixels = f.FontSize
	}

	if p.style.Synthesized() {
		return p.drawSynthesized(tk.Atlas(), ps)
	}
	return p.referencePrebaked(tk, pages, ps)
}

func (p *glyphDrawPlan) drawSynthesized(atlas fontcore.Atlas, ps float32) error {
	hOff := float32(p.style.FamilyAndSize.HorizontalOffset())
	stride, _ := atlas.TexSize()
	for _, e := range p.glyphs() {
		c := e.Codepoint()
		id, ok := p.rects[c]
		if !ok {
			x0, y0 := hOff*ps, float32(e.CurrentOffsetY)*ps
			p.full.AddGlyph(nil, fontcore.Glyph{
				Codepoint: c,
				X0:        x0,
				Y0:        y0,
				X1:        x0,
				Y1:        y0,
				AdvanceX:  float32(e.AdvanceWidth()) * ps,
			})
			continue
		}

		r := atlas.CustomRect(id)
		if r == nil || !r.IsPacked() {
			return fmt.Errorf("fontatlas: rect of %U was not packed", c)
		}
		page := atlas.Textures()[r.TextureIndex]
		if page.Alpha8 == nil {
			return fmt.Errorf("fontatlas: page %d has no coverage pixels", r.TextureIndex)
		}
		src, texW, texH, err := p.texture(e.TextureFileIndex())
		if err != nil {
			return err
		}
		p.synthesize(page.Alpha8, stride, r, src, texW, texH, e)

		g := p.full.FindGlyphNoFallback(c)
		if g == nil {
			return fmt.Errorf("fontatlas: rect glyph %U missing after build", c)
		}
		g.X0 *= ps
		g.Y0 *= ps
		g.X1 *= ps
		g.Y1 *= ps
		g.AdvanceX *= ps
	}
	return nil
}

func (p *glyphDrawPlan) texture(fileIndex int) (bgra []byte, w, h int, err error) {
	tex, err := p.library.Tex(p.style.FamilyAndSize.TexPathFormat(), fileIndex)
	if err != nil {
		return nil, 0, 0, err
	}
	bgra, ok := p.bgra[fileIndex]
	if !ok {
		bgra = tex.BGRA8()
		p.bgra[fileIndex] = bgra
	}
	return bgra, tex.Width, tex.Height, nil
}

// synthesize draws glyph e into rect r of an alpha page, emboldened by the
// style weight and sheared by its skew.
func (p *glyphDrawPlan) synthesize(dst []byte, stride int, r *fontcore.CustomRect, src []byte, texW, texH int, e gamefont.Entry) {
	for y := range r.Height {
		clear(dst[(r.Y+y)*stride+r.X : (r.Y+y)*stride+r.X+r.Width])
	}

	ch := e.TextureChannelByteIndex()
	w0 := int(e.BoundingWidth)
	at := func(x, y int) float32 {
		if x < 0 || x >= w0 {
			return 0
		}
		sx, sy := int(e.TextureOffsetX)+x, int(e.TextureOffsetY)+y
		if sx >= texW || sy >= texH {
			return 0
		}
		return float32(src[4*(sy*texW+sx)+ch])
	}

	weight := p.style.Weight
	skew := p.style.BaseSkewStrength()
	lh := float32(p.fdt.FontHeader.LineHeight)
	offY := float32(e.CurrentOffsetY)
	passes := max(1, int(math.Ceil(float64(weight+1))))

	for xbold := range passes {
		strength := min(1, weight+1-float32(xbold))
		for y := range min(int(e.BoundingHeight), r.Height) {
			xDelta := float32(xbold)
			if lh > 0 {
				switch {
				case skew > 0:
					xDelta += skew * (lh - offY - float32(y)) / lh
				case skew < 0:
					xDelta -= skew * (offY + float32(y)) / lh
				}
			}
			shift := float32(math.Floor(float64(xDelta)))
			frac := xDelta - shift

			row := dst[(r.Y+y)*stride+r.X : (r.Y+y)*stride+r.X+r.Width]
			for x := -1; x < w0; x++ {
				d := x + 1 + int(shift)
				if d < 0 || d >= len(row) {
					continue
				}
				n := at(x, y)*frac + at(x+1, y)*(1-frac)
				row[d] = max(row[d], byte(min(255, strength*n)))
			}
		}
	}
}

func (p *glyphDrawPlan) referencePrebaked(tk PostBuildToolkit, pages *channelPages, ps float32) error {
	hdr := p.fdt.FontHeader
	format := p.style.FamilyAndSize.TexPathFormat()
	hOff := float32(p.style.FamilyAndSize.HorizontalOffset())
	for _, e := range p.glyphs() {
		bw, bh := float32(e.BoundingWidth), float32(e.BoundingHeight)
		x0, y0 := hOff, float32(e.CurrentOffsetY)
		g := fontcore.Glyph{
			Codepoint: e.Codepoint(),
			X0:        x0 * ps,
			Y0:        y0 * ps,
			X1:        (x0 + bw) * ps,
			Y1:        (y0 + bh) * ps,
			AdvanceX:  float32(e.AdvanceWidth()) * ps,
		}
		if bw > 0 && bh > 0 {
			page, w, h, err := pages.page(tk, format, int(e.TextureIndex))
			if err != nil {
				return err
			}
			tw, th := float32(hdr.TextureWidth), float32(hdr.TextureHeight)
			if tw == 0 || th == 0 {
				tw, th = float32(w), float32(h)
			}
			tx, ty := float32(e.TextureOffsetX), float32(e.TextureOffsetY)
			g.TextureIndex = page
			g.U0, g.V0 = tx/tw, ty/th
			g.U1, g.V1 = (tx+bw)/tw, (ty+bh)/th
		}
		p.full.AddGlyph(nil, g)
	}
	return nil
}

// postProcessFullRangeFont picks fallback and ellipsis glyphs and converts
// the full font to logical units.
func (p *glyphDrawPlan) postProcessFullRangeFont() {
	selectFallbackAndEllipsis(p.full)
	inv := 1 / p.scale
	p.full.AdjustGlyphMetrics(inv, inv)
}

// copyGlyphsToRanges copies the requested codepoints from the full font
// into every target.
func (p *glyphDrawPlan) copyGlyphsToRanges(tk FontEditor) {
	inv := 1 / p.scale
	for _, t := range p.targets {
		if t.owned {
			t.font.AdjustGlyphMetrics(inv, inv)
			t.font.FontSize = p.full.FontSize
			t.font.Ascent = p.full.Ascent
			t.font.Descent = p.full.Descent
			if t.font.Config != nil {
				t.font.Config.SizePixels = p.full.FontSize
			}
		}
		for lo, hi := range glyphrange.Pairs(t.wanted.BuildExact()) {
			tk.CopyGlyphsAcrossFonts(p.full, t.font, true, lo, hi)
		}

		ratio := t.font.FontSize / p.full.FontSize
		for _, kp := range p.full.KerningPairs() {
			if !t.wanted.Has(kp.Left) || !t.wanted.Has(kp.Right) || t.font.Distance(kp.Left, kp.Right) != 0 {
				continue
			}
			if t.font.FindGlyphNoFallback(kp.Left) != nil && t.font.FindGlyphNoFallback(kp.Right) != nil {
				t.font.AddKerningPair(kp.Left, kp.Right, kp.AdvanceX*ratio)
			}
		}
		tk.BuildLookupTable(t.font)
	}
}

// channelPages uploads prebaked channel textures once per TEX path format
// and texture index, and remembers their atlas pages.
type channelPages struct {
	library *gamefont.Library
	pages   map[string]map[int]channelPage
}

type channelPage struct {
	index         int
	width, height int
}

func newChannelPages(library *gamefont.Library) *channelPages {
	return &channelPages{library: library, pages: make(map[string]map[int]channelPage)}
}

func (c *channelPages) page(tk PostBuildToolkit, format string, textureIndex int) (index, width, height int, err error) {
	byIndex := c.pages[format]
	if byIndex == nil {
		byIndex = make(map[int]channelPage)
		c.pages[format] = byIndex
	}
	if pg, ok := byIndex[textureIndex]; ok {
		return pg.index, pg.width, pg.height, nil
	}

	u := tk.Uploader()
	out, pf := gamefont.ChannelB8G8R8A8, gpuupload.FormatB8G8R8A8
	if u.SupportsFormat(gpuupload.FormatB4G4R4A4) {
		out, pf = gamefont.ChannelB4G4R4A4, gpuupload.FormatB4G4R4A4
	}
	img, err := c.library.ChannelTexture(format, textureIndex, out)
	if err != nil {
		return 0, 0, 0, err
	}
	t, err := u.Upload(img.Pixels, img.Width*pf.BytesPerPixel(), img.Width, img.Height, pf)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("fontatlas: uploading %s texture %d: %w", format, textureIndex, err)
	}
	pg := channelPage{index: tk.StoreTexture(t), width: img.Width, height: img.Height}
	byIndex[textureIndex] = pg
	return pg.index, pg.width, pg.height, nil
}
