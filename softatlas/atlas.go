package softatlas

import (
	"cmp"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"math/bits"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/fontatlas/fontcore"
	"github.com/gogpu/fontatlas/glyphrange"
)

// ErrInvalidRect is returned for custom rects with a non-positive size.
var ErrInvalidRect = errors.New("softatlas: custom rect size must be positive")

// Atlas is the software fontcore.Atlas. It is not safe for concurrent use.
type Atlas struct {
	config Config
	logger *slog.Logger
	faces  *FaceCache

	fonts    []*fontcore.Font
	configs  []*fontcore.FontConfig
	rects    []fontcore.CustomRect
	textures []*fontcore.Texture

	texWidth  int
	texHeight int

	built  bool
	closed bool
}

var _ fontcore.Atlas = (*Atlas)(nil)

// New creates an empty atlas. Texture 0 is reserved for the page produced
// by Build.
func New(cfg Config) (*Atlas, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	faces := cfg.Faces
	if faces == nil {
		faces = NewFaceCache(1)
	}
	return &Atlas{
		config:   cfg,
		logger:   logger,
		faces:    faces,
		textures: []*fontcore.Texture{{}},
	}, nil
}

func (a *Atlas) usable() error {
	if a.closed {
		return fontcore.ErrAtlasClosed
	}
	if a.built {
		return fontcore.ErrAtlasBuilt
	}
	return nil
}

// AddFont implements fontcore.Atlas.
func (a *Atlas) AddFont(cfg *fontcore.FontConfig) (*fontcore.Font, error) {
	if err := a.usable(); err != nil {
		return nil, err
	}
	stored := *cfg
	if err := stored.Validate(); err != nil {
		return nil, err
	}
	if len(stored.FontData) == 0 {
		return nil, ErrEmptyFontData
	}

	dst := stored.MergeFont
	if dst == nil {
		dst = fontcore.NewFont(&stored)
		stored.MergeFont = dst
		a.fonts = append(a.fonts, dst)
	}
	a.configs = append(a.configs, &stored)
	return dst, nil
}

// AddCustomRectFontGlyph implements fontcore.Atlas.
func (a *Atlas) AddCustomRectFontGlyph(f *fontcore.Font, id rune, width, height int, advanceX float32, offset mgl32.Vec2) (int, error) {
	if err := a.usable(); err != nil {
		return -1, err
	}
	if !slices.Contains(a.fonts, f) {
		return -1, fontcore.ErrFontNotInAtlas
	}
	if width <= 0 || height <= 0 {
		return -1, ErrInvalidRect
	}
	a.rects = append(a.rects, fontcore.CustomRect{
		Width:         width,
		Height:        height,
		X:             -1,
		Y:             -1,
		GlyphID:       id,
		GlyphAdvanceX: advanceX,
		GlyphOffset:   offset,
		Font:          f,
	})
	return len(a.rects) - 1, nil
}

// AddCustomRectRegular implements fontcore.Atlas.
func (a *Atlas) AddCustomRectRegular(width, height int) (int, error) {
	if err := a.usable(); err != nil {
		return -1, err
	}
	if width <= 0 || height <= 0 {
		return -1, ErrInvalidRect
	}
	a.rects = append(a.rects, fontcore.CustomRect{
		Width:   width,
		Height:  height,
		X:       -1,
		Y:       -1,
		GlyphID: -1,
	})
	return len(a.rects) - 1, nil
}

// CustomRect implements fontcore.Atlas.
func (a *Atlas) CustomRect(index int) *fontcore.CustomRect {
	if index < 0 || index >= len(a.rects) {
		return nil
	}
	return &a.rects[index]
}

func (a *Atlas) Fonts() []*fontcore.Font         { return a.fonts }
func (a *Atlas) Configs() []*fontcore.FontConfig { return a.configs }
func (a *Atlas) Textures() []*fontcore.Texture   { return a.textures }

// AddTexture implements fontcore.Atlas.
func (a *Atlas) AddTexture(t *fontcore.Texture) int {
	a.textures = append(a.textures, t)
	return len(a.textures) - 1
}

// TexSize returns the size of the page built into texture 0.
func (a *Atlas) TexSize() (width, height int) { return a.texWidth, a.texHeight }

// Close releases the pixel buffers. Fonts stay readable.
func (a *Atlas) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	for _, t := range a.textures {
		t.Alpha8 = nil
		t.RGBA32 = nil
	}
	return nil
}

// bakedGlyph is a rasterized glyph waiting for a page position.
type bakedGlyph struct {
	cfg  *fontcore.FontConfig
	font *fontcore.Font
	r    rune

	// quad relative to the pen, in pixels
	x0, y0  float32
	advance float32

	mask *image.Alpha

	// packed position
	x, y int
}

// Build rasterizes every config, packs glyph bitmaps and custom rects into
// texture 0 and fills the fonts.
func (a *Atlas) Build() error {
	if err := a.usable(); err != nil {
		return err
	}

	var glyphs []bakedGlyph
	taken := make(map[*fontcore.Font]*glyphrange.Builder)
	for _, cfg := range a.configs {
		baked, err := a.rasterize(cfg, taken)
		if err != nil {
			return fmt.Errorf("softatlas: font %q: %w", cfg.Name, err)
		}
		glyphs = append(glyphs, baked...)
	}

	if err := a.pack(glyphs); err != nil {
		return err
	}

	page := a.textures[0]
	page.Width, page.Height = a.texWidth, a.texHeight
	page.Alpha8 = make([]byte, a.texWidth*a.texHeight)
	page.RGBA32 = nil

	invW := 1 / float32(a.texWidth)
	invH := 1 / float32(a.texHeight)
	for i := range glyphs {
		g := &glyphs[i]
		w, h := 0, 0
		if g.mask != nil {
			w, h = g.mask.Rect.Dx(), g.mask.Rect.Dy()
			for y := range h {
				copy(page.Alpha8[(g.y+y)*a.texWidth+g.x:], g.mask.Pix[y*g.mask.Stride:y*g.mask.Stride+w])
			}
		}
		g.font.AddGlyph(g.cfg, fontcore.Glyph{
			Codepoint: g.r,
			X0:        g.x0,
			Y0:        g.y0,
			X1:        g.x0 + float32(w),
			Y1:        g.y0 + float32(h),
			U0:        float32(g.x) * invW,
			V0:        float32(g.y) * invH,
			U1:        float32(g.x+w) * invW,
			V1:        float32(g.y+h) * invH,
			AdvanceX:  g.advance,
		})
	}

	for i := range a.rects {
		r := &a.rects[i]
		if r.Font == nil || r.GlyphID < 0 {
			continue
		}
		r.Font.AddGlyph(nil, fontcore.Glyph{
			Codepoint: r.GlyphID,
			X0:        r.GlyphOffset.X(),
			Y0:        r.GlyphOffset.Y(),
			X1:        r.GlyphOffset.X() + float32(r.Width),
			Y1:        r.GlyphOffset.Y() + float32(r.Height),
			U0:        float32(r.X) * invW,
			V0:        float32(r.Y) * invH,
			U1:        float32(r.X+r.Width) * invW,
			V1:        float32(r.Y+r.Height) * invH,
			AdvanceX:  r.GlyphAdvanceX,
		})
	}

	for _, f := range a.fonts {
		f.BuildLookupTable()
	}
	a.built = true

	a.logger.Debug("softatlas: built",
		slog.Int("fonts", len(a.fonts)),
		slog.Int("configs", len(a.configs)),
		slog.Int("glyphs", len(glyphs)),
		slog.Int("rects", len(a.rects)),
		slog.Int("width", a.texWidth),
		slog.Int("height", a.texHeight))
	return nil
}

// rasterize bakes the codepoints of cfg that its destination font does not
// have yet. Earlier configs of the same font win.
func (a *Atlas) rasterize(cfg *fontcore.FontConfig, taken map[*fontcore.Font]*glyphrange.Builder) ([]bakedGlyph, error) {
	pf, err := a.faces.load(cfg.FontData, cfg.FontNo)
	if err != nil {
		return nil, err
	}
	dst := cfg.MergeFont
	scale := pf.scaleForPixelHeight(float64(cfg.SizePixels))
	if dst.Config == cfg {
		dst.FontSize = cfg.SizePixels
		dst.Ascent = float32(math.Floor(pf.ascent*scale + 1))
		dst.Descent = float32(math.Floor(pf.descent*scale - 1))
	}

	oversample := max(cfg.OversampleH, cfg.OversampleV)
	face, err := opentype.NewFace(pf.outlines, &opentype.FaceOptions{
		Size:    scale * pf.unitsPerEm * float64(oversample),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	defer face.Close()

	seen := taken[dst]
	if seen == nil {
		seen = glyphrange.New()
		taken[dst] = seen
	}
	ranges := cfg.GlyphRanges
	if ranges == nil {
		ranges = glyphrange.Default()
	}
	lut := coverageTable(cfg.RasterizerGamma, cfg.RasterizerMultiply)
	offY := float32(math.Round(float64(dst.Ascent))) + cfg.GlyphOffset.Y()
	factor := float32(oversample)

	var out []bakedGlyph
	for r := range glyphrange.Codepoints(ranges) {
		if seen.Has(r) {
			continue
		}
		if _, ok := pf.coverage.NominalGlyph(r); !ok {
			continue
		}
		dr, mask, maskp, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		seen.With(r)

		g := bakedGlyph{
			cfg:     cfg,
			font:    dst,
			r:       r,
			x0:      float32(dr.Min.X)/factor + cfg.GlyphOffset.X(),
			y0:      float32(dr.Min.Y)/factor + offY,
			advance: float32(fixedToFloat64(adv)) / factor,
		}
		if !dr.Empty() {
			g.mask = downsample(mask, maskp, dr, oversample)
			applyTable(g.mask, lut)
		}
		out = append(out, g)
	}
	return out, nil
}

// downsample copies the glyph mask and shrinks it by factor.
func downsample(mask image.Image, maskp image.Point, dr image.Rectangle, factor int) *image.Alpha {
	src := image.NewAlpha(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	draw.Draw(src, src.Rect, mask, maskp, draw.Src)
	if factor <= 1 {
		return src
	}
	w := (dr.Dx() + factor - 1) / factor
	h := (dr.Dy() + factor - 1) / factor
	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return dst
}

// coverageTable maps raw coverage through the gamma curve and multiplier.
func coverageTable(gamma, multiply float32) *[256]byte {
	var t [256]byte
	for i := range t {
		v := float64(i) / 255
		if gamma != 1 {
			v = math.Pow(v, 1/float64(gamma))
		}
		t[i] = byte(min(255, math.Round(v*float64(multiply)*255)))
	}
	return &t
}

func applyTable(img *image.Alpha, t *[256]byte) {
	for i, v := range img.Pix {
		img.Pix[i] = t[v]
	}
}

// packItem is one rect to place: a glyph bitmap (glyph >= 0) or a custom
// rect (rect >= 0).
type packItem struct {
	w, h  int
	glyph int
	rect  int
}

func (a *Atlas) pack(glyphs []bakedGlyph) error {
	items := make([]packItem, 0, len(glyphs)+len(a.rects))
	area := 0
	pad := a.config.Padding
	for i := range glyphs {
		if m := glyphs[i].mask; m != nil {
			items = append(items, packItem{w: m.Rect.Dx(), h: m.Rect.Dy(), glyph: i, rect: -1})
			area += (m.Rect.Dx() + pad) * (m.Rect.Dy() + pad)
		}
	}
	for i := range a.rects {
		r := &a.rects[i]
		items = append(items, packItem{w: r.Width, h: r.Height, glyph: -1, rect: i})
		area += (r.Width + pad) * (r.Height + pad)
	}
	slices.SortStableFunc(items, func(x, y packItem) int {
		if c := cmp.Compare(y.h, x.h); c != 0 {
			return c
		}
		return cmp.Compare(y.w, x.w)
	})

	width := a.config.Width
	if width == 0 {
		width = autoWidth(area)
	}
	packer := newShelfPacker(width, a.config.MaxHeight, pad)
	for _, it := range items {
		x, y, ok := packer.allocate(it.w, it.h)
		if !ok {
			return fmt.Errorf("%w: %dx%d item in a %dx%d page", ErrAtlasTooSmall, it.w, it.h, width, a.config.MaxHeight)
		}
		if it.glyph >= 0 {
			glyphs[it.glyph].x, glyphs[it.glyph].y = x, y
		} else {
			r := &a.rects[it.rect]
			r.X, r.Y, r.TextureIndex = x, y, 0
		}
	}

	a.texWidth = width
	a.texHeight = upperPowerOfTwo(packer.usedHeight())
	a.logger.Debug("softatlas: packed",
		slog.Int("items", len(items)),
		slog.Float64("utilization", packer.utilization()))
	return nil
}

// autoWidth picks the page width from the total padded glyph area.
func autoWidth(area int) int {
	side := int(math.Sqrt(float64(area))) + 1
	switch {
	case float64(side) >= 4096*0.7:
		return 4096
	case float64(side) >= 2048*0.7:
		return 2048
	case float64(side) >= 1024*0.7:
		return 1024
	default:
		return 512
	}
}

func upperPowerOfTwo(v int) int {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(v-1))
}
