package fontcore

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// CustomRect is a rectangle reserved in an atlas page. Font glyph rects
// become glyphs of Font once the atlas is built; regular rects are free
// space for the caller to draw into.
type CustomRect struct {
	Width, Height int

	// X and Y are the packed position, -1 until Build.
	X, Y int

	// TextureIndex is the page the rect was packed into.
	TextureIndex int

	// GlyphID is the codepoint of a font glyph rect, or -1.
	GlyphID       rune
	GlyphAdvanceX float32
	GlyphOffset   mgl32.Vec2
	Font          *Font
}

// IsPacked reports whether Build has placed r.
func (r *CustomRect) IsPacked() bool { return r.X >= 0 && r.Y >= 0 }

// Texture is an atlas page. Built pages carry pixels in one of the two
// formats; pages added by the caller may instead carry an uploaded texture
// ID and no pixels.
type Texture struct {
	// ID is non-zero once the page is bound to a GPU texture.
	ID uint64

	Width, Height int

	// Alpha8 holds one coverage byte per pixel.
	Alpha8 []byte

	// RGBA32 holds four bytes per pixel, R first.
	RGBA32 []byte
}

// Atlas packs font glyphs and custom rects into texture pages. All methods
// are called from the single goroutine running a build.
type Atlas interface {
	// AddFont registers cfg and returns the font it feeds. When
	// cfg.MergeFont is set, that font is returned and receives the glyphs.
	// The atlas stores its own copy of cfg.
	AddFont(cfg *FontConfig) (*Font, error)

	// AddCustomRectFontGlyph reserves a rect that becomes the glyph id of
	// font after Build. It returns the rect index.
	AddCustomRectFontGlyph(font *Font, id rune, width, height int, advanceX float32, offset mgl32.Vec2) (int, error)

	// AddCustomRectRegular reserves a rect not tied to a font.
	AddCustomRectRegular(width, height int) (int, error)

	// CustomRect returns the rect at index, or nil.
	CustomRect(index int) *CustomRect

	// Build rasterizes every config and packs all glyphs and rects.
	Build() error

	Fonts() []*Font
	Configs() []*FontConfig
	Textures() []*Texture

	// AddTexture appends a page and returns its index.
	AddTexture(t *Texture) int

	// TexSize returns the size of the built pages.
	TexSize() (width, height int)

	Close() error
}

// ContainsFont reports whether f is one of a's fonts.
func ContainsFont(a Atlas, f *Font) bool {
	return f != nil && slices.Contains(a.Fonts(), f)
}
