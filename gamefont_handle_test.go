package fontatlas

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/fontatlas/gamefont"
	"github.com/gogpu/fontatlas/gamefont/gamefonttest"
	"github.com/gogpu/fontatlas/gpuupload"
)

// alphaAt reads the coverage of a B8G8R8A8 memory texture.
func alphaAt(t *gpuupload.MemoryTexture, x, y int) byte {
	w, _ := t.Size()
	return t.Pixels[4*(y*w+x)+3]
}

// texel converts a UV into texel coordinates of t.
func texel(t *gpuupload.MemoryTexture, u, v float32) (x, y int) {
	w, h := t.Size()
	return int(math.Round(float64(u * float32(w)))), int(math.Round(float64(v * float32(h))))
}

func newGameHandle(t *testing.T, fa *FontAtlas, style gamefont.Style) FontHandle {
	t.Helper()
	h, err := fa.NewGameFontHandle(style)
	if err != nil {
		t.Fatalf("NewGameFontHandle(%v) error = %v", style, err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestGameFontPrebaked(t *testing.T) {
	f, up := newTestFactory(t, nil)
	fa := newTestAtlas(t, f, RebuildModeDisable)
	h := newGameHandle(t, fa, gamefont.StyleOf(gamefont.Axis12))
	mustBuild(t, fa)

	font := mustLock(t, h).Font()
	if font.FontSize != 16 {
		t.Errorf("FontSize = %v, want 16", font.FontSize)
	}
	if font.Ascent != gamefonttest.Ascent {
		t.Errorf("Ascent = %v, want %v", font.Ascent, gamefonttest.Ascent)
	}

	a := font.FindGlyphNoFallback('A')
	b := font.FindGlyphNoFallback('B')
	if a == nil || b == nil {
		t.Fatalf("glyphs A=%v B=%v, want both", a, b)
	}
	if a.U0 != 16.0/gamefonttest.TexSize || a.V0 != 0 {
		t.Errorf("A UV0 = (%v, %v), want (%v, 0)", a.U0, a.V0, 16.0/gamefonttest.TexSize)
	}
	if a.X0 != -1 || a.Y0 != 2 {
		t.Errorf("A offset = (%v, %v), want (-1, 2)", a.X0, a.Y0)
	}
	if a.X1-a.X0 != gamefonttest.GlyphW || a.AdvanceX != gamefonttest.GlyphW+1 {
		t.Errorf("A width %v advance %v, want %d and %d", a.X1-a.X0, a.AdvanceX, gamefonttest.GlyphW, gamefonttest.GlyphW+1)
	}
	if a.TextureIndex == 0 || b.TextureIndex == 0 || a.TextureIndex == b.TextureIndex {
		t.Errorf("texture pages A=%d B=%d, want distinct channel pages", a.TextureIndex, b.TextureIndex)
	}
	if d := font.Distance('A', 'V'); d != -2 {
		t.Errorf("Distance(A, V) = %v, want -2", d)
	}
	if font.FallbackChar != '\u3013' {
		t.Errorf("FallbackChar = %U, want U+3013", font.FallbackChar)
	}

	textures := up.Textures()
	if len(textures) != 3 {
		t.Fatalf("uploaded %d textures, want two channel pages and the atlas page", len(textures))
	}
	if got := alphaAt(textures[0], 16, 0); got != gamefonttest.StandardAlpha(2) {
		t.Errorf("channel page alpha at A = %#x, want %#x", got, gamefonttest.StandardAlpha(2))
	}
}

func TestGameFontSynthesized(t *testing.T) {
	tests := []struct {
		name      string
		weight    float32
		wantWidth float32
		wantEdge  byte
	}{
		{"half weight", 0.5, 7, byte(0.5 * float32(gamefonttest.StandardAlpha(2)))},
		{"double weight", 2, 8, gamefonttest.StandardAlpha(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, up := newTestFactory(t, nil)
			fa := newTestAtlas(t, f, RebuildModeDisable)
			style := gamefont.StyleOf(gamefont.Axis12)
			style.Weight = tt.weight
			h := newGameHandle(t, fa, style)
			mustBuild(t, fa)

			font := mustLock(t, h).Font()
			a := font.FindGlyphNoFallback('A')
			if a == nil {
				t.Fatal("glyph 'A' missing")
			}
			if w := a.X1 - a.X0; w != tt.wantWidth {
				t.Errorf("A width = %v, want %v", w, tt.wantWidth)
			}
			if a.AdvanceX != gamefonttest.GlyphW+1 {
				t.Errorf("A advance = %v, want %d", a.AdvanceX, gamefonttest.GlyphW+1)
			}
			if a.TextureIndex != 0 {
				t.Fatalf("A on page %d, want the atlas page", a.TextureIndex)
			}

			textures := up.Textures()
			if len(textures) != 1 {
				t.Fatalf("uploaded %d textures, want only the atlas page", len(textures))
			}
			x, y := texel(textures[0], a.U0, a.V0)
			if got := alphaAt(textures[0], x, y); got != gamefonttest.StandardAlpha(2) {
				t.Errorf("column 0 alpha = %#x, want %#x", got, gamefonttest.StandardAlpha(2))
			}
			if got := alphaAt(textures[0], x+gamefonttest.GlyphW, y); got != tt.wantEdge {
				t.Errorf("column %d alpha = %#x, want %#x", gamefonttest.GlyphW, got, tt.wantEdge)
			}
		})
	}
}

func TestGameFontWithoutAssets(t *testing.T) {
	f, _ := newTestFactory(t, func(cfg *FactoryConfig) { cfg.Assets = nil })
	fa := newTestAtlas(t, f, RebuildModeDisable)
	h := newGameHandle(t, fa, gamefont.StyleOf(gamefont.Axis12))
	other := fa.NewDelegateFontHandle(defaultFontDelegate(16))
	defer other.Close()
	mustBuild(t, fa)

	if err := h.LoadErr(); !errors.Is(err, ErrNoGameFontAssets) {
		t.Errorf("LoadErr() = %v, want ErrNoGameFontAssets", err)
	}
	if !other.Available() {
		t.Errorf("delegate font lost with the game font: %v", other.LoadErr())
	}
}

func TestGameFontMissingFDT(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	fa := newTestAtlas(t, f, RebuildModeDisable)
	h := newGameHandle(t, fa, gamefont.StyleOf(gamefont.Axis18))
	mustBuild(t, fa)

	var herr *HandleBuildError
	if err := h.LoadErr(); !errors.As(err, &herr) || herr.Step != BuildStepPreBuild {
		t.Errorf("LoadErr() = %v, want a pre-build HandleBuildError", err)
	}
	if h.Available() {
		t.Error("style without an FDT is available")
	}
}

func TestNewGameFontHandleInvalidStyle(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	fa := newTestAtlas(t, f, RebuildModeDisable)
	if _, err := fa.NewGameFontHandle(gamefont.Style{FamilyAndSize: gamefont.Axis12}); !errors.Is(err, gamefont.ErrInvalidStyle) {
		t.Errorf("NewGameFontHandle() error = %v, want ErrInvalidStyle", err)
	}
}

func TestGameFontRebuildRecommendation(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	fa := newTestAtlas(t, f, RebuildModeDisable)
	n := 0
	fa.OnRebuildRecommend(func() { n++ })

	style := gamefont.StyleOf(gamefont.Axis12)
	newGameHandle(t, fa, style)
	if n != 1 {
		t.Fatalf("recommendations after first handle = %d, want 1", n)
	}
	mustBuild(t, fa)

	newGameHandle(t, fa, style)
	if n != 1 {
		t.Errorf("recommendations after a handle of a built style = %d, want 1", n)
	}

	bold := style
	bold.Weight = 1
	newGameHandle(t, fa, bold)
	if n != 2 {
		t.Errorf("recommendations after a new style = %d, want 2", n)
	}

	d := fa.NewDelegateFontHandle(defaultFontDelegate(16))
	defer d.Close()
	if n != 3 {
		t.Errorf("recommendations after a delegate handle = %d, want 3", n)
	}
}

func TestGameFontSharedStyle(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	fa := newTestAtlas(t, f, RebuildModeDisable)
	style := gamefont.StyleOf(gamefont.Axis12)
	h1 := newGameHandle(t, fa, style)
	h2 := newGameHandle(t, fa, style)
	mustBuild(t, fa)

	if mustLock(t, h1).Font() != mustLock(t, h2).Font() {
		t.Error("handles of one style got different fonts")
	}

	if err := h1.Close(); err != nil {
		t.Fatal(err)
	}
	mustBuild(t, fa)
	if !h2.Available() {
		t.Errorf("remaining handle lost its font: %v", h2.LoadErr())
	}
}

func TestAddGameGlyphs(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	fa := newTestAtlas(t, f, RebuildModeDisable)
	style := gamefont.StyleOf(gamefont.Axis12)
	h := fa.NewDelegateFontHandle(preBuild(func(tk PreBuildToolkit) error {
		font, err := tk.AddGameGlyphs(style, []uint16{'A', 'C', 0}, nil)
		if err != nil {
			return err
		}
		tk.SetFont(font)
		return nil
	}))
	defer h.Close()
	mustBuild(t, fa)

	font := mustLock(t, h).Font()
	for _, r := range []rune{'A', 'B', 'C'} {
		if font.FindGlyphNoFallback(r) == nil {
			t.Errorf("glyph %q missing", r)
		}
	}
	if font.FindGlyphNoFallback('a') != nil {
		t.Error("glyph 'a' copied outside the requested ranges")
	}
	if font.FontSize != 16 {
		t.Errorf("FontSize = %v, want 16", font.FontSize)
	}
}

func TestAddGameGlyphsMerge(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	fa := newTestAtlas(t, f, RebuildModeDisable)
	style := gamefont.StyleOf(gamefont.Axis12)
	h := fa.NewDelegateFontHandle(preBuild(func(tk PreBuildToolkit) error {
		font, err := tk.AddDefaultFont(16, []uint16{'a', 'z', 0})
		if err != nil {
			return err
		}
		if _, err := tk.AddGameGlyphs(style, []uint16{'A', 'V', 0}, font); err != nil {
			return err
		}
		tk.SetFont(font)
		return nil
	}))
	defer h.Close()
	mustBuild(t, fa)

	font := mustLock(t, h).Font()
	if font.FindGlyphNoFallback('z') == nil || font.FindGlyphNoFallback('T') == nil {
		t.Error("merged font lacks its own or the game glyphs")
	}
	if d := font.Distance('A', 'V'); d != -2 {
		t.Errorf("Distance(A, V) = %v, want -2", d)
	}
}
