package fontatlas

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/fontatlas/fontcore"
	"github.com/gogpu/fontatlas/gamefont"
	"github.com/gogpu/fontatlas/gamefont/gamefonttest"
	"github.com/gogpu/fontatlas/softatlas"
)

func TestGlyphDrawPlanSynthesize(t *testing.T) {
	const (
		stride = 8
		texW   = 4
		alpha  = 200
	)
	ch := gamefont.ChannelOrder[0]
	src := make([]byte, 4*texW*texW)
	for y := range 2 {
		src[4*(y*texW)+ch] = alpha
	}
	entry := gamefont.Entry{BoundingWidth: 1, BoundingHeight: 2}

	tests := []struct {
		name   string
		weight float32
		skew   float32
		want   [][]byte
	}{
		{
			name: "plain",
			want: [][]byte{{alpha, 0, 0, 0}, {alpha, 0, 0, 0}},
		},
		{
			name:   "bold",
			weight: 1,
			want:   [][]byte{{alpha, alpha, 0, 0}, {alpha, alpha, 0, 0}},
		},
		{
			name:   "half bold",
			weight: 0.5,
			want:   [][]byte{{alpha, alpha / 2, 0, 0}, {alpha, alpha / 2, 0, 0}},
		},
		{
			name: "italic",
			skew: 2,
			want: [][]byte{{0, 0, alpha, 0}, {0, 25, 175, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := gamefont.StyleOf(gamefont.Axis12)
			style.Weight = tt.weight
			style.SkewStrength = tt.skew
			fdt := &gamefont.FDT{FontHeader: gamefont.FontHeader{LineHeight: 16}}
			p := newGlyphDrawPlan(style, 1, fdt, nil)

			dst := make([]byte, stride*4)
			for i := range dst {
				dst[i] = 0xFF
			}
			r := &fontcore.CustomRect{X: 1, Y: 1, Width: 4, Height: 2}
			p.synthesize(dst, stride, r, src, texW, texW, entry)

			var got [][]byte
			for y := range r.Height {
				row := (r.Y + y) * stride
				got = append(got, dst[row+r.X:row+r.X+r.Width])
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("rect pixels mismatch (-want +got):\n%s", diff)
			}
			for i, v := range dst[:stride] {
				if v != 0xFF {
					t.Fatalf("pixel %d above the rect = %#x, want untouched", i, v)
				}
			}
			if v := dst[stride]; v != 0xFF {
				t.Errorf("pixel left of the rect = %#x, want untouched", v)
			}
		})
	}
}

func TestGlyphDrawPlanAttachFont(t *testing.T) {
	fdt := &gamefont.FDT{}
	p := newGlyphDrawPlan(gamefont.StyleOf(gamefont.Axis12), 1, fdt, nil)
	p.full = fontcore.NewFont(nil)
	target := fontcore.NewFont(nil)

	p.attachFont(p.full, []uint16{'A', 'A', 0}, false)
	p.attachFont(target, []uint16{'A', 'B', 0}, false)
	p.attachFont(target, []uint16{'x', 'x', 0}, false)

	if len(p.targets) != 1 {
		t.Fatalf("targets = %d, want 1", len(p.targets))
	}
	for _, r := range []rune{'A', 'B', 'x'} {
		if !p.targets[0].wanted.Has(r) {
			t.Errorf("target does not want %q", r)
		}
	}
}

func TestGlyphDrawPlanReservedWidth(t *testing.T) {
	fdt, err := gamefont.ParseFDT(gamefonttest.StandardFDT(12).Bytes())
	if err != nil {
		t.Fatal(err)
	}

	// Weight 0 draws from the prebaked pages and reserves nothing.
	tests := []struct {
		name   string
		weight float32
		want   int
	}{
		{"regular", 0, 0},
		{"half weight", 0.5, gamefonttest.GlyphW + 1},
		{"double weight", 2, gamefonttest.GlyphW + 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			atlas, err := softatlas.New(softatlas.DefaultConfig())
			if err != nil {
				t.Fatal(err)
			}
			defer atlas.Close()

			style := gamefont.StyleOf(gamefont.Axis12)
			style.Weight = tt.weight
			p := newGlyphDrawPlan(style, 1, fdt, nil)
			cfg := fontcore.DefaultFontConfig()
			cfg.FontData = goregular.TTF
			cfg.SizePixels = style.SizePx
			cfg.GlyphRanges = []uint16{' ', ' ', 0}
			if p.full, err = atlas.AddFont(&cfg); err != nil {
				t.Fatal(err)
			}
			if err := p.ensureGlyphs(atlas); err != nil {
				t.Fatalf("ensureGlyphs() error = %v", err)
			}

			id, ok := p.rects['A']
			if tt.want == 0 {
				if ok {
					t.Errorf("reserved rect %d for an unsynthesized style", id)
				}
				return
			}
			if !ok {
				t.Fatal("no rect reserved for 'A'")
			}
			rc := atlas.CustomRect(id)
			if rc.Width != tt.want || rc.Height != gamefonttest.GlyphH {
				t.Errorf("rect = %dx%d, want %dx%d", rc.Width, rc.Height, tt.want, gamefonttest.GlyphH)
			}
		})
	}
}
