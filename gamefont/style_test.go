package gamefont_test

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/fontatlas/gamefont"
)

func TestRecommendedFamilyAndSize(t *testing.T) {
	tests := []struct {
		family gamefont.Family
		pt     float32
		want   gamefont.FamilyAndSize
	}{
		{gamefont.FamilyAxis, 0, gamefont.Undefined},
		{gamefont.FamilyAxis, -3, gamefont.Undefined},
		{gamefont.FamilyUndefined, 12, gamefont.Undefined},
		{gamefont.FamilyAxis, 9, gamefont.Axis96},
		{gamefont.FamilyAxis, 9.75, gamefont.Axis96},
		{gamefont.FamilyAxis, 10, gamefont.Axis12},
		{gamefont.FamilyAxis, 12, gamefont.Axis12},
		{gamefont.FamilyAxis, 100, gamefont.Axis36},
		{gamefont.FamilyJupiterNumeric, 45, gamefont.Jupiter45},
		{gamefont.FamilyJupiterNumeric, 46, gamefont.Jupiter90},
		{gamefont.FamilyJupiter, 23, gamefont.Jupiter23},
		{gamefont.FamilyJupiter, 30, gamefont.Jupiter46},
		{gamefont.FamilyTrumpGothic, 18.4, gamefont.TrumpGothic184},
		{gamefont.FamilyTrumpGothic, 19, gamefont.TrumpGothic23},
		{gamefont.FamilyMeidinger, 25, gamefont.Meidinger40},
		{gamefont.FamilyMiedingerMid, 14, gamefont.MiedingerMid14},
	}
	for _, tt := range tests {
		if got := gamefont.RecommendedFamilyAndSize(tt.family, tt.pt); got != tt.want {
			t.Errorf("RecommendedFamilyAndSize(%s, %v) = %s, want %s", tt.family, tt.pt, got, tt.want)
		}
	}
}

func TestFamilyAndSizeCatalogue(t *testing.T) {
	all := gamefont.AllFamilyAndSizes()
	if len(all) != 23 {
		t.Fatalf("len(AllFamilyAndSizes()) = %d, want 23", len(all))
	}
	for _, f := range all {
		if f.Path() == "" || f.BaseSizePt() <= 0 || f.Family() == gamefont.FamilyUndefined {
			t.Errorf("%s: path %q, size %v, family %s", f, f.Path(), f.BaseSizePt(), f.Family())
		}
	}
	if gamefont.Axis12.Path() != "common/font/AXIS_12.fdt" {
		t.Errorf("Axis12.Path() = %q", gamefont.Axis12.Path())
	}
	if gamefont.Jupiter45.Family() != gamefont.FamilyJupiterNumeric {
		t.Errorf("Jupiter45.Family() = %s", gamefont.Jupiter45.Family())
	}
	if gamefont.Jupiter90.HorizontalOffset() != -2 || gamefont.Axis12.HorizontalOffset() != -1 {
		t.Error("unexpected horizontal offsets")
	}
	if got := gamefont.TexPath(gamefont.TexPathFormat, 0); got != "common/font/font1.tex" {
		t.Errorf("TexPath(0) = %q", got)
	}
	if gamefont.MinimumSize(gamefont.FamilyTrumpGothic) != gamefont.TrumpGothic184 {
		t.Error("MinimumSize(TrumpGothic)")
	}
	if gamefont.Undefined.Valid() || gamefont.FamilyAndSize(99).Valid() {
		t.Error("Valid() accepted an undefined font")
	}
}

func TestStyle(t *testing.T) {
	s := gamefont.NewStyle(gamefont.FamilyAxis, 16)
	if s.FamilyAndSize != gamefont.Axis12 || s.SizePt() != 12 {
		t.Fatalf("NewStyle(Axis, 16px) = %v", s)
	}
	if s.Bold() || s.Italic() || s.Synthesized() {
		t.Error("plain style reports synthesis")
	}

	bold := s.WithBold(true)
	if bold.Weight != 1 || !bold.Bold() || !bold.Synthesized() {
		t.Errorf("WithBold(true) = %v", bold)
	}
	italic := s.WithItalic(true)
	if italic.SkewStrength != 16.0/6 || !italic.Italic() {
		t.Errorf("WithItalic(true) = %v", italic)
	}

	scaled := italic.Scale(2)
	if scaled.FamilyAndSize != gamefont.Axis36 || scaled.SizePx != 32 || scaled.SkewStrength != 2*italic.SkewStrength {
		t.Errorf("Scale(2) = %v", scaled)
	}

	native := gamefont.StyleOf(gamefont.Axis18)
	if native.SizePx != 24 || native.BaseSkewStrength() != 0 {
		t.Errorf("StyleOf(Axis18) = %v", native)
	}
	withBase := native.WithSizePt(36).WithBaseSkewStrength(3)
	if withBase.SkewStrength != 6 || withBase.BaseSkewStrength() != 3 {
		t.Errorf("WithBaseSkewStrength(3) at 2x = %v", withBase)
	}
}

func TestStyleBaseWidthAdjustment(t *testing.T) {
	h := gamefont.FontHeader{LineHeight: 16}
	e := gamefont.Entry{CurrentOffsetY: 2, BoundingHeight: 10}
	base := gamefont.StyleOf(gamefont.Axis12)
	tests := []struct {
		name  string
		style gamefont.Style
		want  int
	}{
		{"plain", base, 0},
		{"bold", gamefont.Style{FamilyAndSize: gamefont.Axis12, SizePx: base.SizePx, Weight: 2}, 2},
		{"fractional weight", gamefont.Style{FamilyAndSize: gamefont.Axis12, SizePx: base.SizePx, Weight: 0.5}, 1},
		{"positive skew", gamefont.Style{FamilyAndSize: gamefont.Axis12, SizePx: base.SizePx, SkewStrength: 4}, 4},
		{"negative skew", gamefont.Style{FamilyAndSize: gamefont.Axis12, SizePx: base.SizePx, SkewStrength: -4}, 3},
	}
	for _, tt := range tests {
		if got := tt.style.BaseWidthAdjustment(h, e); got != tt.want {
			t.Errorf("%s: BaseWidthAdjustment = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestStyleValidate(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name  string
		style gamefont.Style
		want  error
	}{
		{"valid", gamefont.NewStyle(gamefont.FamilyAxis, 16), nil},
		{"undefined", gamefont.Style{SizePx: 12}, gamefont.ErrUnknownFamily},
		{"zero size", gamefont.Style{FamilyAndSize: gamefont.Axis12}, gamefont.ErrInvalidStyle},
		{"negative weight", gamefont.Style{FamilyAndSize: gamefont.Axis12, SizePx: 12, Weight: -1}, gamefont.ErrInvalidStyle},
		{"nan skew", gamefont.Style{FamilyAndSize: gamefont.Axis12, SizePx: 12, SkewStrength: nan}, gamefont.ErrInvalidStyle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.style.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}
