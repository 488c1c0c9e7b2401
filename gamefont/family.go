package gamefont

import (
	"fmt"
	"math"
)

// Family is a typeface available in several prebaked sizes.
type Family int

// Families.
const (
	FamilyUndefined Family = iota
	FamilyAxis
	FamilyJupiter
	FamilyJupiterNumeric
	FamilyMeidinger
	FamilyMiedingerMid
	FamilyTrumpGothic
)

var familyNames = [...]string{
	FamilyUndefined:      "Undefined",
	FamilyAxis:           "Axis",
	FamilyJupiter:        "Jupiter",
	FamilyJupiterNumeric: "JupiterNumeric",
	FamilyMeidinger:      "Meidinger",
	FamilyMiedingerMid:   "MiedingerMid",
	FamilyTrumpGothic:    "TrumpGothic",
}

func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return fmt.Sprintf("Family(%d)", int(f))
	}
	return familyNames[f]
}

// FamilyAndSize identifies one prebaked FDT file.
type FamilyAndSize int

// Prebaked family and size combinations.
const (
	Undefined FamilyAndSize = iota
	Axis96
	Axis12
	Axis14
	Axis18
	Axis36
	Jupiter16
	Jupiter20
	Jupiter23
	Jupiter45
	Jupiter46
	Jupiter90
	Meidinger16
	Meidinger20
	Meidinger40
	MiedingerMid10
	MiedingerMid12
	MiedingerMid14
	MiedingerMid18
	MiedingerMid36
	TrumpGothic184
	TrumpGothic23
	TrumpGothic34
	TrumpGothic68
)

// TexPathFormat is the printf pattern of the shared font texture files.
// Files are numbered from 1; see TexPath.
const TexPathFormat = "common/font/font%d.tex"

type catalogueEntry struct {
	family      Family
	stem        string
	description string
	basePt      float32
	hOffset     int
}

var catalogue = [...]catalogueEntry{
	Undefined:      {FamilyUndefined, "", "-", 0, 0},
	Axis96:         {FamilyAxis, "AXIS_96", "AXIS (9.6pt)", 9.6, -1},
	Axis12:         {FamilyAxis, "AXIS_12", "AXIS (12pt)", 12, -1},
	Axis14:         {FamilyAxis, "AXIS_14", "AXIS (14pt)", 14, -1},
	Axis18:         {FamilyAxis, "AXIS_18", "AXIS (18pt)", 18, -1},
	Axis36:         {FamilyAxis, "AXIS_36", "AXIS (36pt)", 36, -1},
	Jupiter16:      {FamilyJupiter, "Jupiter_16", "Jupiter (16pt)", 16, -1},
	Jupiter20:      {FamilyJupiter, "Jupiter_20", "Jupiter (20pt)", 20, -1},
	Jupiter23:      {FamilyJupiter, "Jupiter_23", "Jupiter (23pt)", 23, -1},
	Jupiter45:      {FamilyJupiterNumeric, "Jupiter_45", "Jupiter Numeric (45pt)", 45, -2},
	Jupiter46:      {FamilyJupiter, "Jupiter_46", "Jupiter (46pt)", 46, -1},
	Jupiter90:      {FamilyJupiterNumeric, "Jupiter_90", "Jupiter Numeric (90pt)", 90, -2},
	Meidinger16:    {FamilyMeidinger, "Meidinger_16", "Meidinger Numeric (16pt)", 16, -1},
	Meidinger20:    {FamilyMeidinger, "Meidinger_20", "Meidinger Numeric (20pt)", 20, -1},
	Meidinger40:    {FamilyMeidinger, "Meidinger_40", "Meidinger Numeric (40pt)", 40, -1},
	MiedingerMid10: {FamilyMiedingerMid, "MiedingerMid_10", "MiedingerMid (10pt)", 10, -1},
	MiedingerMid12: {FamilyMiedingerMid, "MiedingerMid_12", "MiedingerMid (12pt)", 12, -1},
	MiedingerMid14: {FamilyMiedingerMid, "MiedingerMid_14", "MiedingerMid (14pt)", 14, -1},
	MiedingerMid18: {FamilyMiedingerMid, "MiedingerMid_18", "MiedingerMid (18pt)", 18, -1},
	MiedingerMid36: {FamilyMiedingerMid, "MiedingerMid_36", "MiedingerMid (36pt)", 36, -1},
	TrumpGothic184: {FamilyTrumpGothic, "TrumpGothic_184", "Trump Gothic (18.4pt)", 18.4, -1},
	TrumpGothic23:  {FamilyTrumpGothic, "TrumpGothic_23", "Trump Gothic (23pt)", 23, -1},
	TrumpGothic34:  {FamilyTrumpGothic, "TrumpGothic_34", "Trump Gothic (34pt)", 34, -1},
	TrumpGothic68:  {FamilyTrumpGothic, "TrumpGothic_68", "Trump Gothic (68pt)", 68, -1},
}

// familySizes lists each family's sizes in ascending order.
var familySizes = map[Family][]FamilyAndSize{
	FamilyAxis:           {Axis96, Axis12, Axis14, Axis18, Axis36},
	FamilyJupiter:        {Jupiter16, Jupiter20, Jupiter23, Jupiter46},
	FamilyJupiterNumeric: {Jupiter45, Jupiter90},
	FamilyMeidinger:      {Meidinger16, Meidinger20, Meidinger40},
	FamilyMiedingerMid:   {MiedingerMid10, MiedingerMid12, MiedingerMid14, MiedingerMid18, MiedingerMid36},
	FamilyTrumpGothic:    {TrumpGothic184, TrumpGothic23, TrumpGothic34, TrumpGothic68},
}

// AllFamilyAndSizes returns every defined combination, Undefined excluded.
func AllFamilyAndSizes() []FamilyAndSize {
	out := make([]FamilyAndSize, 0, len(catalogue)-1)
	for f := Axis96; int(f) < len(catalogue); f++ {
		out = append(out, f)
	}
	return out
}

// Valid reports whether f names a prebaked font.
func (f FamilyAndSize) Valid() bool {
	return f > Undefined && int(f) < len(catalogue)
}

func (f FamilyAndSize) entry() catalogueEntry {
	if f < 0 || int(f) >= len(catalogue) {
		return catalogue[Undefined]
	}
	return catalogue[f]
}

func (f FamilyAndSize) String() string {
	if !f.Valid() && f != Undefined {
		return fmt.Sprintf("FamilyAndSize(%d)", int(f))
	}
	return f.entry().description
}

// Family returns the typeface f belongs to.
func (f FamilyAndSize) Family() Family { return f.entry().family }

// BaseSizePt is the point size the FDT was baked at.
func (f FamilyAndSize) BaseSizePt() float32 { return f.entry().basePt }

// BaseSizePx is BaseSizePt in pixels.
func (f FamilyAndSize) BaseSizePx() float32 { return f.BaseSizePt() * 4 / 3 }

// Path is the asset path of the FDT file.
func (f FamilyAndSize) Path() string {
	if !f.Valid() {
		return ""
	}
	return "common/font/" + f.entry().stem + ".fdt"
}

// TexPathFormat is the printf pattern of the TEX files f's glyphs live in.
func (f FamilyAndSize) TexPathFormat() string { return TexPathFormat }

// HorizontalOffset is added to every glyph's X0 when laying out f.
func (f FamilyAndSize) HorizontalOffset() int { return f.entry().hOffset }

// IsGenericPurpose reports whether f covers general text rather than
// numerals or decorative glyphs only.
func (f FamilyAndSize) IsGenericPurpose() bool { return f.Family() == FamilyAxis }

// TexPath returns the path of the TEX file holding texture file index i.
func TexPath(format string, i int) string {
	return fmt.Sprintf(format, i+1)
}

// MinimumSize returns the smallest prebaked size of family.
func MinimumSize(family Family) FamilyAndSize {
	sizes := familySizes[family]
	if len(sizes) == 0 {
		return Undefined
	}
	return sizes[0]
}

// RecommendedFamilyAndSize picks the prebaked size of family best suited to
// render at sizePt points: the smallest size whose pixel-rounded point size
// is not below sizePt, or the largest one.
func RecommendedFamilyAndSize(family Family, sizePt float32) FamilyAndSize {
	sizes := familySizes[family]
	if sizePt <= 0 || len(sizes) == 0 {
		return Undefined
	}
	for _, f := range sizes[:len(sizes)-1] {
		if sizePt <= roundedPt(f.BaseSizePt())+0.001 {
			return f
		}
	}
	return sizes[len(sizes)-1]
}

// roundedPt snaps a point size to the nearest whole pixel size.
func roundedPt(pt float32) float32 {
	return float32(int(pt*4/3+0.5)) * 3 / 4
}

func finite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}
