package truetype

import (
	"errors"
	"testing"
)

func TestTag(t *testing.T) {
	if got := MakeTag("CFF").String(); got != "CFF " {
		t.Errorf("MakeTag(CFF) = %q, want padded", got)
	}
	if TagGPOS.String() != "GPOS" {
		t.Errorf("TagGPOS = %q", TagGPOS)
	}
}

func TestOpen(t *testing.T) {
	data := testFont(cmapFormat4(t, map[uint16]int{'A': 1}))
	f, err := Open(data, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, tag := range []Tag{TagCmap, TagGlyf, TagHead} {
		if _, ok := f.Table(tag); !ok {
			t.Errorf("Table(%s) missing", tag)
		}
	}
	if _, ok := f.Table(TagKern); ok {
		t.Error("Table(kern) present in a font without kerning")
	}
	upem, err := f.UnitsPerEm()
	if err != nil || upem != 1000 {
		t.Errorf("UnitsPerEm() = %d, %v; want 1000", upem, err)
	}
}

func TestOpenErrors(t *testing.T) {
	valid := testFont(cmapFormat4(t, map[uint16]int{'A': 1}))
	tests := []struct {
		name  string
		data  []byte
		index int
		want  error
	}{
		{"empty", nil, 0, ErrNotSFNT},
		{"garbage", []byte("not a font at all"), 0, ErrNotSFNT},
		{"index on single font", valid, 1, ErrFontIndex},
		{"truncated directory", valid[:20], 0, ErrTableBounds},
		{"collection index", buildTTC([]table{{"head", headTable(1000)}}), 1, ErrFontIndex},
		{"negative collection index", buildTTC([]table{{"head", headTable(1000)}}), -1, ErrFontIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.data, tt.index)
			if !errors.Is(err, tt.want) {
				t.Errorf("Open() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTableOutOfRange(t *testing.T) {
	data := testFont(cmapFormat4(t, map[uint16]int{'A': 1}))
	f, err := Open(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Cut the file so the last table record points past the end.
	f.data = f.data[:len(f.data)-60]
	if _, ok := f.Table(TagHead); ok {
		t.Error("Table(head) returned data past the end of the file")
	}
	if _, err := f.UnitsPerEm(); !errors.Is(err, ErrTableBounds) {
		t.Errorf("UnitsPerEm() error = %v, want ErrTableBounds", err)
	}
}

// TestOpenCollection reads the third font of a collection; its directory
// lives at its own offset, not at the start of the file.
func TestOpenCollection(t *testing.T) {
	var fonts [][]table
	for i := range 3 {
		fonts = append(fonts, []table{
			{"cmap", cmapFormat4(t, map[uint16]int{'A': 10 + i})},
			{"glyf", []byte{0, 0, 0, 0}},
			{"head", headTable(1000 * (i + 1))},
		})
	}
	data := buildTTC(fonts...)

	n, err := NumFonts(data)
	if err != nil || n != 3 {
		t.Fatalf("NumFonts() = %d, %v; want 3", n, err)
	}
	for i := range 3 {
		f, err := Open(data, i)
		if err != nil {
			t.Fatalf("Open(%d): %v", i, err)
		}
		if f.Index() != i {
			t.Errorf("Index() = %d, want %d", f.Index(), i)
		}
		upem, err := f.UnitsPerEm()
		if err != nil || int(upem) != 1000*(i+1) {
			t.Errorf("font %d: UnitsPerEm() = %d, %v", i, upem, err)
		}
		cm, err := f.CMap()
		if err != nil {
			t.Fatalf("font %d: CMap: %v", i, err)
		}
		if g, _ := cm.Lookup('A'); int(g) != 10+i {
			t.Errorf("font %d: Lookup('A') = %d, want %d", i, g, 10+i)
		}
		if err := CheckCompatible(data, i); err != nil {
			t.Errorf("CheckCompatible(%d): %v", i, err)
		}
	}
}

func TestCheckCompatible(t *testing.T) {
	cmap := cmapFormat4(t, map[uint16]int{'A': 1})
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"valid", testFont(cmap), nil},
		{"no outlines", buildSFNT(table{"cmap", cmap}, table{"head", headTable(1000)}), ErrNoOutlines},
		{"cff outlines", buildSFNT(table{"CFF ", []byte{1, 0, 4, 1}}, table{"cmap", cmap}, table{"head", headTable(1000)}), nil},
		{"no head", buildSFNT(table{"cmap", cmap}, table{"glyf", []byte{0}}), ErrTableNotFound},
		{"zero upem", buildSFNT(table{"cmap", cmap}, table{"glyf", []byte{0}}, table{"head", headTable(0)}), ErrUnsupportedFormat},
		{"no cmap", buildSFNT(table{"glyf", []byte{0}}, table{"head", headTable(1000)}), ErrTableNotFound},
		{"not a font", []byte{1, 2, 3, 4, 5}, ErrNotSFNT},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCompatible(tt.data, 0)
			if tt.want == nil {
				if err != nil {
					t.Errorf("CheckCompatible() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("CheckCompatible() = %v, want %v", err, tt.want)
			}
		})
	}
}
