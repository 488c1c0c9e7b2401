package truetype

import (
	"bytes"
	"encoding/binary"
	"testing"

	sfntcmap "seehuhn.de/go/sfnt/cmap"
	"seehuhn.de/go/sfnt/glyph"
)

type table struct {
	tag  string
	data []byte
}

func be16(b []byte, v int) []byte { return binary.BigEndian.AppendUint16(b, uint16(v)) }
func be32(b []byte, v int) []byte { return binary.BigEndian.AppendUint32(b, uint32(v)) }

// buildSFNT lays out a single font with file-absolute table offsets.
func buildSFNT(tables ...table) []byte {
	return assemble(false, tables)
}

// buildTTC lays out a collection: header, every table directory, then all
// table data.
func buildTTC(fonts ...[]table) []byte {
	return assemble(true, fonts...)
}

func assemble(ttc bool, fonts ...[]table) []byte {
	off := 0
	if ttc {
		off = 12 + 4*len(fonts)
	}
	dirs := make([]int, len(fonts))
	for i, f := range fonts {
		dirs[i] = off
		off += 12 + 16*len(f)
	}
	dataStart := off

	var out, data []byte
	if ttc {
		out = append(out, "ttcf"...)
		out = be16(out, 1)
		out = be16(out, 0)
		out = be32(out, len(fonts))
		for _, d := range dirs {
			out = be32(out, d)
		}
	}
	for _, f := range fonts {
		out = be32(out, 0x00010000)
		out = be16(out, len(f))
		out = append(out, make([]byte, 6)...)
		for _, t := range f {
			out = append(out, MakeTag(t.tag).String()...)
			out = be32(out, 0)
			out = be32(out, dataStart+len(data))
			out = be32(out, len(t.data))
			data = append(data, t.data...)
			for len(data)%4 != 0 {
				data = append(data, 0)
			}
		}
	}
	return append(out, data...)
}

func headTable(upem int) []byte {
	b := make([]byte, 54)
	binary.BigEndian.PutUint16(b[18:], uint16(upem))
	return b
}

// cmapFormat4 encodes a (3,1) cmap with the seehuhn encoder.
func cmapFormat4(t *testing.T, m map[uint16]int) []byte {
	t.Helper()
	sub := sfntcmap.Format4{}
	for c, g := range m {
		sub[c] = glyph.ID(g)
	}
	return writeCMap(t, sfntcmap.Table{{PlatformID: 3, EncodingID: 1}: sub.Encode(0)})
}

func writeCMap(t *testing.T, tbl sfntcmap.Table) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	if _, err := buf.Write(tbl.Encode()); err != nil {
		t.Fatalf("encode cmap: %v", err)
	}
	return buf.Bytes()
}

// rawCMap wraps one hand-built subtable in a cmap header.
func rawCMap(platform, encoding int, sub []byte) []byte {
	var b []byte
	b = be16(b, 0)
	b = be16(b, 1)
	b = be16(b, platform)
	b = be16(b, encoding)
	b = be32(b, 12)
	return append(b, sub...)
}

// testFont builds a minimal loadable font around a cmap and extra tables.
func testFont(cmap []byte, extra ...table) []byte {
	tables := []table{
		{"cmap", cmap},
		{"glyf", []byte{0, 0, 0, 0}},
		{"head", headTable(1000)},
	}
	return buildSFNT(append(tables, extra...)...)
}

type kernSub struct {
	coverage byte
	pairs    [][3]int
}

func kernV0(subs ...kernSub) []byte {
	var b []byte
	b = be16(b, 0)
	b = be16(b, len(subs))
	for _, s := range subs {
		b = be16(b, 0)
		b = be16(b, 14+6*len(s.pairs))
		b = append(b, 0, s.coverage)
		b = be16(b, len(s.pairs))
		b = append(b, make([]byte, 6)...)
		for _, p := range s.pairs {
			b = be16(b, p[0])
			b = be16(b, p[1])
			b = be16(b, p[2])
		}
	}
	return b
}

func kernV1(subs ...kernSub) []byte {
	var b []byte
	b = be32(b, 0x00010000)
	b = be32(b, len(subs))
	for _, s := range subs {
		b = be32(b, 16+6*len(s.pairs))
		b = append(b, s.coverage, 0)
		b = be16(b, 0)
		b = be16(b, len(s.pairs))
		b = append(b, make([]byte, 6)...)
		for _, p := range s.pairs {
			b = be16(b, p[0])
			b = be16(b, p[1])
			b = be16(b, p[2])
		}
	}
	return b
}

// gposWithLookup wraps a single lookup of the given type holding sub.
func gposWithLookup(kind int, sub []byte) []byte {
	var b []byte
	b = be16(b, 1)
	b = be16(b, 0)
	b = be16(b, 0)
	b = be16(b, 0)
	b = be16(b, 10) // lookup list
	b = be16(b, 1)
	b = be16(b, 4) // lookup at 14
	b = be16(b, kind)
	b = be16(b, 0)
	b = be16(b, 1)
	b = be16(b, 8) // subtable at 22
	return append(b, sub...)
}

// pairPosFormat1 maps first glyph 3 to (5: -40) and (6: 0), XAdvance only.
func pairPosFormat1() []byte {
	var b []byte
	b = be16(b, 1)
	b = be16(b, 22) // coverage
	b = be16(b, 0x0004)
	b = be16(b, 0)
	b = be16(b, 1)
	b = be16(b, 12) // pair set
	b = be16(b, 2)
	b = be16(b, 5)
	b = be16(b, -40)
	b = be16(b, 6)
	b = be16(b, 0)
	b = be16(b, 1) // coverage format 1
	b = be16(b, 1)
	b = be16(b, 3)
	return b
}

// pairPosFormat2 puts glyph 11 in class 1 and glyphs 20, 21 in class 2's
// class 1; that class pair has XAdvance -30 and XPlacement -5.
func pairPosFormat2() []byte {
	var b []byte
	b = be16(b, 2)
	b = be16(b, 32) // coverage
	b = be16(b, 0x0004)
	b = be16(b, 0x0001)
	b = be16(b, 40) // class def 1
	b = be16(b, 50) // class def 2
	b = be16(b, 2)
	b = be16(b, 2)
	for _, v := range [][2]int{{0, 0}, {0, 0}, {0, 0}, {-30, -5}} {
		b = be16(b, v[0])
		b = be16(b, v[1])
	}
	b = be16(b, 1) // coverage format 1
	b = be16(b, 2)
	b = be16(b, 10)
	b = be16(b, 11)
	b = be16(b, 2) // class def format 2
	b = be16(b, 1)
	b = be16(b, 11)
	b = be16(b, 11)
	b = be16(b, 1)
	b = be16(b, 1) // class def format 1
	b = be16(b, 20)
	b = be16(b, 2)
	b = be16(b, 1)
	b = be16(b, 1)
	return b
}

func extensionOf(sub []byte) []byte {
	var b []byte
	b = be16(b, 1)
	b = be16(b, lookupPairAdjustment)
	b = be32(b, 8)
	return append(b, sub...)
}
