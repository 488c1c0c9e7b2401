package gamefont

import (
	"hash/crc32"

	"github.com/pkg/errors"
)

// knownChecksums are the CRC-32 values of the unmodified font files.
var knownChecksums = map[string]uint32{
	"common/font/AXIS_96.fdt":         1486212503,
	"common/font/AXIS_12.fdt":         1370045105,
	"common/font/AXIS_14.fdt":         645957730,
	"common/font/AXIS_18.fdt":         899094094,
	"common/font/AXIS_36.fdt":         2537048938,
	"common/font/Jupiter_16.fdt":      1642196098,
	"common/font/Jupiter_20.fdt":      3053628263,
	"common/font/Jupiter_23.fdt":      1536194944,
	"common/font/Jupiter_45.fdt":      3473589216,
	"common/font/Jupiter_46.fdt":      1370962087,
	"common/font/Jupiter_90.fdt":      3661420529,
	"common/font/Meidinger_16.fdt":    3700692128,
	"common/font/Meidinger_20.fdt":    441419856,
	"common/font/Meidinger_40.fdt":    203848091,
	"common/font/MiedingerMid_10.fdt": 499375313,
	"common/font/MiedingerMid_12.fdt": 1925552591,
	"common/font/MiedingerMid_14.fdt": 1919733827,
	"common/font/MiedingerMid_18.fdt": 1635778987,
	"common/font/MiedingerMid_36.fdt": 1190559864,
	"common/font/TrumpGothic_184.fdt": 973994576,
	"common/font/TrumpGothic_23.fdt":  1967289381,
	"common/font/TrumpGothic_34.fdt":  1777971886,
	"common/font/TrumpGothic_68.fdt":  1170173741,
	"common/font/font0.tex":           514269927,
	"common/font/font1.tex":           3616607606,
	"common/font/font2.tex":           4166651000,
	"common/font/font3.tex":           1264942640,
	"common/font/font4.tex":           3534300885,
	"common/font/font5.tex":           1041916216,
	"common/font/font6.tex":           1247097672,
}

// VerifyAssets reads every known font file from src and reports the ones
// that are unreadable or differ from the stock files. A nil map means all
// files matched. Files absent from the checksum list are not read.
func VerifyAssets(src AssetSource) map[string]error {
	var bad map[string]error
	for path, want := range knownChecksums {
		data, err := src.ReadFile(path)
		if err == nil {
			// Either CRC-32 presentation (final XOR or not) is accepted.
			if got := crc32.ChecksumIEEE(data); got != want && ^got != want {
				err = errors.Wrapf(ErrChecksumMismatch, "expected %#08x, got %#08x", want, got)
			}
		}
		if err != nil {
			if bad == nil {
				bad = make(map[string]error)
			}
			bad[path] = err
		}
	}
	return bad
}
