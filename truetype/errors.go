package truetype

import "errors"

// Sentinel errors for truetype package.
var (
	// ErrNotSFNT is returned when the data does not start with a known SFNT
	// or TTC signature.
	ErrNotSFNT = errors.New("truetype: not an sfnt font")

	// ErrFontIndex is returned when the requested font index is out of range.
	ErrFontIndex = errors.New("truetype: font index out of range")

	// ErrTableBounds is returned when a read falls outside the table data.
	ErrTableBounds = errors.New("truetype: read out of bounds")

	// ErrTableNotFound is returned when a required table is absent.
	ErrTableNotFound = errors.New("truetype: table not found")

	// ErrNoSupportedCMap is returned when no cmap subtable matches the
	// supported platform/encoding list or formats.
	ErrNoSupportedCMap = errors.New("truetype: no supported cmap subtable")

	// ErrUnsupportedFormat is returned for table versions or subtable
	// formats this package does not decode.
	ErrUnsupportedFormat = errors.New("truetype: unsupported table format")

	// ErrNoOutlines is returned by CheckCompatible when the font carries
	// neither glyf nor CFF outlines.
	ErrNoOutlines = errors.New("truetype: font has no outline data")
)
