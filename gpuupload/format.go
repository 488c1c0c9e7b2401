package gpuupload

// PixelFormat is the memory layout of uploaded pixels.
type PixelFormat uint8

const (
	// FormatR8G8B8A8 stores one byte per channel, R first.
	FormatR8G8B8A8 PixelFormat = iota + 1

	// FormatB8G8R8A8 stores one byte per channel, B first.
	FormatB8G8R8A8

	// FormatB4G4R4A4 packs four 4-bit channels into a little-endian
	// uint16, B in the low nibble and A in the high nibble.
	FormatB4G4R4A4
)

// BytesPerPixel returns the pixel size of f, or 0 if f is unknown.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatR8G8B8A8, FormatB8G8R8A8:
		return 4
	case FormatB4G4R4A4:
		return 2
	default:
		return 0
	}
}

func (f PixelFormat) String() string {
	switch f {
	case FormatR8G8B8A8:
		return "R8G8B8A8"
	case FormatB8G8R8A8:
		return "B8G8R8A8"
	case FormatB4G4R4A4:
		return "B4G4R4A4"
	default:
		return "Unknown"
	}
}
