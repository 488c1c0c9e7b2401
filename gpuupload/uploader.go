package gpuupload

import "fmt"

// Texture is an uploaded page.
type Texture interface {
	// ID is non-zero and unique per uploader.
	ID() uint64
	Size() (width, height int)
	Format() PixelFormat
	Close() error
}

// Uploader creates GPU textures from pixel data.
type Uploader interface {
	SupportsFormat(f PixelFormat) bool

	// Upload copies width×height pixels of format f, rows stride bytes
	// apart, into a new texture.
	Upload(pixels []byte, stride, width, height int, f PixelFormat) (Texture, error)
}

// UploadAlpha8 uploads a coverage page as white pixels, preferring
// B4G4R4A4 over B8G8R8A8.
func UploadAlpha8(u Uploader, pixels []byte, width, height int) (Texture, error) {
	if err := checkSize(pixels, width, height, 1); err != nil {
		return nil, err
	}
	switch {
	case u.SupportsFormat(FormatB4G4R4A4):
		return u.Upload(Alpha8ToB4G4R4A4(pixels[:width*height]), width*2, width, height, FormatB4G4R4A4)
	case u.SupportsFormat(FormatB8G8R8A8):
		return u.Upload(Alpha8ToB8G8R8A8(pixels[:width*height]), width*4, width, height, FormatB8G8R8A8)
	default:
		return nil, fmt.Errorf("%w: alpha8 needs %v or %v", ErrUnsupportedFormat, FormatB4G4R4A4, FormatB8G8R8A8)
	}
}

// UploadRGBA32 uploads an R8G8B8A8 page, quantizing it to B4G4R4A4 when
// the uploader supports that format.
func UploadRGBA32(u Uploader, pixels []byte, width, height int) (Texture, error) {
	if err := checkSize(pixels, width, height, 4); err != nil {
		return nil, err
	}
	switch {
	case u.SupportsFormat(FormatB4G4R4A4):
		return u.Upload(RGBA32ToB4G4R4A4(pixels[:width*height*4]), width*2, width, height, FormatB4G4R4A4)
	case u.SupportsFormat(FormatR8G8B8A8):
		return u.Upload(pixels, width*4, width, height, FormatR8G8B8A8)
	default:
		return nil, fmt.Errorf("%w: rgba32 needs %v", ErrUnsupportedFormat, FormatR8G8B8A8)
	}
}

func checkSize(pixels []byte, width, height, bpp int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if len(pixels) < width*height*bpp {
		return fmt.Errorf("%w: %d bytes for %dx%d at %d bytes per pixel", ErrInvalidSize, len(pixels), width, height, bpp)
	}
	return nil
}

// checkUpload validates the arguments of Uploader.Upload.
func checkUpload(pixels []byte, stride, width, height int, f PixelFormat) error {
	bpp := f.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	if width <= 0 || height <= 0 || stride < width*bpp {
		return fmt.Errorf("%w: %dx%d stride %d", ErrInvalidSize, width, height, stride)
	}
	if len(pixels) < stride*(height-1)+width*bpp {
		return fmt.Errorf("%w: %d bytes for %dx%d stride %d", ErrInvalidSize, len(pixels), width, height, stride)
	}
	return nil
}
