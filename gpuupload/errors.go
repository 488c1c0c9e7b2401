package gpuupload

import "errors"

// Sentinel errors for gpuupload package.
var (
	// ErrUnsupportedFormat is returned when no supported format can hold
	// the page.
	ErrUnsupportedFormat = errors.New("gpuupload: unsupported pixel format")

	// ErrInvalidSize is returned for empty textures or short pixel data.
	ErrInvalidSize = errors.New("gpuupload: invalid texture size")

	// ErrNoHALDevice is returned by NewHAL when the provider does not
	// expose HAL device and queue objects.
	ErrNoHALDevice = errors.New("gpuupload: provider does not expose a HAL device")

	// ErrClosed is returned by uploads after Close.
	ErrClosed = errors.New("gpuupload: uploader closed")
)
