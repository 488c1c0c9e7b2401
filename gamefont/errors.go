package gamefont

import "github.com/pkg/errors"

// Sentinel errors for gamefont package.
var (
	// ErrDataTooShort is returned when a structure extends past the end of
	// the file data.
	ErrDataTooShort = errors.New("gamefont: data too short")

	// ErrUnknownFamily is returned for FamilyAndSize values outside the
	// catalogue, including Undefined.
	ErrUnknownFamily = errors.New("gamefont: unknown family and size")

	// ErrUnsupportedTexFormat is returned for TEX pixel formats other than
	// B4G4R4A4 and B8G8R8A8.
	ErrUnsupportedTexFormat = errors.New("gamefont: unsupported texture format")

	// ErrInvalidStyle is returned by Style.Validate.
	ErrInvalidStyle = errors.New("gamefont: invalid style")

	// ErrChecksumMismatch is reported by VerifyAssets for modified files.
	ErrChecksumMismatch = errors.New("gamefont: unexpected file checksum")
)
