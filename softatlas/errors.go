package softatlas

import "errors"

// Sentinel errors for softatlas package.
var (
	// ErrAtlasTooSmall is returned by Build when the packed glyphs do not
	// fit in MaxHeight.
	ErrAtlasTooSmall = errors.New("softatlas: glyphs do not fit in the atlas")

	// ErrFontIndex is returned when FontNo is outside the collection.
	ErrFontIndex = errors.New("softatlas: font index out of range")

	// ErrEmptyFontData is returned for configs without font data.
	ErrEmptyFontData = errors.New("softatlas: font data is empty")
)

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "softatlas: invalid config." + e.Field + ": " + e.Reason
}
