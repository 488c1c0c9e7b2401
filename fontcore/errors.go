package fontcore

import (
	"errors"
	"fmt"
)

// Sentinel errors for fontcore package.
var (
	// ErrAtlasClosed is returned by atlas operations after Close.
	ErrAtlasClosed = errors.New("fontcore: atlas closed")

	// ErrAtlasBuilt is returned when fonts or rects are added after Build.
	ErrAtlasBuilt = errors.New("fontcore: atlas already built")

	// ErrFontNotInAtlas is returned when a font argument belongs to a
	// different atlas.
	ErrFontNotInAtlas = errors.New("fontcore: font does not belong to this atlas")
)

// ConfigError represents a font configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "fontcore: invalid font config." + e.Field + ": " + e.Reason
}

// RangeError wraps a glyph range validation failure.
type RangeError struct {
	Err error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("fontcore: invalid font config.GlyphRanges: %v", e.Err)
}

func (e *RangeError) Unwrap() error { return e.Err }
