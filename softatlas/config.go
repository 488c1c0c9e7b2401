package softatlas

import "log/slog"

// Config holds atlas configuration.
type Config struct {
	// Width is the page width. 0 picks 512 to 4096 from the total glyph
	// area. Default: 0
	Width int

	// MaxHeight bounds the page height. Default: 8192
	MaxHeight int

	// Padding between packed rects. Default: 1
	Padding int

	// Logger receives build statistics. Nil discards them.
	Logger *slog.Logger

	// Faces shares parsed fonts with other atlases. Nil gives the atlas
	// a private cache that lives as long as the atlas.
	Faces *FaceCache
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHeight: 8192,
		Padding:   1,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Width < 0 {
		return &ConfigError{Field: "Width", Reason: "must be non-negative"}
	}
	if c.Width > 16384 {
		return &ConfigError{Field: "Width", Reason: "must be at most 16384"}
	}
	if c.MaxHeight < 1 {
		return &ConfigError{Field: "MaxHeight", Reason: "must be at least 1"}
	}
	if c.MaxHeight > 16384 {
		return &ConfigError{Field: "MaxHeight", Reason: "must be at most 16384"}
	}
	if c.Padding < 0 {
		return &ConfigError{Field: "Padding", Reason: "must be non-negative"}
	}
	return nil
}
