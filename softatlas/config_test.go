package softatlas

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{"default", func(*Config) {}, ""},
		{"fixed width", func(c *Config) { c.Width = 1024 }, ""},
		{"negative width", func(c *Config) { c.Width = -1 }, "Width"},
		{"huge width", func(c *Config) { c.Width = 32768 }, "Width"},
		{"zero height", func(c *Config) { c.MaxHeight = 0 }, "MaxHeight"},
		{"huge height", func(c *Config) { c.MaxHeight = 20000 }, "MaxHeight"},
		{"negative padding", func(c *Config) { c.Padding = -1 }, "Padding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tt.wantField {
				t.Errorf("Validate() error = %v, want field %s", err, tt.wantField)
			}
			if _, err := New(cfg); err == nil {
				t.Error("New() accepted an invalid config")
			}
		})
	}
}
