package fontatlas

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/fontatlas/glyphrange"
	"github.com/gogpu/fontatlas/gpuupload"
	"github.com/gogpu/fontatlas/softatlas"
)

func TestFactoryConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		edit      func(cfg *FactoryConfig)
		wantField string
	}{
		{"defaults", func(*FactoryConfig) {}, ""},
		{"no uploader", func(cfg *FactoryConfig) { cfg.Uploader = nil }, "Uploader"},
		{"zero default size", func(cfg *FactoryConfig) { cfg.DefaultFontSizePx = 0 }, "DefaultFontSizePx"},
		{"no default font", func(cfg *FactoryConfig) { cfg.DefaultFontData = nil }, "DefaultFontData"},
		{"negative cache", func(cfg *FactoryConfig) { cfg.PairCacheSize = -1 }, "PairCacheSize"},
		{"zero cache", func(cfg *FactoryConfig) { cfg.PairCacheSize = 0 }, "PairCacheSize"},
		{"bad language", func(cfg *FactoryConfig) { cfg.Language = "not a language tag" }, "Language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultFactoryConfig()
			cfg.Uploader = gpuupload.NewMemory()
			tt.edit(&cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) || cerr.Field != tt.wantField {
				t.Errorf("Validate() = %v, want a ConfigError on %s", err, tt.wantField)
			}
		})
	}
}

func TestFactoryConfigValidateAtlas(t *testing.T) {
	cfg := DefaultFactoryConfig()
	cfg.Uploader = gpuupload.NewMemory()
	cfg.Atlas.Width = -1

	if _, err := NewFactory(cfg); err == nil {
		t.Fatal("NewFactory() accepted an invalid atlas config")
	}
	var aerr *softatlas.ConfigError
	if err := cfg.Validate(); !errors.As(err, &aerr) {
		t.Errorf("Validate() = %v, want a softatlas.ConfigError", err)
	}
}

func TestFactoryDefaults(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	if got := f.Scale(); got != 1 {
		t.Errorf("Scale() without a scale func = %v, want 1", got)
	}
	if got := f.Language().String(); got != "en" {
		t.Errorf("Language() = %q, want en", got)
	}
	if f.Library() == nil {
		t.Error("Library() = nil with assets configured")
	}
	if f.languageFont() != nil {
		t.Error("English resolved a language fallback font")
	}
}

func TestFactoryOwnsFaceCache(t *testing.T) {
	a, _ := newTestFactory(t, nil)
	b, _ := newTestFactory(t, nil)
	if a.faces == nil || a.faces == b.faces {
		t.Fatal("factories share a parsed font cache")
	}

	fa := newTestAtlas(t, a, RebuildModeDisable)
	h := fa.NewDelegateFontHandle(defaultFontDelegate(16))
	defer h.Close()
	mustBuild(t, fa)
	if n := a.faces.Len(); n != 1 {
		t.Errorf("factory face cache = %d entries after a build, want 1", n)
	}
	if n := b.faces.Len(); n != 0 {
		t.Errorf("unrelated factory face cache = %d entries, want 0", n)
	}

	shared := softatlas.NewFaceCache(1)
	c, _ := newTestFactory(t, func(cfg *FactoryConfig) { cfg.Atlas.Faces = shared })
	if c.faces != shared {
		t.Error("NewFactory() ignored FactoryConfig.Atlas.Faces")
	}
}

func TestDefaultGlyphRanges(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	ranges := f.DefaultGlyphRanges()
	if err := glyphrange.Validate(ranges); err != nil {
		t.Fatalf("DefaultGlyphRanges() = %v: %v", ranges, err)
	}

	var missing []rune
	for _, r := range []rune{' ', 'A', '~', 0xA0, 0xFF, 0x3013, 0xFFFD, 0x2026} {
		if !glyphrange.Contains(ranges, r) {
			missing = append(missing, r)
		}
	}
	if diff := cmp.Diff([]rune(nil), missing); diff != "" {
		t.Errorf("DefaultGlyphRanges() misses codepoints (-want +got):\n%s", diff)
	}
	if glyphrange.Contains(ranges, 0x1F) {
		t.Error("DefaultGlyphRanges() contains a control character")
	}
}

func TestFactoryLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	f, _ := newTestFactory(t, func(cfg *FactoryConfig) { cfg.Logger = logger })

	fa := newTestAtlas(t, f, RebuildModeDisable)
	h := fa.NewDelegateFontHandle(defaultFontDelegate(16))
	defer h.Close()
	bad := fa.NewDelegateFontHandle(func(Toolkit) error { return nil })
	defer bad.Close()
	mustBuild(t, fa)

	out := buf.String()
	for _, want := range []string{"fontatlas: atlas built", "fontatlas: delegate font failed", bad.String()} {
		if !strings.Contains(out, want) {
			t.Errorf("log output lacks %q:\n%s", want, out)
		}
	}
}
