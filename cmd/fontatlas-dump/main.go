// Command fontatlas-dump builds a font atlas headlessly and writes its
// texture pages as PNG files.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gogpu/fontatlas"
	"github.com/gogpu/fontatlas/fontcore"
	"github.com/gogpu/fontatlas/gamefont"
	"github.com/gogpu/fontatlas/gpuupload"
)

func main() {
	var (
		fontPath = flag.String("font", "", "TrueType or OpenType file (default: the built-in font)")
		size     = flag.Float64("size", 16, "font size in pixels")
		lang     = flag.String("lang", "en", "language tag for glyph presets")
		scale    = flag.Float64("scale", 1, "global scale")
		gameDir  = flag.String("game-dir", "", "directory holding extracted game font files")
		gameFont = flag.String("game-font", "AXIS_12", "game font to add when -game-dir is set")
		weight   = flag.Float64("weight", 0, "synthetic weight of the game font")
		output   = flag.String("output", ".", "output directory")
		verbose  = flag.Bool("v", false, "log build steps")
	)
	flag.Parse()

	if *verbose {
		fontatlas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	up := gpuupload.NewMemory(gpuupload.FormatB8G8R8A8)
	cfg := fontatlas.DefaultFactoryConfig()
	cfg.Uploader = up
	cfg.Language = *lang
	s := float32(*scale)
	cfg.Scale = func() float32 { return s }
	if *gameDir != "" {
		cfg.Assets = gamefont.Dir(*gameDir)
	}

	factory, err := fontatlas.NewFactory(cfg)
	if err != nil {
		log.Fatalf("Failed to create factory: %v", err)
	}
	atlas, err := factory.NewFontAtlas("dump", fontatlas.RebuildModeDisable, true)
	if err != nil {
		log.Fatalf("Failed to create atlas: %v", err)
	}
	defer atlas.Close()

	handles := []fontatlas.FontHandle{
		atlas.NewDelegateFontHandle(func(tk fontatlas.Toolkit) error {
			if tk.BuildStep() != fontatlas.BuildStepPreBuild {
				return nil
			}
			pb := tk.(fontatlas.PreBuildToolkit)
			if *fontPath == "" {
				_, err := pb.AddDefaultFont(float32(*size), nil)
				return err
			}
			fc := fontatlas.DefaultSafeFontConfig()
			fc.SizePx = float32(*size)
			fc.GlyphRanges = factory.DefaultGlyphRanges()
			f, err := pb.AddFontFromFile(*fontPath, fc)
			if err != nil {
				return err
			}
			fc.MergeFont = f
			fc.GlyphRanges = nil
			return pb.AddExtraGlyphsForLanguage(fc)
		}),
	}
	if *gameDir != "" {
		family, ok := findGameFont(*gameFont)
		if !ok {
			log.Fatalf("Unknown game font %q", *gameFont)
		}
		style := gamefont.StyleOf(family)
		style.Weight = float32(*weight)
		h, err := atlas.NewGameFontHandle(style)
		if err != nil {
			log.Fatalf("Invalid game font style: %v", err)
		}
		handles = append(handles, h)
	}
	defer func() {
		for _, h := range handles {
			_ = h.Close()
		}
	}()

	if err := atlas.BuildFontsImmediately(); err != nil {
		log.Fatalf("Failed to build: %v", err)
	}

	for _, h := range handles {
		lf, err := h.TryLock()
		if err != nil {
			log.Printf("%v: %v", h, err)
			continue
		}
		printFont(h, lf.Font())
		lf.Release()
	}

	for i, t := range up.Textures() {
		if t.Closed() {
			continue
		}
		name := filepath.Join(*output, fmt.Sprintf("page%d.png", i))
		if err := savePNG(name, t); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		w, h := t.Size()
		log.Printf("Page saved to %s (%dx%d)\n", name, w, h)
	}
}

func findGameFont(stem string) (gamefont.FamilyAndSize, bool) {
	for _, f := range gamefont.AllFamilyAndSizes() {
		if strings.EqualFold(strings.TrimSuffix(path.Base(f.Path()), ".fdt"), stem) {
			return f, true
		}
	}
	return gamefont.Undefined, false
}

func printFont(h fontatlas.FontHandle, f *fontcore.Font) {
	fmt.Printf("%v: size %.1f ascent %.1f descent %.1f, %d glyphs, %d kerning pairs\n",
		h, f.FontSize, f.Ascent, f.Descent, len(f.Glyphs), len(f.KerningPairs()))
	for _, r := range "AVa?" {
		g := f.FindGlyphNoFallback(r)
		if g == nil {
			continue
		}
		fmt.Printf("  %q page %d quad (%.1f,%.1f)-(%.1f,%.1f) uv (%.3f,%.3f)-(%.3f,%.3f) advance %.1f\n",
			r, g.TextureIndex, g.X0, g.Y0, g.X1, g.Y1, g.U0, g.V0, g.U1, g.V1, g.AdvanceX)
	}
}

// savePNG writes a B8G8R8A8 memory texture.
func savePNG(name string, t *gpuupload.MemoryTexture) error {
	w, h := t.Size()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(t.Pixels) && i+3 < len(img.Pix); i += 4 {
		img.Pix[i+0] = t.Pixels[i+2]
		img.Pix[i+1] = t.Pixels[i+1]
		img.Pix[i+2] = t.Pixels[i+0]
		img.Pix[i+3] = t.Pixels[i+3]
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
