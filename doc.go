// Package fontatlas builds and maintains GPU-ready glyph atlases assembled
// from independently owned font sources.
//
// # Overview
//
// A [FontAtlas] combines three kinds of fonts into one texture atlas:
//
//   - delegate fonts, produced by a user callback that adds TrueType or
//     OpenType files through the build toolkit,
//   - prebaked game fonts (FDT metrics plus channel packed TEX textures),
//     optionally synthesized bold or italic,
//   - the factory's default font and language fallback fonts.
//
// Callers hold [FontHandle] values. A handle survives rebuilds; every build
// realizes it again and installs the result atomically. Fonts are locked
// with [FontHandle.TryLock] or [FontHandle.Lock], which keep the built data
// alive until the returned [LockedFont] is released.
//
// # Quick Start
//
//	factoryCfg := fontatlas.DefaultFactoryConfig()
//	factoryCfg.Uploader = gpuupload.NewMemory(gpuupload.FormatB8G8R8A8)
//	factory, err := fontatlas.NewFactory(factoryCfg)
//	if err != nil {
//	    return err
//	}
//
//	atlas, err := factory.NewFontAtlas("ui", fontatlas.RebuildModeDisable, true)
//	if err != nil {
//	    return err
//	}
//	defer atlas.Close()
//
//	h := atlas.NewDelegateFontHandle(func(tk fontatlas.Toolkit) error {
//	    if tk.BuildStep() != fontatlas.BuildStepPreBuild {
//	        return nil
//	    }
//	    _, err := tk.(fontatlas.PreBuildToolkit).AddDefaultFont(18, nil)
//	    return err
//	})
//	defer h.Close()
//
//	if err := atlas.BuildFontsImmediately(); err != nil {
//	    return err
//	}
//	lf, err := h.TryLock()
//	if err != nil {
//	    return err
//	}
//	defer lf.Release()
//
// # Rebuilds
//
// New handles recommend a rebuild. What happens next depends on the
// [RebuildMode]: nothing, a build on the next [FontAtlas.NewFrame], or a
// background build through [FontAtlas.BuildFontsAsync]. Async builds are
// serialized; a build overtaken by a newer request is discarded.
//
// # Build steps
//
// Each build passes through [BuildStepPreBuild] (fonts are added),
// [BuildStepBuild] (glyphs are rasterized and packed), [BuildStepPostBuild]
// (fonts are edited and textures uploaded) and, once installed,
// [BuildStepPostPromotion]. Delegate callbacks run in every step and
// receive the toolkit interface of that step.
//
// # Errors
//
// Failures of a single handle are recorded and returned by
// [FontHandle.LoadErr]; the rest of the build proceeds. Only a failure of
// the atlas primitive loses the whole build.
package fontatlas

// Version is the current version of the library.
const Version = "0.1.0"
