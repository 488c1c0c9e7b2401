package fontatlas

import (
	"log/slog"
	"time"

	"github.com/gogpu/fontatlas/softatlas"
)

// rebuildFontsPrivate runs one build attempt and returns the built data
// with its initial reference. On error the partial data is released.
func (fa *FontAtlas) rebuildFontsPrivate(async bool) (*DataRoot, error) {
	scale := float32(1)
	if fa.globalScaled {
		scale = safeScale(fa.factory.Scale())
	}

	cfg := fa.factory.cfg.Atlas
	cfg.Logger = fa.logger()
	cfg.Faces = fa.factory.faces
	atlas, err := softatlas.New(cfg)
	if err != nil {
		return nil, err
	}
	root := newDataRoot(fa.name, scale, atlas, fa.logger())
	for _, m := range fa.managers {
		root.addSubstance(m.NewSubstance(root))
	}

	start := time.Now()
	tk := newBuildToolkit(fa, root, async)
	err = fa.runBuildSteps(tk)
	tk.close()
	root.buildInProgress.Store(false)

	if err != nil {
		fa.logger().Error("fontatlas: build failed",
			slog.String("atlas", fa.name),
			slog.Any("error", err))
		_, _ = root.Release()
		return nil, err
	}
	fa.logger().Debug("fontatlas: build finished",
		slog.String("atlas", fa.name),
		slog.Bool("async", async),
		slog.Duration("elapsed", time.Since(start)))
	return root, nil
}

func (fa *FontAtlas) runBuildSteps(tk *buildToolkit) error {
	tk.step = BuildStepPreBuild
	fa.fireStepChange(tk)
	for _, s := range tk.substances {
		s.OnPreBuild(tk)
	}
	for _, s := range tk.substances {
		s.OnPreBuildCleanup(tk)
	}

	if bad := tk.invalidMergeConfigs(); len(bad) > 0 {
		fa.logger().Warn("fontatlas: merge target not in this atlas, merging into the default font",
			slog.String("atlas", fa.name),
			slog.Int("configs", len(bad)))
		if err := tk.redirectMerges(bad); err != nil {
			return err
		}
	}
	tk.normalizeScale()

	if err := tk.doBuild(); err != nil {
		return err
	}

	tk.unscaleFonts()
	fa.fireStepChange(tk)
	for _, s := range tk.substances {
		s.OnPostBuild(tk)
	}
	tk.runPostBuildActions()
	tk.buildLookupTables()

	if ready := fa.factory.cfg.RendererReady; ready != nil {
		<-ready
	}
	return tk.uploadTextures()
}

func (fa *FontAtlas) fireStepChange(tk Toolkit) {
	for _, fn := range fa.stepListeners.snapshot() {
		if err := invokeSafely(func() error { fn(tk); return nil }); err != nil {
			fa.logger().Error("fontatlas: build step listener failed",
				slog.String("atlas", fa.name),
				slog.String("step", tk.BuildStep().String()),
				slog.Any("error", err))
		}
	}
}

type fontChange struct {
	h  *handle
	lf *LockedFont
}

// promote installs root if index is still the latest build, then runs the
// post-promotion step and notifies the handles. Otherwise root is
// released.
func (fa *FontAtlas) promote(root *DataRoot, index uint64) bool {
	fa.mu.Lock()
	if fa.closed.Load() || fa.buildIndex.Load() != index {
		fa.mu.Unlock()
		_, _ = root.Release()
		return false
	}
	prev := fa.root
	fa.root = root
	substances := root.Substances()
	for _, s := range substances {
		s.Manager().base().install(s)
	}

	var changes []fontChange
	for _, s := range substances {
		for _, h := range s.RelevantHandles() {
			var lf *LockedFont
			if f := s.Font(h); f.Loaded() {
				if _, err := root.AddRef(); err == nil {
					lf = &LockedFont{font: f, root: root}
				}
			}
			changes = append(changes, fontChange{h: h.core(), lf: lf})
		}
	}
	fa.mu.Unlock()

	if prev != nil {
		_, _ = prev.Release()
	}
	fa.runPostPromotion(root)

	for _, c := range changes {
		c.h.invokeFontChanged(c.lf)
		if c.lf != nil {
			c.lf.Release()
		}
	}
	fa.logger().Info("fontatlas: atlas built",
		slog.String("atlas", fa.name),
		slog.Uint64("index", index),
		slog.Int("fonts", len(root.Atlas().Fonts())),
		slog.Int("textures", len(root.Textures())))
	return true
}

func (fa *FontAtlas) runPostPromotion(root *DataRoot) {
	tk := newBuildToolkit(fa, root, false)
	defer tk.close()
	tk.step = BuildStepPostPromotion
	fa.fireStepChange(tk)
	for _, s := range tk.substances {
		s.OnPostPromotion(tk)
	}
	for _, f := range tk.Fonts() {
		f.ClearFallback()
		f.BuildLookupTable()
	}
}
