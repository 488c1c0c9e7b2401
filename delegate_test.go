package fontatlas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogpu/fontatlas/fontcore"
)

func TestDelegateWithoutFontFailsAlone(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	fa := newTestAtlas(t, f, RebuildModeDisable)
	good := fa.NewDelegateFontHandle(defaultFontDelegate(16))
	defer good.Close()
	bad := fa.NewDelegateFontHandle(func(Toolkit) error { return nil })
	defer bad.Close()

	mustBuild(t, fa)

	if !good.Available() {
		t.Fatalf("%v not available: %v", good, good.LoadErr())
	}
	if bad.Available() {
		t.Fatalf("%v available without a font", bad)
	}

	err := bad.LoadErr()
	if !errors.Is(err, ErrDelegateNoFont) {
		t.Fatalf("LoadErr() = %v, want ErrDelegateNoFont", err)
	}
	var herr *HandleBuildError
	if !errors.As(err, &herr) || herr.Step != BuildStepPreBuild || herr.Handle != bad.String() {
		t.Errorf("LoadErr() = %#v, want a pre-build HandleBuildError of %v", err, bad)
	}

	_, err = bad.TryLock()
	if !errors.Is(err, ErrFontNotBuilt) || !errors.Is(err, ErrDelegateNoFont) {
		t.Errorf("TryLock() error = %v, want ErrFontNotBuilt joined with ErrDelegateNoFont", err)
	}
}

func TestDelegatePreBuildOutcomes(t *testing.T) {
	errCallback := errors.New("callback failed")
	foreign := fontcore.NewFont(&fontcore.FontConfig{SizePixels: 16})

	tests := []struct {
		name     string
		fn       func(tk PreBuildToolkit) error
		wantErr  error
		wantSize float32
	}{
		{
			name:    "no font",
			fn:      func(PreBuildToolkit) error { return nil },
			wantErr: ErrDelegateNoFont,
		},
		{
			name:    "error",
			fn:      func(PreBuildToolkit) error { return errCallback },
			wantErr: errCallback,
		},
		{
			name:    "panic",
			fn:      func(PreBuildToolkit) error { panic("boom") },
			wantErr: ErrCallbackPanic,
		},
		{
			name: "font from elsewhere",
			fn: func(tk PreBuildToolkit) error {
				if _, err := tk.AddDefaultFont(16, asciiRanges); err != nil {
					return err
				}
				tk.SetFont(foreign)
				return nil
			},
			wantErr: fontcore.ErrFontNotInAtlas,
		},
		{
			name: "explicit font",
			fn: func(tk PreBuildToolkit) error {
				first, err := tk.AddDefaultFont(20, asciiRanges)
				if err != nil {
					return err
				}
				if _, err := tk.AddDefaultFont(30, asciiRanges); err != nil {
					return err
				}
				tk.SetFont(first)
				return nil
			},
			wantSize: 20,
		},
		{
			name: "several fonts use the last",
			fn: func(tk PreBuildToolkit) error {
				if _, err := tk.AddDefaultFont(20, asciiRanges); err != nil {
					return err
				}
				_, err := tk.AddDefaultFont(30, asciiRanges)
				return err
			},
			wantSize: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFactory(t, nil)
			fa := newTestAtlas(t, f, RebuildModeDisable)
			h := fa.NewDelegateFontHandle(preBuild(tt.fn))
			defer h.Close()
			mustBuild(t, fa)

			if tt.wantErr != nil {
				if err := h.LoadErr(); !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadErr() = %v, want %v", err, tt.wantErr)
				}
				if h.Available() {
					t.Error("failed handle is available")
				}
				return
			}
			if err := h.LoadErr(); err != nil {
				t.Fatalf("LoadErr() = %v", err)
			}
			if got := mustLock(t, h).Font().FontSize; got != tt.wantSize {
				t.Errorf("FontSize = %v, want %v", got, tt.wantSize)
			}
		})
	}
}

func TestDelegatePostBuildFailure(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	fa := newTestAtlas(t, f, RebuildModeDisable)
	var sawFont bool
	h := fa.NewDelegateFontHandle(func(tk Toolkit) error {
		switch tk.BuildStep() {
		case BuildStepPreBuild:
			_, err := tk.(PreBuildToolkit).AddDefaultFont(16, asciiRanges)
			return err
		case BuildStepPostBuild:
			sawFont = tk.Font() != nil
			_, err := tk.(PreBuildToolkit).AddDefaultFont(16, nil)
			return err
		}
		return nil
	})
	defer h.Close()
	mustBuild(t, fa)

	if !sawFont {
		t.Error("post-build callback did not receive its font")
	}
	err := h.LoadErr()
	if !errors.Is(err, ErrWrongBuildStep) {
		t.Fatalf("LoadErr() = %v, want ErrWrongBuildStep", err)
	}
	var herr *HandleBuildError
	if !errors.As(err, &herr) || herr.Step != BuildStepPostBuild {
		t.Errorf("LoadErr() = %v, want a post-build HandleBuildError", err)
	}
	if h.Available() {
		t.Error("handle failed in post-build is available")
	}
}

func TestDelegateRebuildsEveryBuild(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	fa := newTestAtlas(t, f, RebuildModeDisable)
	size := float32(16)
	h := fa.NewDelegateFontHandle(preBuild(func(tk PreBuildToolkit) error {
		_, err := tk.AddDefaultFont(size, asciiRanges)
		return err
	}))
	defer h.Close()

	var sizes []float32
	remove := h.OnFontChanged(func(_ FontHandle, lf *LockedFont) {
		sizes = append(sizes, lf.Font().FontSize)
	})

	mustBuild(t, fa)
	size = 24
	mustBuild(t, fa)
	remove()
	mustBuild(t, fa)

	if len(sizes) != 2 || sizes[0] != 16 || sizes[1] != 24 {
		t.Errorf("OnFontChanged sizes = %v, want [16 24]", sizes)
	}
}

func TestHandleLockWaitsForBuild(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	fa := newTestAtlas(t, f, RebuildModeDisable)
	h := fa.NewDelegateFontHandle(defaultFontDelegate(16))
	defer h.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	got := make(chan error, 1)
	go func() {
		lf, err := h.Lock(ctx)
		if err == nil {
			lf.Release()
		}
		got <- err
	}()

	mustBuild(t, fa)
	if err := <-got; err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
}

func TestHandleWaitReturnsLoadErr(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	fa := newTestAtlas(t, f, RebuildModeDisable)
	h := fa.NewDelegateFontHandle(func(Toolkit) error { return nil })
	defer h.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	got := make(chan error, 1)
	go func() { got <- h.Wait(ctx) }()

	mustBuild(t, fa)
	if err := <-got; !errors.Is(err, ErrDelegateNoFont) {
		t.Errorf("Wait() error = %v, want ErrDelegateNoFont", err)
	}
}

func TestHandleClose(t *testing.T) {
	f, _ := newTestFactory(t, nil)
	fa := newTestAtlas(t, f, RebuildModeDisable)
	h := fa.NewDelegateFontHandle(defaultFontDelegate(16))
	mustBuild(t, fa)

	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := h.TryLock(); !errors.Is(err, ErrHandleDisposed) {
		t.Errorf("TryLock() error = %v, want ErrHandleDisposed", err)
	}
	if err := h.Wait(context.Background()); !errors.Is(err, ErrHandleDisposed) {
		t.Errorf("Wait() error = %v, want ErrHandleDisposed", err)
	}
	if h.Available() {
		t.Error("closed handle is available")
	}

	calls := 0
	other := fa.NewDelegateFontHandle(preBuild(func(tk PreBuildToolkit) error {
		calls++
		_, err := tk.AddDefaultFont(16, asciiRanges)
		return err
	}))
	defer other.Close()
	mustBuild(t, fa)
	if calls != 1 {
		t.Errorf("callback ran %d times, want 1", calls)
	}
	if got := len(mustLock(t, other).DataRoot().Atlas().Fonts()); got != 1 {
		t.Errorf("atlas has %d fonts, want 1: the closed handle must not be built", got)
	}
}
