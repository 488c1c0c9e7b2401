package fontatlas

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/fontatlas/gpuupload"
	"github.com/gogpu/fontatlas/softatlas"
)

func newTestDataRoot(t *testing.T) *DataRoot {
	t.Helper()
	atlas, err := softatlas.New(softatlas.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return newDataRoot(t.Name(), 1, atlas, Logger())
}

func waitDone(t *testing.T, r *DataRoot) {
	t.Helper()
	select {
	case <-r.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("data root was not torn down")
	}
}

func TestDataRootRefCount(t *testing.T) {
	r := newTestDataRoot(t)
	r.buildInProgress.Store(false)

	if n, err := r.AddRef(); n != 2 || err != nil {
		t.Fatalf("AddRef() = %d, %v, want 2", n, err)
	}
	if n, err := r.Release(); n != 1 || err != nil {
		t.Fatalf("Release() = %d, %v, want 1", n, err)
	}

	closed := false
	if err := r.garbage.AddFunc(func() error { closed = true; return nil }); err != nil {
		t.Fatal(err)
	}

	if n, err := r.Release(); n != 0 || err != nil {
		t.Fatalf("final Release() = %d, %v, want 0", n, err)
	}
	waitDone(t, r)
	if !closed {
		t.Error("garbage was not disposed")
	}

	if _, err := r.AddRef(); !errors.Is(err, ErrDataRootDisposed) {
		t.Errorf("AddRef() after teardown error = %v, want ErrDataRootDisposed", err)
	}
	if _, err := r.Release(); !errors.Is(err, ErrDataRootDisposed) {
		t.Errorf("Release() after teardown error = %v, want ErrDataRootDisposed", err)
	}
}

func TestDataRootDefersTeardownDuringBuild(t *testing.T) {
	r := newTestDataRoot(t)

	if _, err := r.Release(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-r.Done():
		t.Fatal("torn down while the build was in progress")
	case <-time.After(10 * time.Millisecond):
	}

	r.buildInProgress.Store(false)
	waitDone(t, r)
}

func TestDataRootStoreTexture(t *testing.T) {
	r := newTestDataRoot(t)
	r.buildInProgress.Store(false)
	up := gpuupload.NewMemory(gpuupload.FormatB8G8R8A8)
	tex, err := up.Upload(make([]byte, 4*4*4), 16, 4, 4, gpuupload.FormatB8G8R8A8)
	if err != nil {
		t.Fatal(err)
	}

	// New atlases reserve page 0 for the built page.
	pages := len(r.Atlas().Textures())
	first := r.storeTexture(tex)
	if first != pages {
		t.Errorf("storeTexture() = %d, want the next page %d", first, pages)
	}
	if got := r.Atlas().Textures()[first].ID; got != tex.ID() {
		t.Errorf("page %d ID = %d, want %d", first, got, tex.ID())
	}
	if again := r.storeTexture(tex); again != first {
		t.Errorf("storeTexture() of the same texture = %d, want %d", again, first)
	}
	if n := len(r.Textures()); n != 1 {
		t.Errorf("Textures() = %d, want 1", n)
	}

	if _, err := r.Release(); err != nil {
		t.Fatal(err)
	}
	waitDone(t, r)
	if !up.Textures()[0].Closed() {
		t.Error("texture owned by the data root was not closed")
	}
}

func TestRebuildReleasesOldData(t *testing.T) {
	f, up := newTestFactory(t, nil)
	fa := newTestAtlas(t, f, RebuildModeDisable)
	h := fa.NewDelegateFontHandle(defaultFontDelegate(16))
	defer h.Close()
	mustBuild(t, fa)

	lf, err := h.TryLock()
	if err != nil {
		t.Fatal(err)
	}
	old := lf.DataRoot()
	if n := old.RefCount(); n != 2 {
		t.Fatalf("RefCount() = %d, want 2", n)
	}

	mustBuild(t, fa)
	if n := old.RefCount(); n != 1 {
		t.Fatalf("RefCount() after rebuild = %d, want 1", n)
	}
	if old.IsBuildInProgress() {
		t.Error("installed data still reports its build in progress")
	}

	ref, err := lf.NewRef()
	if err != nil {
		t.Fatalf("NewRef() error = %v", err)
	}
	ref.Release()
	lf.Release()
	lf.Release()

	waitDone(t, old)
	if !up.Textures()[0].Closed() {
		t.Error("texture of the replaced build was not closed")
	}
	if up.Live() != 1 {
		t.Errorf("Live() = %d, want only the current build's texture", up.Live())
	}
	if _, err := lf.NewRef(); !errors.Is(err, ErrDataRootDisposed) {
		t.Errorf("NewRef() after Release error = %v, want ErrDataRootDisposed", err)
	}
}
