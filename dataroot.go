package fontatlas

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/fontatlas/fontcore"
	"github.com/gogpu/fontatlas/gpuupload"
	"github.com/gogpu/fontatlas/internal/dispose"
)

// teardownPollInterval is how often a deferred teardown checks whether the
// build using the data finished.
var teardownPollInterval = 100 * time.Millisecond

// DataRoot keeps one built atlas alive: the atlas primitive, its uploaded
// textures and the substances realizing the handles against it. The
// reference count starts at 1, owned by the FontAtlas slot holding it.
// Glyph data reached through a DataRoot is valid while a reference is held.
type DataRoot struct {
	name   string
	scale  float32
	logger *slog.Logger

	refs            atomic.Int32
	buildInProgress atomic.Bool

	atlas fontcore.Atlas

	mu         sync.Mutex
	substances []Substance
	textures   []gpuupload.Texture

	// garbage is closed last on teardown.
	garbage *dispose.Scope

	torndown chan struct{}
}

func newDataRoot(name string, scale float32, atlas fontcore.Atlas, logger *slog.Logger) *DataRoot {
	r := &DataRoot{
		name:     name,
		scale:    scale,
		logger:   logger,
		atlas:    atlas,
		garbage:  dispose.New(),
		torndown: make(chan struct{}),
	}
	r.refs.Store(1)
	r.buildInProgress.Store(true)
	return r
}

// Name is the name of the owning atlas.
func (r *DataRoot) Name() string { return r.name }

// Scale is the global scale the atlas was built at.
func (r *DataRoot) Scale() float32 { return r.scale }

// Atlas returns the built atlas primitive.
func (r *DataRoot) Atlas() fontcore.Atlas { return r.atlas }

// RefCount returns the current reference count.
func (r *DataRoot) RefCount() int32 { return r.refs.Load() }

// IsBuildInProgress reports whether the build producing r still runs.
func (r *DataRoot) IsBuildInProgress() bool { return r.buildInProgress.Load() }

// Done is closed once teardown finished.
func (r *DataRoot) Done() <-chan struct{} { return r.torndown }

// Substances returns the substances realized against r.
func (r *DataRoot) Substances() []Substance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.substances)
}

// Textures returns the textures uploaded for r.
func (r *DataRoot) Textures() []gpuupload.Texture {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.textures)
}

// AddRef takes a reference. It fails with ErrDataRootDisposed once the
// count reached zero.
func (r *DataRoot) AddRef() (int32, error) {
	for {
		n := r.refs.Load()
		if n <= 0 {
			return 0, ErrDataRootDisposed
		}
		if r.refs.CompareAndSwap(n, n+1) {
			return n + 1, nil
		}
	}
}

// Release drops a reference. Dropping the last one tears the data down;
// while the build producing it still runs, teardown is deferred until the
// build finished.
func (r *DataRoot) Release() (int32, error) {
	for {
		n := r.refs.Load()
		if n <= 0 {
			return 0, ErrDataRootDisposed
		}
		if !r.refs.CompareAndSwap(n, n-1) {
			continue
		}
		if n == 1 {
			r.finalRelease()
		}
		return n - 1, nil
	}
}

func (r *DataRoot) finalRelease() {
	if !r.IsBuildInProgress() {
		r.teardown()
		return
	}
	r.logger.Error("fontatlas: releasing data while its build is in progress, deferring teardown",
		slog.String("atlas", r.name))
	go func() {
		ticker := time.NewTicker(teardownPollInterval)
		defer ticker.Stop()
		for r.IsBuildInProgress() {
			<-ticker.C
		}
		r.teardown()
	}()
}

// teardown closes the substances, the atlas, the textures and the garbage
// scope, in that order.
func (r *DataRoot) teardown() {
	r.mu.Lock()
	substances := r.substances
	textures := r.textures
	r.substances = nil
	r.textures = nil
	r.mu.Unlock()

	var errs []error
	for _, s := range substances {
		errs = append(errs, s.Close())
	}
	errs = append(errs, r.atlas.Close())
	for _, t := range textures {
		errs = append(errs, t.Close())
	}
	errs = append(errs, r.garbage.Close())

	if err := errors.Join(errs...); err != nil {
		r.logger.Error("fontatlas: disposing built data",
			slog.String("atlas", r.name),
			slog.Any("error", err))
	}
	close(r.torndown)
}

func (r *DataRoot) addSubstance(s Substance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.substances = append(r.substances, s)
}

// addTexture takes ownership of t.
func (r *DataRoot) addTexture(t gpuupload.Texture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textures = append(r.textures, t)
}

// storeTexture binds t to an atlas page and returns the page index,
// reusing the page already bound to t's ID.
func (r *DataRoot) storeTexture(t gpuupload.Texture) int {
	for i, page := range r.atlas.Textures() {
		if page.ID == t.ID() {
			return i
		}
	}
	r.addTexture(t)
	w, h := t.Size()
	return r.atlas.AddTexture(&fontcore.Texture{ID: t.ID(), Width: w, Height: h})
}
