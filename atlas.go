package fontatlas

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/fontatlas/gamefont"
)

// RebuildMode selects what a rebuild recommendation does.
type RebuildMode int

const (
	// RebuildModeDisable ignores recommendations; builds are requested
	// explicitly.
	RebuildModeDisable RebuildMode = iota

	// RebuildModeOnNewFrame queues a build for the next NewFrame.
	RebuildModeOnNewFrame

	// RebuildModeAsync starts a background build.
	RebuildModeAsync
)

func (m RebuildMode) String() string {
	switch m {
	case RebuildModeDisable:
		return "Disable"
	case RebuildModeOnNewFrame:
		return "OnNewFrame"
	case RebuildModeAsync:
		return "Async"
	default:
		return "Unknown"
	}
}

// FontAtlas owns the handles of one atlas and the built data currently
// installed for them. It is safe for concurrent use.
type FontAtlas struct {
	factory      *Factory
	name         string
	mode         RebuildMode
	globalScaled bool

	delegates *delegateManager
	games     *gameFontManager
	managers  []HandleManager

	// mu guards root, task and the suppression state. Installation of a
	// build happens under mu.
	mu         sync.Mutex
	root       *DataRoot
	task       *BuildTask
	suppress   int
	suppressed bool
	closed     atomic.Bool

	buildIndex  atomic.Uint64
	inProgress  atomic.Int32
	buildQueued atomic.Bool

	recommendListeners listenerList[func()]
	stepListeners      listenerList[func(Toolkit)]

	frameMu    sync.Mutex
	frameLocks []*LockedFont
}

func newFontAtlas(f *Factory, name string, mode RebuildMode, globalScaled bool) *FontAtlas {
	fa := &FontAtlas{
		factory:      f,
		name:         name,
		mode:         mode,
		globalScaled: globalScaled,
	}
	fa.games = newGameFontManager(fa)
	fa.delegates = newDelegateManager(fa)
	fa.managers = []HandleManager{fa.games, fa.delegates}
	return fa
}

func (fa *FontAtlas) logger() *slog.Logger { return fa.factory.logger() }

// Name returns the atlas name.
func (fa *FontAtlas) Name() string { return fa.name }

// Mode returns the rebuild mode.
func (fa *FontAtlas) Mode() RebuildMode { return fa.mode }

// Factory returns the factory that created the atlas.
func (fa *FontAtlas) Factory() *Factory { return fa.factory }

// BuildIndex returns the index of the most recently requested build.
func (fa *FontAtlas) BuildIndex() uint64 { return fa.buildIndex.Load() }

// IsBuildInProgress reports whether a build is running or queued behind
// another one.
func (fa *FontAtlas) IsBuildInProgress() bool { return fa.inProgress.Load() > 0 }

// NewDelegateFontHandle creates a handle whose font is produced by fn.
func (fa *FontAtlas) NewDelegateFontHandle(fn BuildStepFunc) FontHandle {
	return fa.delegates.newFontHandle(fn)
}

// NewGameFontHandle creates a handle to a game font style.
func (fa *FontAtlas) NewGameFontHandle(style gamefont.Style) (FontHandle, error) {
	if fa.closed.Load() {
		return nil, ErrAtlasDisposed
	}
	return fa.games.newFontHandle(style)
}

// LockedData returns the installed build with a reference taken. The
// caller releases it.
func (fa *FontAtlas) LockedData() (*DataRoot, error) {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	if fa.closed.Load() {
		return nil, ErrAtlasDisposed
	}
	if fa.root == nil {
		return nil, ErrAtlasNotBuilt
	}
	if _, err := fa.root.AddRef(); err != nil {
		return nil, err
	}
	return fa.root, nil
}

// OnRebuildRecommend registers fn to run whenever a handle needs a build.
func (fa *FontAtlas) OnRebuildRecommend(fn func()) (remove func()) {
	return fa.recommendListeners.add(fn)
}

// OnBuildStepChange registers fn to run when a build enters the pre-build,
// post-build and post-promotion steps.
func (fa *FontAtlas) OnBuildStepChange(fn func(tk Toolkit)) (remove func()) {
	return fa.stepListeners.add(fn)
}

// SuppressAutoRebuild holds back rebuild recommendations until every
// returned restore func was called. A recommendation made meanwhile is
// replayed once.
func (fa *FontAtlas) SuppressAutoRebuild() (restore func()) {
	fa.mu.Lock()
	fa.suppress++
	fa.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			fa.mu.Lock()
			fa.suppress--
			replay := fa.suppress == 0 && fa.suppressed
			if replay {
				fa.suppressed = false
			}
			fa.mu.Unlock()
			if replay {
				fa.onRebuildRecommend()
			}
		})
	}
}

func (fa *FontAtlas) onRebuildRecommend() {
	fa.mu.Lock()
	if fa.suppress > 0 {
		fa.suppressed = true
		fa.mu.Unlock()
		return
	}
	fa.mu.Unlock()

	if d := fa.factory.cfg.Dispatcher; d != nil {
		d.Post(fa.recommendRebuild)
		return
	}
	fa.recommendRebuild()
}

func (fa *FontAtlas) recommendRebuild() {
	if fa.closed.Load() {
		return
	}
	for _, fn := range fa.recommendListeners.snapshot() {
		if err := invokeSafely(func() error { fn(); return nil }); err != nil {
			fa.logger().Error("fontatlas: rebuild recommend listener failed",
				slog.String("atlas", fa.name),
				slog.Any("error", err))
		}
	}

	switch fa.mode {
	case RebuildModeAsync:
		fa.BuildFontsAsync()
	case RebuildModeOnNewFrame:
		_ = fa.BuildFontsOnNextFrame()
	}
}

// BuildFontsOnNextFrame queues a build for the next NewFrame. It does
// nothing while a build runs.
func (fa *FontAtlas) BuildFontsOnNextFrame() error {
	if fa.mode == RebuildModeAsync {
		return ErrWrongRebuildMode
	}
	if fa.closed.Load() {
		return ErrAtlasDisposed
	}
	if fa.IsBuildInProgress() {
		return nil
	}
	fa.buildQueued.Store(true)
	return nil
}

// NewFrame releases the fonts locked by LockUntilPostFrame during the last
// frame and runs a queued build.
func (fa *FontAtlas) NewFrame() error {
	fa.releaseFrameLocks()
	if fa.mode == RebuildModeAsync || !fa.buildQueued.Swap(false) {
		return nil
	}
	return fa.BuildFontsImmediately()
}

// BuildFontsImmediately builds and installs on the calling goroutine.
func (fa *FontAtlas) BuildFontsImmediately() error {
	if fa.mode == RebuildModeAsync {
		return ErrWrongRebuildMode
	}

	fa.mu.Lock()
	if fa.closed.Load() {
		fa.mu.Unlock()
		return ErrAtlasDisposed
	}
	if fa.IsBuildInProgress() {
		fa.mu.Unlock()
		return ErrBuildInProgress
	}
	index := fa.buildIndex.Add(1)
	task := newBuildTask()
	fa.task = task
	fa.inProgress.Add(1)
	fa.mu.Unlock()

	fa.buildQueued.Store(false)
	err := fa.buildImmediate(index)
	fa.inProgress.Add(-1)
	task.finish(err)
	return err
}

func (fa *FontAtlas) buildImmediate(index uint64) error {
	root, err := fa.rebuildFontsPrivate(false)
	if err != nil {
		return err
	}
	return fa.promoteOrDiscard(root, index)
}

// BuildFontsAsync starts a build on a new goroutine, after the previously
// started one, immediate or async, finished. A build overtaken by a newer request is discarded
// with ErrBuildSuperseded.
func (fa *FontAtlas) BuildFontsAsync() *BuildTask {
	task := newBuildTask()
	if fa.mode == RebuildModeOnNewFrame {
		task.finish(ErrWrongRebuildMode)
		return task
	}

	fa.mu.Lock()
	if fa.closed.Load() {
		fa.mu.Unlock()
		task.finish(ErrAtlasDisposed)
		return task
	}
	index := fa.buildIndex.Add(1)
	prev := fa.task
	fa.task = task
	fa.inProgress.Add(1)
	fa.mu.Unlock()

	go func() {
		if prev != nil {
			<-prev.Done()
		}
		err := fa.buildAsync(index)
		fa.inProgress.Add(-1)
		task.finish(err)
	}()
	return task
}

func (fa *FontAtlas) buildAsync(index uint64) error {
	if fa.closed.Load() {
		return ErrAtlasDisposed
	}
	if fa.buildIndex.Load() != index {
		return ErrBuildSuperseded
	}
	root, err := fa.rebuildFontsPrivate(true)
	if err != nil {
		return err
	}

	d := fa.factory.cfg.Dispatcher
	if d == nil {
		return fa.promoteOrDiscard(root, index)
	}
	d.Run(func() { err = fa.promoteOrDiscard(root, index) })
	return err
}

func (fa *FontAtlas) promoteOrDiscard(root *DataRoot, index uint64) error {
	if fa.promote(root, index) {
		return nil
	}
	if fa.closed.Load() {
		return ErrAtlasDisposed
	}
	return ErrBuildSuperseded
}

// addFrameLock keeps lf until the next NewFrame.
func (fa *FontAtlas) addFrameLock(lf *LockedFont) bool {
	fa.frameMu.Lock()
	defer fa.frameMu.Unlock()
	if fa.closed.Load() {
		return false
	}
	fa.frameLocks = append(fa.frameLocks, lf)
	return true
}

func (fa *FontAtlas) releaseFrameLocks() {
	fa.frameMu.Lock()
	locks := fa.frameLocks
	fa.frameLocks = nil
	fa.frameMu.Unlock()
	for _, lf := range locks {
		lf.Release()
	}
}

// Close waits for running builds, then releases the installed build and
// closes the handle managers. Handles report ErrAtlasDisposed afterwards.
// With a queue based Dispatcher, Close must not run on the frame thread
// while an async build waits to be installed.
func (fa *FontAtlas) Close() error {
	fa.mu.Lock()
	already := fa.closed.Swap(true)
	fa.mu.Unlock()
	if already {
		return nil
	}

	for fa.IsBuildInProgress() {
		time.Sleep(teardownPollInterval)
	}
	fa.releaseFrameLocks()

	fa.mu.Lock()
	root := fa.root
	fa.root = nil
	fa.mu.Unlock()

	var errs []error
	for _, m := range fa.managers {
		errs = append(errs, m.Close())
	}
	if root != nil {
		_, err := root.Release()
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// BuildTask is the result of BuildFontsAsync.
type BuildTask struct {
	done chan struct{}
	err  error
}

func newBuildTask() *BuildTask {
	return &BuildTask{done: make(chan struct{})}
}

func (t *BuildTask) finish(err error) {
	t.err = err
	close(t.done)
}

// Done is closed when the build finished.
func (t *BuildTask) Done() <-chan struct{} { return t.done }

// Err returns the result of a finished build, nil otherwise.
func (t *BuildTask) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the build finished and returns its result.
func (t *BuildTask) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// listenerList is a registration-ordered list of callbacks.
type listenerList[F any] struct {
	mu     sync.Mutex
	nextID uint64
	items  []listener[F]
}

type listener[F any] struct {
	id uint64
	fn F
}

func (l *listenerList[F]) add(fn F) (remove func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	l.items = append(l.items, listener[F]{id: id, fn: fn})
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, it := range l.items {
			if it.id == id {
				l.items = append(l.items[:i:i], l.items[i+1:]...)
				return
			}
		}
	}
}

func (l *listenerList[F]) snapshot() []F {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]F, len(l.items))
	for i, it := range l.items {
		out[i] = it.fn
	}
	return out
}
