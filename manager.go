package fontatlas

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/fontatlas/fontcore"
)

// HandleManager owns the live handles of one font kind. It has exactly two
// implementations: delegate fonts and prebaked game fonts.
type HandleManager interface {
	// Name identifies the manager in logs.
	Name() string

	// Substance returns the installed substance, or nil before the first
	// build.
	Substance() Substance

	// NewSubstance snapshots the live handles for a build producing root.
	NewSubstance(root *DataRoot) Substance

	// FreeFontHandle detaches h from future builds.
	FreeFontHandle(h FontHandle)

	// Close closes the installed substance. Live handles report
	// ErrAtlasDisposed afterwards.
	Close() error

	base() *managerBase
}

// Substance realizes one manager's handles against one built atlas. It
// holds its DataRoot without taking a reference. Lookups are read-only once
// the substance is installed.
type Substance interface {
	Manager() HandleManager
	DataRoot() *DataRoot

	// Font returns the built font of h, or nil.
	Font(h FontHandle) *fontcore.Font

	// LoadErr returns the error that kept h from being built.
	LoadErr(h FontHandle) error

	// RelevantHandles lists the handles snapshotted for the build.
	RelevantHandles() []FontHandle

	OnPreBuild(tk PreBuildToolkit)
	OnPreBuildCleanup(tk PreBuildToolkit)
	OnPostBuild(tk PostBuildToolkit)
	OnPostPromotion(tk PostPromotionToolkit)

	// Close is idempotent.
	Close() error
}

type substanceSlot struct{ s Substance }

// managerBase is the state shared by both managers: the installed
// substance and the rebuild recommendation hook.
type managerBase struct {
	name      string
	logger    *slog.Logger
	recommend func()

	substance atomic.Pointer[substanceSlot]
	closed    atomic.Bool

	// mu guards the handle bookkeeping of the concrete manager.
	mu sync.Mutex
}

func (m *managerBase) base() *managerBase { return m }

func (m *managerBase) Name() string { return m.name }

func (m *managerBase) Substance() Substance {
	if slot := m.substance.Load(); slot != nil {
		return slot.s
	}
	return nil
}

// install makes s the substance seen by the manager's handles.
func (m *managerBase) install(s Substance) {
	m.substance.Store(&substanceSlot{s: s})
}

func (m *managerBase) recommendRebuild() {
	if m.recommend != nil && !m.closed.Load() {
		m.recommend()
	}
}

func (m *managerBase) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	slot := m.substance.Swap(nil)
	if slot == nil {
		return nil
	}
	return slot.s.Close()
}
