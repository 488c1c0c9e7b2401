package fontatlas

import (
	"errors"
	"fmt"
)

// Sentinel errors for fontatlas package.
var (
	// ErrHandleDisposed is returned by every operation on a closed handle.
	ErrHandleDisposed = errors.New("fontatlas: font handle disposed")

	// ErrAtlasNotBuilt is returned when a handle is locked before its atlas
	// installed any build.
	ErrAtlasNotBuilt = errors.New("fontatlas: atlas not built yet")

	// ErrFontNotBuilt is returned when the installed build has no font for
	// the handle, usually because the handle was created after the build
	// started or its font failed to build.
	ErrFontNotBuilt = errors.New("fontatlas: font not present in the installed build")

	// ErrDataRootDisposed is returned by AddRef and Release once the
	// reference count reached zero.
	ErrDataRootDisposed = errors.New("fontatlas: built data already released")

	// ErrAtlasDisposed is returned by operations on a closed FontAtlas.
	ErrAtlasDisposed = errors.New("fontatlas: font atlas disposed")

	// ErrDelegateNoFont is recorded for a delegate handle whose callback
	// neither set Font nor added a font.
	ErrDelegateNoFont = errors.New("fontatlas: must set Font or add at least one font")

	// ErrFontAddedTwice is recorded when a callback re-adds a font the
	// atlas already had before the callback ran.
	ErrFontAddedTwice = errors.New("fontatlas: font added to the atlas more than once")

	// ErrWrongRebuildMode is returned by build requests the atlas's
	// RebuildMode does not allow.
	ErrWrongRebuildMode = errors.New("fontatlas: build method not allowed in this rebuild mode")

	// ErrBuildInProgress is returned by BuildFontsImmediately while another
	// build runs.
	ErrBuildInProgress = errors.New("fontatlas: font rebuild already in progress")

	// ErrBuildSuperseded is the result of a build discarded because a newer
	// build was scheduled before it finished.
	ErrBuildSuperseded = errors.New("fontatlas: build superseded by a newer build")

	// ErrAtlasBuildFailed wraps packer failures. The whole build is lost.
	ErrAtlasBuildFailed = errors.New("fontatlas: atlas build failed")

	// ErrSystemFontNotFound is returned by AddFontFromSystem when no font
	// file matches the name.
	ErrSystemFontNotFound = errors.New("fontatlas: system font not found")

	// ErrNoGameFontAssets is recorded for game font styles when the factory
	// has no asset source.
	ErrNoGameFontAssets = errors.New("fontatlas: no game font asset source configured")

	// ErrCallbackPanic wraps a panic recovered from a user callback.
	ErrCallbackPanic = errors.New("fontatlas: callback panicked")

	// ErrWrongBuildStep is returned by toolkit operations called outside
	// the step they belong to.
	ErrWrongBuildStep = errors.New("fontatlas: operation not allowed in this build step")
)

// ConfigError represents a factory configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "fontatlas: invalid config." + e.Field + ": " + e.Reason
}

// HandleBuildError is a per-handle build failure. It is stored on the
// substance of the failed build and returned by FontHandle.LoadErr.
type HandleBuildError struct {
	Handle string
	Step   BuildStep
	Err    error
}

func (e *HandleBuildError) Error() string {
	return fmt.Sprintf("fontatlas: %s: %s: %v", e.Handle, e.Step, e.Err)
}

func (e *HandleBuildError) Unwrap() error { return e.Err }

// invokeSafely runs fn and converts a panic into an error wrapping
// ErrCallbackPanic.
func invokeSafely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCallbackPanic, r)
		}
	}()
	return fn()
}
