package framethread

import "github.com/faiface/mainthread"

// Dispatcher runs functions on a frame thread.
type Dispatcher interface {
	// Run executes fn on the frame thread and returns after it finished.
	// Calling Run from the frame thread itself deadlocks for queue based
	// dispatchers.
	Run(fn func())

	// Post schedules fn and returns immediately.
	Post(fn func())
}

// Immediate runs every function on the calling goroutine.
type Immediate struct{}

func (Immediate) Run(fn func())  { fn() }
func (Immediate) Post(fn func()) { fn() }

// MainThread dispatches to the OS main thread. The program must be
// started through StartMainThread.
type MainThread struct{}

func (MainThread) Run(fn func())  { mainthread.Call(fn) }
func (MainThread) Post(fn func()) { mainthread.CallNonBlock(fn) }

// StartMainThread locks the main goroutine to the OS main thread and runs
// run on another goroutine, serving MainThread calls until run returns.
// It must be called from main.
func StartMainThread(run func()) {
	mainthread.Run(run)
}
