// Package framethread runs functions on the thread that owns the frame.
//
// Atlas promotion and font-changed notifications must not race the code
// that draws with the fonts. A Dispatcher moves that work onto the frame
// thread: Loop queues it until the application pumps the queue between
// frames, MainThread runs it on the OS main thread through
// github.com/faiface/mainthread, and Immediate runs it in place.
package framethread
