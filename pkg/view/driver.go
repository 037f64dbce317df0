package view

import (
	"log"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// defaultFrameInterval paces ticks at roughly 60 frames per second.
const defaultFrameInterval = 16 * time.Millisecond

// debugLog is an optional hook for verbose driver logging.
var debugLog func(format string, args ...interface{})

// SetDebugLog installs a logging function for driver diagnostics.
// Pass nil to disable.
func SetDebugLog(fn func(format string, args ...interface{})) {
	debugLog = fn
}

// driver owns the tick goroutine. While the simulation is hot it
// steps at the frame interval; once settled it parks on the wake
// channel until a disturbance (new data, resize, drag, reheat).
type driver struct {
	view     *View
	interval time.Duration
	wake     chan struct{}
	done     chan struct{}
	running  atomic.Bool
}

func newDriver(v *View, interval time.Duration) *driver {
	return &driver{
		view:     v,
		interval: interval,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// start launches the loop goroutine once.
func (d *driver) start() {
	if d.running.CompareAndSwap(false, true) {
		go d.loop()
	}
}

// close stops the loop. The driver cannot be restarted.
func (d *driver) close() {
	if d.running.CompareAndSwap(true, false) {
		close(d.done)
	}
}

// wakeUp nudges the loop without blocking. A wake that arrives while
// one is already pending coalesces with it.
func (d *driver) wakeUp() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *driver) loop() {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if !d.view.hot() {
			if debugLog != nil {
				debugLog("[Driver] settled, parking")
			}
			select {
			case <-d.done:
				return
			case <-d.wake:
				if debugLog != nil {
					debugLog("[Driver] woken")
				}
			}
			continue
		}

		select {
		case <-d.done:
			return
		case <-d.wake:
			// Coalesce; the next pass ticks immediately.
		case <-ticker.C:
			d.step()
		}
	}
}

// step advances one tick and publishes the frame. A panic in a force
// or in the frame callback is logged and the loop keeps running.
func (d *driver) step() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Driver] panic during tick: %v\n%s", r, debug.Stack())
		}
	}()

	frame, fn, ok := d.view.stepFrame()
	if !ok {
		return
	}
	if fn != nil {
		fn(frame)
	}
}
