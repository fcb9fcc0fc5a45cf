// Package display mediates exclusive access to the shared rendering
// surface. The compositing engine owns the actual render pump and is the
// only context advancing animation/redraw state; everything else mutates
// the surface strictly between Acquire and Release.
package display

import (
	"image"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/mindspring/zhihui/log2"
)

const modName = "display"

// Engine is the external compositor. Load hands over the frame to show;
// the engine renders it from its own task until the next Load.
type Engine interface {
	Size() image.Point
	Ready() bool
	Load(*Frame) error
}

type Display struct {
	Log    *log2.Log
	engine Engine
	lockch chan struct{}
	active *Frame // access only while holding the lock
}

func New(engine Engine, log *log2.Log) *Display {
	return &Display{
		Log:    log,
		engine: engine,
		lockch: make(chan struct{}, 1),
	}
}

func (d *Display) Ready() bool { return d.engine != nil && d.engine.Ready() }

func (d *Display) Size() image.Point {
	if d.engine == nil {
		return image.Point{}
	}
	return d.engine.Size()
}

// Acquire grants exclusive surface access. timeout<=0 blocks until the
// holder releases; a finite timeout that elapses fails with a Timeout
// error and the caller must treat the protected mutation as not done.
// Not reentrant: a second Acquire from a holding call chain deadlocks,
// so locking happens only at the outermost operation.
func (d *Display) Acquire(timeout time.Duration) (*Guard, error) {
	if timeout <= 0 {
		d.lockch <- struct{}{}
		return &Guard{d: d}, nil
	}
	tmr := time.NewTimer(timeout)
	defer tmr.Stop()
	select {
	case d.lockch <- struct{}{}:
		return &Guard{d: d}, nil
	case <-tmr.C:
		return nil, errors.Timeoutf("%s lock timeout=%s", modName, timeout)
	}
}

// Guard represents a held acquisition. Release is idempotent and must
// run on every exit path.
type Guard struct {
	d        *Display
	released uint32
}

func (g *Guard) Release() {
	if atomic.CompareAndSwapUint32(&g.released, 0, 1) {
		<-g.d.lockch
	}
}

// Load activates frame on the surface.
func (g *Guard) Load(f *Frame) error {
	if g.d.engine == nil || !g.d.engine.Ready() {
		return errors.NotProvisionedf("%s engine", modName)
	}
	if err := g.d.engine.Load(f); err != nil {
		return errors.Annotatef(err, "%s load frame=%s", modName, f.Name)
	}
	g.d.active = f
	return nil
}

// Frame reads the frame currently on the surface.
func (g *Guard) Frame() *Frame { return g.d.active }

// IsUnavailable reports the surface-not-ready construction abort.
func IsUnavailable(err error) bool { return errors.IsNotProvisioned(err) }
