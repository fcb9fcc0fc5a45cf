// Package ui owns which full-screen frame is on the surface. All
// engine access funnels through here so the display lock is taken at
// exactly one level, never nested.
package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/juju/errors"
	atomic_clock "github.com/temoto/atomic_clock"

	"github.com/mindspring/zhihui/hardware/display"
	"github.com/mindspring/zhihui/internal/types"
	"github.com/mindspring/zhihui/log2"
)

const modName = "ui"

// DefaultUpdatePeriod bounds content refresh of the visible screen.
const DefaultUpdatePeriod = 1 * time.Second

type ScreenKind uint8

const (
	ScreenNone ScreenKind = iota
	ScreenLoading
	ScreenStandby
	ScreenLauncher
	ScreenApp
)

func (k ScreenKind) String() string {
	switch k {
	case ScreenNone:
		return "none"
	case ScreenLoading:
		return "loading"
	case ScreenStandby:
		return "standby"
	case ScreenLauncher:
		return "launcher"
	case ScreenApp:
		return "app"
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// ScreenID is a comparable screen identity. App screens are one per
// application id.
type ScreenID struct {
	Kind ScreenKind
	App  types.AppID
}

var (
	None     = ScreenID{Kind: ScreenNone}
	Loading  = ScreenID{Kind: ScreenLoading}
	Standby  = ScreenID{Kind: ScreenStandby}
	Launcher = ScreenID{Kind: ScreenLauncher}
)

func AppScreen(app types.AppID) ScreenID { return ScreenID{Kind: ScreenApp, App: app} }

func (id ScreenID) String() string {
	if id.Kind == ScreenApp {
		return "app:" + string(id.App)
	}
	return id.Kind.String()
}

// BuildFunc populates a fresh frame. It runs while the display lock is
// held; builders must not acquire it again.
type BuildFunc func(ctx context.Context, g *display.Guard, f *display.Frame) error

// UpdateFunc refreshes widget content in place. Same lock rule.
type UpdateFunc func(ctx context.Context, f *display.Frame)

type screen struct {
	build  BuildFunc
	update UpdateFunc
	frame  *display.Frame // built lazily, kept forever after success
}

type Screens struct { //nolint:maligned
	Log *log2.Log
	// UpdatePeriod throttles Update of the visible screen.
	UpdatePeriod time.Duration

	d       *display.Display
	timeout time.Duration

	mu        sync.Mutex
	reg       map[ScreenID]*screen
	visible   ScreenID
	updatedAt atomic_clock.Clock
}

func NewScreens(d *display.Display, lockTimeout time.Duration, log *log2.Log) *Screens {
	return &Screens{
		Log:          log,
		UpdatePeriod: DefaultUpdatePeriod,
		d:            d,
		timeout:      lockTimeout,
		reg:          make(map[ScreenID]*screen, 8),
	}
}

func (s *Screens) Register(id ScreenID, build BuildFunc, update UpdateFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reg[id]; ok {
		panic("code error ui duplicate screen=" + id.String())
	}
	s.reg[id] = &screen{build: build, update: update}
}

func (s *Screens) Visible() ScreenID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Show makes id the one visible screen. The frame is built on first
// show; when the engine is not up yet nothing is cached and the next
// Show retries from scratch.
func (s *Screens) Show(ctx context.Context, id ScreenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc := s.reg[id]
	if sc == nil {
		return errors.NotFoundf("%s screen=%s", modName, id)
	}
	if s.visible == id {
		return nil
	}
	if !s.d.Ready() {
		return errors.NotProvisionedf("%s screen=%s surface", modName, id)
	}

	guard, err := s.d.Acquire(s.timeout)
	if err != nil {
		return errors.Annotatef(err, "%s show screen=%s", modName, id)
	}
	defer guard.Release()

	if sc.frame == nil {
		f := display.NewFrame(id.String())
		if err = sc.build(ctx, guard, f); err != nil {
			return errors.Annotatef(err, "%s build screen=%s", modName, id)
		}
		sc.frame = f
	}
	if sc.update != nil {
		sc.update(ctx, sc.frame)
	}
	if err = guard.Load(sc.frame); err != nil {
		return errors.Trace(err)
	}
	prev := s.visible
	s.visible = id
	s.updatedAt.SetNow()
	s.Log.Debugf("%s show screen=%s prev=%s", modName, id, prev)
	return nil
}

// Hide is idempotent. It only clears visibility bookkeeping, the
// surface keeps the old frame until the next Show replaces it.
func (s *Screens) Hide(ctx context.Context, id ScreenID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visible != id {
		return
	}
	s.visible = None
	s.Log.Debugf("%s hide screen=%s", modName, id)
}

// Update refreshes the visible screen's content, at most once per
// UpdatePeriod.
func (s *Screens) Update(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.visible == None {
		return nil
	}
	if atomic_clock.Since(&s.updatedAt) < s.UpdatePeriod {
		return nil
	}
	sc := s.reg[s.visible]
	if sc == nil || sc.update == nil || sc.frame == nil {
		return nil
	}

	guard, err := s.d.Acquire(s.timeout)
	if err != nil {
		return errors.Annotatef(err, "%s update screen=%s", modName, s.visible)
	}
	defer guard.Release()

	sc.update(ctx, sc.frame)
	err = guard.Load(sc.frame)
	s.updatedAt.SetNow()
	return errors.Trace(err)
}

// Mutate runs f on the screen's frame under the display lock and
// pushes the result when that screen is visible. Used for progress
// style writes driven from outside the update cycle.
func (s *Screens) Mutate(ctx context.Context, id ScreenID, f func(*display.Frame)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc := s.reg[id]
	if sc == nil || sc.frame == nil {
		return errors.NotFoundf("%s mutate screen=%s", modName, id)
	}

	guard, err := s.d.Acquire(s.timeout)
	if err != nil {
		return errors.Annotatef(err, "%s mutate screen=%s", modName, id)
	}
	defer guard.Release()

	f(sc.frame)
	if s.visible != id {
		return nil
	}
	return errors.Trace(guard.Load(sc.frame))
}
