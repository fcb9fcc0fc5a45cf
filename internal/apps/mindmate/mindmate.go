// Package mindmate is the device companion application, a read-only
// status panel: firmware version, wifi, battery.
package mindmate

import (
	"context"
	"sync/atomic"

	"github.com/juju/errors"

	"github.com/mindspring/zhihui/hardware/display"
	"github.com/mindspring/zhihui/internal/types"
	"github.com/mindspring/zhihui/internal/ui"
	"github.com/mindspring/zhihui/log2"
)

const AppID types.AppID = "mindmate"

// Info supplies the panel lines. Nil fields leave the line static.
type Info struct {
	Version func() string
	Wifi    func() string
	Battery func() string
}

type App struct {
	Log     *log2.Log
	screens *ui.Screens
	info    Info
	running uint32
}

var _ types.Apper = new(App)

func New(screens *ui.Screens, info Info, log *log2.Log) *App {
	a := &App{Log: log, screens: screens, info: info}
	screens.Register(ui.AppScreen(AppID), a.build, a.refresh)
	return a
}

func (a *App) build(ctx context.Context, g *display.Guard, f *display.Frame) error {
	f.Label("title", "MindMate", 0xffffff)
	f.Label("version", "", 0x9e9e9e)
	f.Label("wifi", "", 0x9e9e9e)
	f.Label("battery", "", 0x9e9e9e)
	return nil
}

func (a *App) refresh(ctx context.Context, f *display.Frame) {
	if a.info.Version != nil {
		f.Get("version").SetText(a.info.Version())
	}
	if a.info.Wifi != nil {
		f.Get("wifi").SetText(a.info.Wifi())
	}
	if a.info.Battery != nil {
		f.Get("battery").SetText(a.info.Battery())
	}
}

func (a *App) Show(ctx context.Context) error {
	if err := a.screens.Show(ctx, ui.AppScreen(AppID)); err != nil {
		return errors.Annotatef(err, "app=%s", AppID)
	}
	atomic.StoreUint32(&a.running, 1)
	return nil
}

func (a *App) Hide(ctx context.Context) {
	atomic.StoreUint32(&a.running, 0)
	a.screens.Hide(ctx, ui.AppScreen(AppID))
}

func (a *App) Update(ctx context.Context) error { return nil }

func (a *App) IsRunning() bool { return atomic.LoadUint32(&a.running) == 1 }
