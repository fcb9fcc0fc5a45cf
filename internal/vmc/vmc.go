// Package vmc ties the pieces together: the boot task brings hardware
// up behind the loading screen, the service task runs the cooperative
// loop driving everything afterwards.
package vmc

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/juju/errors"

	"github.com/mindspring/zhihui/hardware/display"
	"github.com/mindspring/zhihui/internal/apps/mindmate"
	"github.com/mindspring/zhihui/internal/apps/respond"
	"github.com/mindspring/zhihui/internal/net"
	"github.com/mindspring/zhihui/internal/state"
	"github.com/mindspring/zhihui/internal/types"
	"github.com/mindspring/zhihui/internal/ui"
)

// teleMessager is implemented by apps that consume backend messages.
type teleMessager interface {
	OnMessage(context.Context, []byte) bool
}

type System struct {
	g        *state.Global
	d        *display.Display
	screens  *ui.Screens
	registry *ui.Registry

	ready     chan struct{} // closed exactly once by the boot task
	readyFlag uint32

	// launcher clicks run under the display lock; the closures hand the
	// actual launch over to the service loop through here
	uiq chan func(context.Context)
}

func New(ctx context.Context) (*System, error) {
	g := state.GetGlobal(ctx)
	d, err := g.Display()
	if err != nil {
		return nil, errors.Annotate(err, "vmc init")
	}
	sys := &System{
		g:        g,
		d:        d,
		screens:  ui.NewScreens(d, g.LockTimeout(), g.Log),
		registry: ui.NewRegistry(g.Log),
		ready:    make(chan struct{}),
		uiq:      make(chan func(context.Context), 8),
	}

	ui.RegisterLoading(sys.screens)
	ui.RegisterStandby(sys.screens, ui.StandbyData{
		Time:            sys.timeString,
		Date:            sys.dateString,
		BatteryLevel:    sys.batteryLevel,
		BatteryCharging: sys.batteryCharging,
		WifiConnected:   g.Wifi.IsConnected,
		Status:          sys.statusLine,
		APPayload:       sys.apPayload,
	})

	respondApp := respond.New(sys.screens, g.Log)
	mindmateApp := mindmate.New(sys.screens, mindmate.Info{
		Version: func() string { return "版本 " + g.BuildVersion },
		Wifi:    func() string { return "WiFi " + g.Wifi.Mode().String() },
		Battery: func() string { return fmt.Sprintf("电量 %d%%", sys.batteryLevel()) },
	}, g.Log)
	sys.registry.Register(respond.AppID, respondApp)
	sys.registry.Register(mindmate.AppID, mindmateApp)

	ui.RegisterLauncher(sys.screens, []ui.LauncherEntry{
		{ID: respond.AppID, Label: "智回", Icon: display.IconMicrophone,
			OnSelect: sys.selectFunc(respond.AppID)},
		{ID: mindmate.AppID, Label: "MindMate", Icon: display.IconSettings,
			OnSelect: sys.selectFunc(mindmate.AppID)},
	})

	g.SetMessageHandler(sys.onTeleMessage)
	return sys, nil
}

// Ready reports whether boot finished. Cheap, callable from any task.
func (sys *System) Ready() bool { return atomic.LoadUint32(&sys.readyFlag) == 1 }

func (sys *System) WaitReady() <-chan struct{} { return sys.ready }

// UI exposes the screen state machine, mostly for tests.
func (sys *System) UI() *ui.Screens { return sys.screens }

func (sys *System) Registry() *ui.Registry { return sys.registry }

func (sys *System) markReady() {
	if atomic.CompareAndSwapUint32(&sys.readyFlag, 0, 1) {
		close(sys.ready)
	}
}

func (sys *System) selectFunc(id types.AppID) func() {
	return func() {
		f := func(ctx context.Context) { sys.launch(ctx, id) }
		select {
		case sys.uiq <- f:
		default:
			sys.g.Log.Errorf("vmc ui queue full, dropped launch app=%s", id)
		}
	}
}

func (sys *System) launch(ctx context.Context, id types.AppID) {
	// the launcher must be hidden before the app draws its screen
	sys.screens.Hide(ctx, ui.Launcher)
	if err := sys.registry.Dispatch(ctx, id); err != nil {
		sys.g.Error(err)
	}
}

func (sys *System) onTeleMessage(ctx context.Context, payload []byte) bool {
	handled := false
	sys.registry.Each(func(id types.AppID, app types.Apper) {
		if handled {
			return
		}
		if m, ok := app.(teleMessager); ok {
			handled = m.OnMessage(ctx, payload)
		}
	})
	return handled
}

func (sys *System) timeString() string {
	if c, _ := sys.g.RTC(); c != nil {
		return c.TimeString()
	}
	return "--:--:--"
}

func (sys *System) dateString() string {
	if c, _ := sys.g.RTC(); c != nil {
		return c.DateString()
	}
	return "----------"
}

func (sys *System) batteryLevel() int {
	if b, _ := sys.g.Battery(); b != nil {
		return b.Level()
	}
	return 100
}

func (sys *System) batteryCharging() bool {
	if b, _ := sys.g.Battery(); b != nil {
		return b.Charging()
	}
	return false
}

func (sys *System) statusLine() string {
	switch {
	case sys.g.Wifi.Mode() == net.ModeAP:
		return "配网模式"
	case sys.g.Tele.IsConnected():
		return "在线"
	case sys.g.Wifi.IsConnected():
		return "已连接"
	default:
		return "待机"
	}
}

func (sys *System) apPayload() string {
	if sys.g.Wifi.Mode() == net.ModeAP {
		return sys.g.Wifi.APPayload()
	}
	return ""
}
