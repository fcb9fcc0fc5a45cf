package vmc

import (
	"context"
	"time"

	"github.com/mindspring/zhihui/internal/net"
	"github.com/mindspring/zhihui/internal/ui"
)

// surfacePoll is how often boot re-checks the compositor while waiting
// for it to come up.
const surfacePoll = 100 * time.Millisecond

// BootTask brings the device up in the fixed firmware order, painting
// progress on the loading screen. Subsystem failures are logged and
// boot continues; the device is useful even with a dead rtc. The task
// idles until process stop so its goroutine accounts for boot-owned
// state for the whole run.
func (sys *System) BootTask(ctx context.Context) error {
	g := sys.g
	g.Alive.Add(1)
	defer g.Alive.Done()

	// the compositor starts in parallel with this process
	for !sys.d.Ready() {
		select {
		case <-time.After(surfacePoll):
		case <-g.Alive.StopChan():
			return nil
		}
	}
	if err := sys.screens.Show(ctx, ui.Loading); err != nil {
		g.Error(err, "boot loading screen")
	}
	sys.step(ctx, 10, "display", nil)

	sys.step(ctx, 20, "buttons", func() error {
		if g.Hardware.Input == nil {
			g.Log.Infof("boot buttons: input dispatch disabled")
		}
		return nil
	})
	sys.step(ctx, 30, "battery", func() error {
		b, err := g.Battery()
		if err != nil || b == nil {
			return err
		}
		return b.Init()
	})
	sys.step(ctx, 40, "rtc", func() error {
		c, err := g.RTC()
		if err != nil || c == nil {
			return err
		}
		return c.Init()
	})
	sys.step(ctx, 50, "motion", func() error {
		m, err := g.Motion()
		if err != nil || m == nil {
			return err
		}
		return m.Init()
	})
	sys.step(ctx, 55, "sdcard", func() error {
		s, err := g.SDCard()
		if err != nil || s == nil {
			return err
		}
		return s.Init()
	})
	sys.step(ctx, 60, "audio", func() error {
		a, err := g.Audio()
		if err != nil || a == nil {
			return err
		}
		return a.Init()
	})
	sys.step(ctx, 70, "config", func() error {
		ssid := g.KV.GetString(net.KeySSID, "")
		g.Log.Debugf("boot config wifi_ssid=%q", ssid)
		return nil
	})
	sys.step(ctx, 80, "wifi", nil)
	sys.step(ctx, 90, "network", func() error {
		if !g.Config.Wifi.Enable {
			g.Log.Infof("boot network: wifi disabled")
			return nil
		}
		return g.Wifi.ConnectBoot(ctx)
	})
	sys.step(ctx, 100, "就绪", nil)

	sys.markReady()
	g.Log.Infof("boot complete")

	sys.screens.Hide(ctx, ui.Loading)
	if err := sys.screens.Show(ctx, ui.Standby); err != nil {
		g.Error(err, "boot standby screen")
	}

	<-g.Alive.StopChan()
	return nil
}

// step paints progress, then runs the subsystem init. Subsystem errors
// are logged, boot continues.
func (sys *System) step(ctx context.Context, percent int, name string, f func() error) {
	sys.g.Log.Infof("boot %d%% %s", percent, name)
	if err := ui.SetBootProgress(ctx, sys.screens, percent, name); err != nil {
		sys.g.Log.Errorf("boot progress %s err=%v", name, err)
	}
	if f != nil {
		if err := f(); err != nil {
			sys.g.Error(err, "boot %s", name)
		}
	}
}
