package vmc

import (
	"context"
	"time"

	"github.com/mindspring/zhihui/internal/types"
	"github.com/mindspring/zhihui/internal/ui"
)

// ServiceTask is the cooperative loop: periodic housekeeping on a
// ticker, button events as they come. It does no work until the boot
// task signals readiness.
func (sys *System) ServiceTask(ctx context.Context) error {
	g := sys.g
	g.Alive.Add(1)
	defer g.Alive.Done()

	select {
	case <-sys.ready:
	case <-g.Alive.StopChan():
		return nil
	}

	events := g.Hardware.Input.SubscribeChan("vmc-service", g.Alive.StopChan())
	ticker := time.NewTicker(g.ServicePeriod())
	defer ticker.Stop()

	for {
		select {
		case <-g.Alive.StopChan():
			return nil

		case e := <-events:
			sys.onInput(ctx, e)

		case f := <-sys.uiq:
			f(ctx)

		case <-ticker.C:
			sys.tick(ctx)
		}
	}
}

func (sys *System) tick(ctx context.Context) {
	g := sys.g
	if b, _ := g.Battery(); b != nil {
		b.Update()
	}
	g.Wifi.Handle(ctx)
	if a, _ := g.Audio(); a != nil {
		a.Process()
	}
	if id, app := sys.registry.Running(); app != nil {
		if err := app.Update(ctx); err != nil {
			g.Error(err, "app=%s update", id)
		}
	}
	if err := sys.screens.Update(ctx); err != nil {
		g.Log.Errorf("ui update err=%v", err)
	}
}

// onInput maps button presses to screen transitions. Both physical
// buttons share one toggle behavior.
func (sys *System) onInput(ctx context.Context, e types.InputEvent) {
	if !e.Up || (e.Key != types.KeyPower && e.Key != types.KeyBoot) {
		sys.g.Log.Debugf("vmc input ignored event=%s", e.String())
		return
	}

	visible := sys.screens.Visible()
	switch visible.Kind {
	case ui.ScreenStandby:
		sys.showChecked(ctx, ui.Launcher)

	case ui.ScreenLauncher:
		sys.showChecked(ctx, ui.Standby)

	case ui.ScreenApp:
		// leaving the app returns to standby
		if _, app := sys.registry.Running(); app != nil {
			app.Hide(ctx)
		}
		sys.screens.Hide(ctx, visible)
		sys.showChecked(ctx, ui.Standby)

	default:
		// loading or blank, buttons do nothing yet
		sys.g.Log.Debugf("vmc input before ready event=%s", e.String())
	}
}

func (sys *System) showChecked(ctx context.Context, id ui.ScreenID) {
	if err := sys.screens.Show(ctx, id); err != nil {
		sys.g.Error(err, "show screen=%s", id)
	}
}
