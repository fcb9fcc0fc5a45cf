package ui

import (
	"context"

	"github.com/mindspring/zhihui/hardware/display"
	"github.com/mindspring/zhihui/internal/types"
)

type LauncherEntry struct {
	ID    types.AppID
	Label string
	Icon  display.IconKind
	// OnSelect must not touch the display synchronously, the lock is
	// held while click routing runs. Hand off to the service loop.
	OnSelect func()
}

// RegisterLauncher lays out one button per installed application.
func RegisterLauncher(s *Screens, entries []LauncherEntry) {
	s.Register(Launcher, func(ctx context.Context, g *display.Guard, f *display.Frame) error {
		f.Label("title", "应用", colorWhite)
		for _, e := range entries {
			f.Button("app-"+string(e.ID), e.Label, e.Icon, e.OnSelect)
		}
		return nil
	}, nil)
}

// ClickLauncher routes a selection to the launcher button for id.
func ClickLauncher(ctx context.Context, s *Screens, id types.AppID) bool {
	clicked := false
	err := s.Mutate(ctx, Launcher, func(f *display.Frame) {
		clicked = f.Click("app-" + string(id))
	})
	if err != nil {
		s.Log.Debugf("%s launcher click id=%s err=%v", modName, id, err)
		return false
	}
	return clicked
}
