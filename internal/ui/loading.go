package ui

import (
	"context"

	"github.com/mindspring/zhihui/hardware/display"
)

const (
	colorWhite  = 0xffffff
	colorGrey   = 0x9e9e9e
	colorGreen  = 0x00c853
	colorYellow = 0xffd600
	colorRed    = 0xd50000
)

// RegisterLoading wires the boot progress screen: spinner, progress
// bar and a status line naming the subsystem being brought up.
func RegisterLoading(s *Screens) {
	s.Register(Loading, func(ctx context.Context, g *display.Guard, f *display.Frame) error {
		f.Label("title", "智回", colorWhite)
		f.Spinner("spinner")
		f.Bar("progress")
		f.Label("status", "启动中", colorGrey)
		return nil
	}, nil)
}

// SetBootProgress pushes percent and status to the loading screen.
func SetBootProgress(ctx context.Context, s *Screens, percent int, status string) error {
	return s.Mutate(ctx, Loading, func(f *display.Frame) {
		f.Get("progress").SetValue(percent)
		if status != "" {
			f.Get("status").SetText(status)
		}
	})
}
