package ui

import (
	"context"
	"fmt"

	"github.com/juju/errors"

	"github.com/mindspring/zhihui/hardware/display"
)

// StandbyData supplies live content for the standby screen. Nil fields
// leave the matching widget static.
type StandbyData struct {
	Time            func() string
	Date            func() string
	BatteryLevel    func() int
	BatteryCharging func() bool
	WifiConnected   func() bool
	Status          func() string
	// APPayload, when non-empty at build time, adds the provisioning QR.
	APPayload func() string
}

func RegisterStandby(s *Screens, data StandbyData) {
	build := func(ctx context.Context, g *display.Guard, f *display.Frame) error {
		f.Label("time", "--:--:--", colorWhite)
		f.Label("date", "----------", colorGrey)
		f.Label("status", "待机", colorGrey)
		f.Icon("battery-icon", display.IconBatteryFull)
		f.Label("battery", "---%", colorGreen)
		f.Icon("wifi", display.IconWifiDisconnected)
		if data.APPayload != nil {
			if payload := data.APPayload(); payload != "" {
				if _, err := f.QRWidget("ap-qr", payload); err != nil {
					return errors.Trace(err)
				}
				f.Get("status").SetText("扫码配网")
			}
		}
		return nil
	}

	update := func(ctx context.Context, f *display.Frame) {
		if data.Time != nil {
			f.Get("time").SetText(data.Time())
		}
		if data.Date != nil {
			f.Get("date").SetText(data.Date())
		}
		if data.Status != nil {
			f.Get("status").SetText(data.Status())
		}
		if data.BatteryLevel != nil {
			level := data.BatteryLevel()
			w := f.Get("battery")
			w.SetText(fmt.Sprintf("%d%%", level))
			w.SetColor(batteryColor(level))
			f.Get("battery-icon").SetIcon(batteryIcon(level, data.BatteryCharging != nil && data.BatteryCharging()))
		}
		if data.WifiConnected != nil {
			if data.WifiConnected() {
				f.Get("wifi").SetIcon(display.IconWifiConnected)
			} else {
				f.Get("wifi").SetIcon(display.IconWifiDisconnected)
			}
		}
	}

	s.Register(Standby, build, update)
}

func batteryColor(level int) uint32 {
	switch {
	case level > 50:
		return colorGreen
	case level > 20:
		return colorYellow
	default:
		return colorRed
	}
}

func batteryIcon(level int, charging bool) display.IconKind {
	switch {
	case charging:
		return display.IconBatteryCharging
	case level > 50:
		return display.IconBatteryFull
	case level > 20:
		return display.IconBatteryMedium
	default:
		return display.IconBatteryLow
	}
}
