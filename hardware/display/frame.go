package display

import (
	"github.com/juju/errors"
	qrcode "github.com/skip2/go-qrcode"
)

type WidgetKind uint8

const (
	KindLabel WidgetKind = iota
	KindBar
	KindSpinner
	KindIcon
	KindButton
	KindQR
)

type IconKind uint8

const (
	IconNone IconKind = iota
	IconMicrophone
	IconSettings
	IconBatteryFull
	IconBatteryMedium
	IconBatteryLow
	IconBatteryCharging
	IconWifiConnected
	IconWifiDisconnected
)

// Widget is one node of a frame's tree. Content mutation must happen
// while holding the display lock; the engine reads during its pump.
type Widget struct {
	Name    string
	Kind    WidgetKind
	text    string
	value   int
	color   uint32
	icon    IconKind
	onClick func()
	qr      *qrcode.QRCode
}

func (w *Widget) Text() string   { return w.text }
func (w *Widget) Value() int     { return w.value }
func (w *Widget) Color() uint32  { return w.color }
func (w *Widget) Icon() IconKind { return w.icon }
func (w *Widget) QR() *qrcode.QRCode { return w.qr }

func (w *Widget) SetText(s string)     { w.text = s }
func (w *Widget) SetColor(c uint32)    { w.color = c }
func (w *Widget) SetIcon(ic IconKind)  { w.icon = ic }

// SetValue clamps to [0,100].
func (w *Widget) SetValue(v int) {
	if v < 0 {
		v = 0
	} else if v > 100 {
		v = 100
	}
	w.value = v
}

// Frame is one full-screen widget tree. Construction is deterministic
// and happens once per screen variant.
type Frame struct {
	Name   string
	order  []*Widget
	byName map[string]*Widget
}

func NewFrame(name string) *Frame {
	return &Frame{
		Name:   name,
		byName: make(map[string]*Widget, 8),
	}
}

func (f *Frame) add(w *Widget) *Widget {
	f.order = append(f.order, w)
	f.byName[w.Name] = w
	return w
}

func (f *Frame) Label(name, text string, color uint32) *Widget {
	return f.add(&Widget{Name: name, Kind: KindLabel, text: text, color: color})
}

func (f *Frame) Bar(name string) *Widget {
	return f.add(&Widget{Name: name, Kind: KindBar})
}

func (f *Frame) Spinner(name string) *Widget {
	return f.add(&Widget{Name: name, Kind: KindSpinner})
}

func (f *Frame) Icon(name string, icon IconKind) *Widget {
	return f.add(&Widget{Name: name, Kind: KindIcon, icon: icon})
}

func (f *Frame) Button(name, label string, icon IconKind, onClick func()) *Widget {
	return f.add(&Widget{Name: name, Kind: KindButton, text: label, icon: icon, onClick: onClick})
}

// QRWidget pre-renders payload so an invalid one fails construction, not
// the render pump.
func (f *Frame) QRWidget(name, payload string) (*Widget, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, errors.Annotatef(err, "frame=%s qr=%s", f.Name, name)
	}
	return f.add(&Widget{Name: name, Kind: KindQR, text: payload, qr: q}), nil
}

func (f *Frame) Get(name string) *Widget { return f.byName[name] }

func (f *Frame) Widgets() []*Widget { return f.order }

// Click routes a touch event to the named button. Returns false when the
// widget is absent or not clickable.
func (f *Frame) Click(name string) bool {
	w := f.byName[name]
	if w == nil || w.Kind != KindButton || w.onClick == nil {
		return false
	}
	w.onClick()
	return true
}
