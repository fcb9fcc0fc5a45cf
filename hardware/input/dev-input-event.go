package input

import (
	"io"
	"os"

	inputevent "github.com/temoto/inputevent-go"

	"github.com/mindspring/zhihui/internal/types"
)

const DevInputEventTag = "dev-input-event"

// evdev key codes for the two physical buttons.
const (
	evKeyPower = 116 // KEY_POWER
	evKeyBoot  = 256 // BTN_0
)

type DevInputEventSource struct {
	f io.ReadCloser
}

var _ Source = new(DevInputEventSource)

func (s *DevInputEventSource) String() string { return DevInputEventTag }

func NewDevInputEventSource(device string) (*DevInputEventSource, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, err
	}
	return &DevInputEventSource{f: f}, nil
}

func (s *DevInputEventSource) Read() (types.InputEvent, error) {
	for {
		ie, err := inputevent.ReadOne(s.f)
		if err != nil {
			return types.InputEvent{}, err
		}
		if ie.Type != inputevent.EV_KEY || ie.Value != int32(inputevent.KeyStateUp) {
			continue
		}
		key := types.KeyInvalid
		switch ie.Code {
		case evKeyPower:
			key = types.KeyPower
		case evKeyBoot:
			key = types.KeyBoot
		default:
			continue
		}
		return types.InputEvent{Source: DevInputEventTag, Key: key, Up: true}, nil
	}
}

func (s *DevInputEventSource) Close() error { return s.f.Close() }
