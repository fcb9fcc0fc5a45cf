package input

import (
	"time"

	"github.com/juju/errors"
	gpio "github.com/temoto/gpio-cdev-go"

	"github.com/mindspring/zhihui/internal/types"
)

const GpioButtonsTag = "gpio-buttons"

// GpioButtonSource turns the falling edge of one gpio line into a
// single "pressed" event for the mapped logical key.
type GpioButtonSource struct {
	key   types.InputKey
	event gpio.Eventer
}

var _ Source = new(GpioButtonSource)

func (s *GpioButtonSource) String() string { return GpioButtonsTag }

func NewGpioButtonSource(chip gpio.Chiper, line uint32, key types.InputKey) (*GpioButtonSource, error) {
	ev, err := chip.GetLineEvent(line, 0, gpio.GPIOEVENT_REQUEST_FALLING_EDGE, "zhihui-button")
	if err != nil {
		return nil, errors.Annotatef(err, "%s line=%d", GpioButtonsTag, line)
	}
	return &GpioButtonSource{key: key, event: ev}, nil
}

func (s *GpioButtonSource) Read() (types.InputEvent, error) {
	for {
		_, err := s.event.Wait(time.Hour)
		if gpio.IsTimeout(err) {
			continue
		}
		if err != nil {
			return types.InputEvent{}, errors.Trace(err)
		}
		return types.InputEvent{Source: GpioButtonsTag, Key: s.key, Up: true}, nil
	}
}

func (s *GpioButtonSource) Close() error { return s.event.Close() }
