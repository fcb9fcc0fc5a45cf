// LIS3DH-style motion sensor, used for wake-on-pickup.
package motion

import (
	"github.com/juju/errors"
	i2cperiph "periph.io/x/periph/conn/i2c"

	"github.com/mindspring/zhihui/hardware/i2c"
	"github.com/mindspring/zhihui/log2"
)

const modName = "motion"
const DefaultAddr uint16 = 0x19

const (
	regWhoAmI = 0x0f
	whoAmI    = 0x33
	regCtrl1  = 0x20
	// 10Hz low-power, XYZ enabled
	ctrl1Default = 0x2f
)

type Sensor struct {
	Log *log2.Log
	dev *i2cperiph.Dev
}

func NewSensor(bus *i2c.Bus, addr uint16, log *log2.Log) (*Sensor, error) {
	dev, err := bus.Device(addr, modName)
	if err != nil {
		return nil, errors.Annotate(err, modName)
	}
	return &Sensor{Log: log, dev: dev}, nil
}

func (s *Sensor) Init() error {
	buf := make([]byte, 1)
	if err := s.dev.Tx([]byte{regWhoAmI}, buf); err != nil {
		return errors.Annotatef(err, "%s probe", modName)
	}
	if buf[0] != whoAmI {
		return errors.Errorf("%s unexpected chip id=0x%02x", modName, buf[0])
	}
	if err := s.dev.Tx([]byte{regCtrl1, ctrl1Default}, nil); err != nil {
		return errors.Annotatef(err, "%s ctrl1", modName)
	}
	s.Log.Debugf("%s initialized", modName)
	return nil
}
