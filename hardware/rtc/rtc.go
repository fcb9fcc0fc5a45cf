// DS3231-style real-time clock on the shared i2c bus.
package rtc

import (
	"fmt"
	"time"

	"github.com/juju/errors"
	i2cperiph "periph.io/x/periph/conn/i2c"

	"github.com/mindspring/zhihui/hardware/i2c"
	"github.com/mindspring/zhihui/log2"
)

const modName = "rtc"
const DefaultAddr uint16 = 0x68

type Clock struct {
	Log *log2.Log
	dev *i2cperiph.Dev
}

func NewClock(bus *i2c.Bus, addr uint16, log *log2.Log) (*Clock, error) {
	dev, err := bus.Device(addr, modName)
	if err != nil {
		return nil, errors.Annotate(err, modName)
	}
	return &Clock{Log: log, dev: dev}, nil
}

func (c *Clock) Init() error {
	if _, err := c.ReadTime(); err != nil {
		return errors.Annotatef(err, "%s probe", modName)
	}
	return nil
}

func (c *Clock) ReadTime() (time.Time, error) {
	buf := make([]byte, 7)
	if err := c.dev.Tx([]byte{0x00}, buf); err != nil {
		return time.Time{}, errors.Annotatef(err, "%s read", modName)
	}
	sec := fromBcd(buf[0] & 0x7f)
	min := fromBcd(buf[1] & 0x7f)
	hour := fromBcd(buf[2] & 0x3f)
	day := fromBcd(buf[4] & 0x3f)
	month := fromBcd(buf[5] & 0x1f)
	year := 2000 + fromBcd(buf[6])
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, time.Local), nil
}

func (c *Clock) SetTime(t time.Time) error {
	w := []byte{0x00,
		toBcd(t.Second()),
		toBcd(t.Minute()),
		toBcd(t.Hour()),
		byte(t.Weekday()) + 1,
		toBcd(t.Day()),
		toBcd(int(t.Month())),
		toBcd(t.Year() - 2000),
	}
	return errors.Annotatef(c.dev.Tx(w, nil), "%s write", modName)
}

// TimeString and DateString feed the standby screen labels.
func (c *Clock) TimeString() string {
	t, err := c.ReadTime()
	if err != nil {
		return "--:--:--"
	}
	return t.Format("15:04:05")
}

func (c *Clock) DateString() string {
	t, err := c.ReadTime()
	if err != nil {
		return "----------"
	}
	return t.Format("2006-01-02")
}

func fromBcd(b byte) int { return int(b>>4)*10 + int(b&0x0f) }

func toBcd(v int) byte {
	if v < 0 || v > 99 {
		panic(fmt.Sprintf("code error bcd range v=%d", v))
	}
	return byte(v/10)<<4 | byte(v%10)
}
