// MAX17048-style fuel gauge on the shared i2c bus.
package battery

import (
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	i2cperiph "periph.io/x/periph/conn/i2c"

	"github.com/mindspring/zhihui/hardware/i2c"
	"github.com/mindspring/zhihui/helpers/cacheval"
	"github.com/mindspring/zhihui/log2"
)

const modName = "battery"
const DefaultAddr uint16 = 0x36

const (
	regSoc     = 0x04
	regCrate   = 0x16
	regVersion = 0x08
)

// Gauge caches readings so the 10ms service loop does not hammer the bus.
type Gauge struct {
	Log      *log2.Log
	dev      *i2cperiph.Dev
	level    cacheval.Int32
	charging uint32
}

func NewGauge(bus *i2c.Bus, addr uint16, log *log2.Log) (*Gauge, error) {
	dev, err := bus.Device(addr, modName)
	if err != nil {
		return nil, errors.Annotate(err, modName)
	}
	g := &Gauge{Log: log, dev: dev}
	g.level.Init(time.Second)
	return g, nil
}

// Init probes the chip version register.
func (g *Gauge) Init() error {
	buf := make([]byte, 2)
	if err := g.dev.Tx([]byte{regVersion}, buf); err != nil {
		return errors.Annotatef(err, "%s probe", modName)
	}
	g.Log.Debugf("%s version=%02x%02x", modName, buf[0], buf[1])
	return nil
}

// Update refreshes state of charge at most once per validity window.
// Read errors keep the previous value.
func (g *Gauge) Update() {
	g.level.GetOrUpdate(func() {
		buf := make([]byte, 2)
		if err := g.dev.Tx([]byte{regSoc}, buf); err != nil {
			g.Log.Errorf("%s soc read err=%v", modName, err)
			return
		}
		level := int32(buf[0])
		if level > 100 {
			level = 100
		}
		g.level.Set(level)

		if err := g.dev.Tx([]byte{regCrate}, buf); err != nil {
			g.Log.Errorf("%s crate read err=%v", modName, err)
			return
		}
		// CRATE is signed; positive means charging.
		crate := int16(uint16(buf[0])<<8 | uint16(buf[1]))
		if crate > 0 {
			atomic.StoreUint32(&g.charging, 1)
		} else {
			atomic.StoreUint32(&g.charging, 0)
		}
	})
}

func (g *Gauge) Level() int { return int(g.level.Get()) }

func (g *Gauge) Charging() bool { return atomic.LoadUint32(&g.charging) == 1 }
