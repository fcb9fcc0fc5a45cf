package state

import (
	"image"
	"sync"
	"sync/atomic"

	"github.com/juju/errors"

	"github.com/mindspring/zhihui/hardware/audio"
	"github.com/mindspring/zhihui/hardware/battery"
	"github.com/mindspring/zhihui/hardware/display"
	"github.com/mindspring/zhihui/hardware/i2c"
	"github.com/mindspring/zhihui/hardware/input"
	"github.com/mindspring/zhihui/hardware/motion"
	"github.com/mindspring/zhihui/hardware/rtc"
	"github.com/mindspring/zhihui/hardware/sdcard"
	"github.com/mindspring/zhihui/log2"
)

type hardware struct {
	Display struct {
		once
		D *display.Display // settable before Init for tests
	}
	Input *input.Dispatch

	// i2c is not a `once`: a failed open leaves the slot empty so the
	// next accessor call retries, the bus may appear after a driver
	// probe or power cycle
	i2c struct {
		sync.Mutex
		bus *i2c.Bus
	}

	audio struct {
		once
		h *audio.Handler
	}
	battery struct {
		once
		g *battery.Gauge
	}
	motion struct {
		once
		s *motion.Sensor
	}
	rtc struct {
		once
		c *rtc.Clock
	}
	sdcard struct {
		once
		s *sdcard.Storage
	}
}

// I2C opens the shared bus on first use. Unlike the other accessors an
// error is not cached.
func (g *Global) I2C() (*i2c.Bus, error) {
	x := &g.Hardware.i2c
	x.Lock()
	defer x.Unlock()
	if x.bus != nil {
		return x.bus, nil
	}
	cfg := &g.Config.Hardware.I2C
	log := g.Log.Clone(log2.LInfo)
	if cfg.LogDebug {
		log.SetLevel(log2.LDebug)
	}
	bus, err := i2c.Open(cfg.Bus, log)
	if err != nil {
		return nil, errors.Annotatef(err, "config: i2c.bus=%s", cfg.Bus)
	}
	x.bus = bus
	return x.bus, nil
}

func (g *Global) Display() (*display.Display, error) {
	x := &g.Hardware.Display
	_ = x.do(func() error {
		if x.D != nil { // state-new testing mode
			return nil
		}
		cfg := &g.Config.Hardware.Display
		if cfg.Socket == "" {
			return errors.NotProvisionedf("config: display.socket")
		}
		log := g.Log.Clone(log2.LInfo)
		if cfg.LogDebug {
			log.SetLevel(log2.LDebug)
		}
		size := image.Point{X: cfg.Width, Y: cfg.Height}
		engine := display.NewSocketEngine(cfg.Socket, size, log)
		x.D = display.New(engine, log)
		return nil
	})
	return x.D, x.err
}

func (g *Global) MustDisplay() *display.Display {
	d, err := g.Display()
	if err != nil {
		g.Log.Fatal(err)
	}
	return d
}

func (g *Global) Audio() (*audio.Handler, error) {
	x := &g.Hardware.audio
	_ = x.do(func() error {
		cfg := &g.Config.Hardware.Audio
		if !cfg.Enable {
			return nil
		}
		bus, err := g.I2C()
		if err != nil {
			return errors.Annotate(err, "audio")
		}
		x.h, x.err = audio.NewHandler(bus, addrDefault(cfg.Addr, audio.DefaultAddr), g.Log)
		return x.err
	})
	return x.h, x.err
}

func (g *Global) Battery() (*battery.Gauge, error) {
	x := &g.Hardware.battery
	_ = x.do(func() error {
		cfg := &g.Config.Hardware.Battery
		if !cfg.Enable {
			return nil
		}
		bus, err := g.I2C()
		if err != nil {
			return errors.Annotate(err, "battery")
		}
		x.g, x.err = battery.NewGauge(bus, addrDefault(cfg.Addr, battery.DefaultAddr), g.Log)
		return x.err
	})
	return x.g, x.err
}

func (g *Global) Motion() (*motion.Sensor, error) {
	x := &g.Hardware.motion
	_ = x.do(func() error {
		cfg := &g.Config.Hardware.Motion
		if !cfg.Enable {
			return nil
		}
		bus, err := g.I2C()
		if err != nil {
			return errors.Annotate(err, "motion")
		}
		x.s, x.err = motion.NewSensor(bus, addrDefault(cfg.Addr, motion.DefaultAddr), g.Log)
		return x.err
	})
	return x.s, x.err
}

func (g *Global) RTC() (*rtc.Clock, error) {
	x := &g.Hardware.rtc
	_ = x.do(func() error {
		cfg := &g.Config.Hardware.RTC
		if !cfg.Enable {
			return nil
		}
		bus, err := g.I2C()
		if err != nil {
			return errors.Annotate(err, "rtc")
		}
		x.c, x.err = rtc.NewClock(bus, addrDefault(cfg.Addr, rtc.DefaultAddr), g.Log)
		return x.err
	})
	return x.c, x.err
}

func (g *Global) SDCard() (*sdcard.Storage, error) {
	x := &g.Hardware.sdcard
	_ = x.do(func() error {
		cfg := &g.Config.Hardware.SDCard
		if !cfg.Enable {
			return nil
		}
		x.s = sdcard.NewStorage(cfg.Root, g.Log)
		return nil
	})
	return x.s, x.err
}

func addrDefault(configured int, def uint16) uint16 {
	if configured > 0 {
		return uint16(configured)
	}
	return def
}

type once struct {
	sync.Mutex
	called uint32 // atomic bool
	err    error
}

func (o *once) done() bool {
	return atomic.LoadUint32(&o.called) == 1
}

func (o *once) do(f func() error) error {
	if o.done() { // fast path
		return o.err
	}
	o.Lock()
	defer o.Unlock()
	if o.done() {
		return o.err
	}
	o.err = f()
	atomic.StoreUint32(&o.called, 1)
	return o.err
}
