// Package i2c owns the single shared peripheral bus and per-address
// device handles on top of periph.io.
package i2c

import (
	"sync"

	"github.com/juju/errors"
	"github.com/mindspring/zhihui/log2"
	i2cperiph "periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"
)

const modName = "i2c"

// All device handles are created at this fixed clock.
const DeviceClock = 100 * physic.KiloHertz

// AddrMax is the top of the 7-bit address space.
const AddrMax uint16 = 0x7f

type Bus struct {
	Log  *log2.Log
	name string
	bus  i2cperiph.Bus

	mu     sync.Mutex
	closer i2cperiph.BusCloser
	claims map[uint16]string
}

// Open creates the bus with fixed parameters. Callers hold the result as
// a process-lifetime singleton; see state.Global.I2C().
func Open(name string, log *log2.Log) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Annotate(err, "periph host init")
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, errors.Annotatef(err, "%s open name=%s", modName, name)
	}
	if err = bus.SetSpeed(DeviceClock); err != nil {
		// Some adapters reject speed changes; device handles still work.
		log.Errorf("%s name=%s set_speed err=%v", modName, name, err)
	}
	b := Wrap(bus, name, log)
	b.closer = bus
	log.Debugf("%s name=%s initialized", modName, name)
	return b, nil
}

// Wrap adopts an existing bus implementation. Used by tests with
// periph's i2ctest playback.
func Wrap(bus i2cperiph.Bus, name string, log *log2.Log) *Bus {
	return &Bus{
		Log:    log,
		name:   name,
		bus:    bus,
		claims: make(map[uint16]string, 8),
	}
}

func (b *Bus) Name() string { return b.name }

// Device configures a handle at a fixed 7-bit address. Creating a second
// handle for a claimed address is a caller error and is refused. A failed
// creation leaves the bus usable for other addresses.
func (b *Bus) Device(addr uint16, tag string) (*i2cperiph.Dev, error) {
	if addr > AddrMax {
		err := errors.NotValidf("%s device=%s addr=0x%02x beyond 7-bit space", modName, tag, addr)
		b.Log.Error(err)
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if prev, ok := b.claims[addr]; ok {
		err := errors.AlreadyExistsf("%s addr=0x%02x claimed by %s, requested by %s", modName, addr, prev, tag)
		b.Log.Error(err)
		return nil, err
	}
	b.claims[addr] = tag
	return &i2cperiph.Dev{Bus: b.bus, Addr: addr}, nil
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closer != nil {
		return b.closer.Close()
	}
	return nil
}
