// Audio codec control plane. The DSP/playback path is external; this
// layer only powers the codec up and services its event queue from the
// service loop.
package audio

import (
	"github.com/juju/errors"
	i2cperiph "periph.io/x/periph/conn/i2c"

	"github.com/mindspring/zhihui/hardware/i2c"
	"github.com/mindspring/zhihui/log2"
)

const modName = "audio"
const DefaultAddr uint16 = 0x18

const (
	regChipID = 0xfd
	regPower  = 0x02
	powerOn   = 0x00
)

type Handler struct {
	Log *log2.Log
	dev *i2cperiph.Dev
	ok  bool
}

func NewHandler(bus *i2c.Bus, addr uint16, log *log2.Log) (*Handler, error) {
	dev, err := bus.Device(addr, modName)
	if err != nil {
		return nil, errors.Annotate(err, modName)
	}
	return &Handler{Log: log, dev: dev}, nil
}

func (h *Handler) Init() error {
	buf := make([]byte, 1)
	if err := h.dev.Tx([]byte{regChipID}, buf); err != nil {
		return errors.Annotatef(err, "%s probe", modName)
	}
	if err := h.dev.Tx([]byte{regPower, powerOn}, nil); err != nil {
		return errors.Annotatef(err, "%s power", modName)
	}
	h.ok = true
	h.Log.Debugf("%s chip=0x%02x initialized", modName, buf[0])
	return nil
}

// Process is polled each service cycle. Must never block.
func (h *Handler) Process() {
	if !h.ok {
		return
	}
	// codec interrupts are level-triggered; a failed status read is
	// harmless and retried next cycle
	buf := make([]byte, 1)
	if err := h.dev.Tx([]byte{regPower}, buf); err != nil {
		h.Log.Debugf("%s status err=%v", modName, err)
	}
}
