package i2c

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindspring/zhihui/log2"
	"periph.io/x/periph/conn/i2c/i2ctest"
)

func testBus(t testing.TB, ops []i2ctest.IO) *Bus {
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	return Wrap(pb, "playback", log2.NewTest(t, log2.LDebug))
}

func TestDeviceAddressSpace(t *testing.T) {
	t.Parallel()
	b := testBus(t, nil)

	_, err := b.Device(0x80, "oob")
	require.Error(t, err)
	assert.True(t, errors.IsNotValid(err))

	d, err := b.Device(0x68, "rtc")
	require.NoError(t, err)
	assert.Equal(t, uint16(0x68), d.Addr)
}

func TestDeviceDuplicateAddr(t *testing.T) {
	t.Parallel()
	b := testBus(t, nil)

	_, err := b.Device(0x36, "gauge")
	require.NoError(t, err)

	_, err = b.Device(0x36, "gauge-again")
	require.Error(t, err)
	assert.True(t, errors.IsAlreadyExists(err))

	// failed claim must not poison other addresses
	_, err = b.Device(0x19, "motion")
	assert.NoError(t, err)
}

func TestDeviceTx(t *testing.T) {
	t.Parallel()
	b := testBus(t, []i2ctest.IO{
		{Addr: 0x36, W: []byte{0x04}, R: []byte{0x55}},
	})
	d, err := b.Device(0x36, "gauge")
	require.NoError(t, err)
	r := make([]byte, 1)
	require.NoError(t, d.Tx([]byte{0x04}, r))
	assert.Equal(t, byte(0x55), r[0])
}
