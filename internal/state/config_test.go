package state

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindspring/zhihui/log2"
)

const testConf = `
hardware {
  i2c { bus = "/dev/i2c-1" }
  battery { enable = true  addr = 54 }
  rtc { enable = true }
  buttons {
    enable = true
    gpio_chip = "/dev/gpiochip0"
    power_line = 4
    boot_line = 5
  }
  display {
    socket = "/run/zhihui/compositor.sock"
    width = 240
    height = 320
  }
}
ui {
  lock_timeout_ms = 250
  service_period_ms = 10
}
wifi {
  enable = true
  ap_ssid = "Test-Setup"
}
tele { enable = false }
persist { root = "/tmp/zhihui-test" }
`

func TestReadConfig(t *testing.T) {
	t.Parallel()
	log := log2.NewTest(t, log2.LDebug)
	c, err := ReadConfig(strings.NewReader(testConf), log)
	require.NoError(t, err)

	assert.Equal(t, "/dev/i2c-1", c.Hardware.I2C.Bus)
	assert.True(t, c.Hardware.Battery.Enable)
	assert.Equal(t, 54, c.Hardware.Battery.Addr)
	assert.True(t, c.Hardware.RTC.Enable)
	assert.Equal(t, "/dev/gpiochip0", c.Hardware.Buttons.GpioChip)
	assert.Equal(t, 4, c.Hardware.Buttons.PowerLine)
	assert.Equal(t, 5, c.Hardware.Buttons.BootLine)
	assert.Equal(t, "/run/zhihui/compositor.sock", c.Hardware.Display.Socket)
	assert.Equal(t, 240, c.Hardware.Display.Width)
	assert.Equal(t, 250, c.UI.LockTimeoutMs)
	assert.True(t, c.Wifi.Enable)
	assert.Equal(t, "Test-Setup", c.Wifi.APSSID)
	assert.False(t, c.Tele.Enabled)
	assert.Equal(t, "/tmp/zhihui-test", c.Persist.Root)
}

func TestReadConfigGarbage(t *testing.T) {
	t.Parallel()
	log := log2.NewTest(t, log2.LDebug)
	_, err := ReadConfig(strings.NewReader("hardware { i2c {"), log)
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	log := log2.NewTest(t, log2.LDebug)
	c, err := ReadConfig(strings.NewReader(""), log)
	require.NoError(t, err)
	g := &Global{Config: c, Log: log}
	assert.Equal(t, 5*time.Second, g.LockTimeout())
	assert.Equal(t, 10*time.Millisecond, g.ServicePeriod())
}
