package state

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl"

	"github.com/mindspring/zhihui/internal/tele"
	"github.com/mindspring/zhihui/log2"
)

type Config struct { //nolint:maligned
	Hardware struct {
		I2C struct {
			Bus      string `hcl:"bus"`
			LogDebug bool   `hcl:"log_debug"`
		} `hcl:"i2c"`
		Battery struct {
			Enable bool `hcl:"enable"`
			Addr   int  `hcl:"addr"`
		} `hcl:"battery"`
		RTC struct {
			Enable bool `hcl:"enable"`
			Addr   int  `hcl:"addr"`
		} `hcl:"rtc"`
		Motion struct {
			Enable bool `hcl:"enable"`
			Addr   int  `hcl:"addr"`
		} `hcl:"motion"`
		Audio struct {
			Enable bool `hcl:"enable"`
			Addr   int  `hcl:"addr"`
		} `hcl:"audio"`
		SDCard struct {
			Enable bool   `hcl:"enable"`
			Root   string `hcl:"root"`
		} `hcl:"sdcard"`
		Buttons struct {
			Enable      bool   `hcl:"enable"`
			GpioChip    string `hcl:"gpio_chip"`
			PowerLine   int    `hcl:"power_line"`
			BootLine    int    `hcl:"boot_line"`
			EvdevDevice string `hcl:"evdev_device"`
		} `hcl:"buttons"`
		Display struct {
			Socket   string `hcl:"socket"`
			Width    int    `hcl:"width"`
			Height   int    `hcl:"height"`
			LogDebug bool   `hcl:"log_debug"`
		} `hcl:"display"`
	} `hcl:"hardware"`

	UI struct {
		LockTimeoutMs   int `hcl:"lock_timeout_ms"`
		ServicePeriodMs int `hcl:"service_period_ms"`
	} `hcl:"ui"`

	Wifi struct {
		Enable     bool   `hcl:"enable"`
		APSSID     string `hcl:"ap_ssid"`
		APPassword string `hcl:"ap_password"`
	} `hcl:"wifi"`

	Tele tele.Config `hcl:"tele"`

	Persist struct {
		Root string `hcl:"root"`
	} `hcl:"persist"`
}

func ReadConfig(r io.Reader, log *log2.Log) (*Config, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	c := new(Config)
	if err = hcl.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

func ReadConfigFile(path string, log *log2.Log) (*Config, error) {
	if pathAbs, err := filepath.Abs(path); err != nil {
		log.Errorf("filepath.Abs(%s) error=%v", path, err)
	} else {
		path = pathAbs
	}
	log.Debugf("reading config file %s", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadConfig(f, log)
}

func MustReadConfig(r io.Reader, log *log2.Log) *Config {
	c, err := ReadConfig(r, log)
	if err != nil {
		log.Fatal(err)
	}
	return c
}

func MustReadConfigFile(path string, log *log2.Log) *Config {
	c, err := ReadConfigFile(path, log)
	if err != nil {
		log.Fatal(err)
	}
	return c
}
