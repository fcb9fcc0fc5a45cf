package tele

type Config struct { //nolint:maligned
	Enabled        bool   `hcl:"enable"`
	Broker         string `hcl:"broker"`
	DeviceID       string `hcl:"device_id"`
	Password       string `hcl:"password"`
	KeepaliveSec   int    `hcl:"keepalive_sec"`
	PingTimeoutSec int    `hcl:"ping_timeout_sec"`
	StorePath      string `hcl:"store_path"`
	LogDebug       bool   `hcl:"log_debug"`
}
