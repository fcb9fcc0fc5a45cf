// Package net manages the wifi link. Boot follows a fixed policy:
// saved credentials first, then the factory fallback network, then a
// local access point for provisioning.
package net

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"github.com/juju/errors"

	"github.com/mindspring/zhihui/helpers/cacheval"
	"github.com/mindspring/zhihui/internal/kvs"
	"github.com/mindspring/zhihui/log2"
)

const modName = "wifi"

const (
	KeySSID     = "wifi_ssid"
	KeyPassword = "wifi_password"

	FallbackSSID     = "BE3600"
	FallbackPassword = "19930101"

	DefaultAPSSID     = "ZhiHui-Setup"
	DefaultAPPassword = "zhihui123"
)

type Mode uint32

const (
	ModeOff Mode = iota
	ModeStation
	ModeAP
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeStation:
		return "station"
	case ModeAP:
		return "ap"
	}
	return fmt.Sprintf("unknown(%d)", uint32(m))
}

// Driver is the raw radio control. The stock driver shells out to
// NetworkManager; tests substitute a scripted one.
type Driver interface {
	Connect(ctx context.Context, ssid, password string) error
	StartAP(ctx context.Context, ssid, password string) error
	Status(ctx context.Context) bool
}

type Manager struct { //nolint:maligned
	Log *log2.Log

	drv       Driver
	kv        *kvs.Store
	apSSID    string
	apPass    string
	mode      uint32
	connected uint32
	status    cacheval.Int32
}

func NewManager(drv Driver, kv *kvs.Store, log *log2.Log) *Manager {
	m := &Manager{
		Log:    log,
		drv:    drv,
		kv:     kv,
		apSSID: DefaultAPSSID,
		apPass: DefaultAPPassword,
	}
	m.status.Init(5 * time.Second)
	return m
}

func (m *Manager) SetAP(ssid, password string) {
	if ssid != "" {
		m.apSSID = ssid
	}
	if password != "" {
		m.apPass = password
	}
}

func (m *Manager) Mode() Mode { return Mode(atomic.LoadUint32(&m.mode)) }

func (m *Manager) IsConnected() bool { return atomic.LoadUint32(&m.connected) == 1 }

// APPayload is the provisioning QR content, standard WIFI: format.
func (m *Manager) APPayload() string {
	return fmt.Sprintf("WIFI:S:%s;T:WPA;P:%s;;", m.apSSID, m.apPass)
}

// ConnectBoot runs the boot policy. Credentials that worked are
// persisted so the next boot connects directly. Falling back to AP
// mode is a successful outcome, the device is then provisioned over
// the QR on screen.
func (m *Manager) ConnectBoot(ctx context.Context) error {
	if ssid, ok := m.kv.Get(KeySSID); ok && ssid != "" {
		pass := m.kv.GetString(KeyPassword, "")
		err := m.tryStation(ctx, ssid, pass)
		if err == nil {
			return nil
		}
		m.Log.Infof("%s saved ssid=%s failed err=%v", modName, ssid, err)
	}
	err := m.tryStation(ctx, FallbackSSID, FallbackPassword)
	if err == nil {
		if err = m.kv.Set(KeySSID, FallbackSSID); err == nil {
			err = m.kv.Set(KeyPassword, FallbackPassword)
		}
		if err != nil {
			m.Log.Errorf("%s persist fallback err=%v", modName, err)
		}
		return nil
	}
	m.Log.Infof("%s fallback ssid=%s failed err=%v", modName, FallbackSSID, err)
	if err := m.drv.StartAP(ctx, m.apSSID, m.apPass); err != nil {
		atomic.StoreUint32(&m.mode, uint32(ModeOff))
		return errors.Annotatef(err, "%s start ap", modName)
	}
	atomic.StoreUint32(&m.mode, uint32(ModeAP))
	atomic.StoreUint32(&m.connected, 0)
	m.Log.Infof("%s ap ssid=%s", modName, m.apSSID)
	return nil
}

func (m *Manager) tryStation(ctx context.Context, ssid, password string) error {
	if err := m.drv.Connect(ctx, ssid, password); err != nil {
		return err
	}
	atomic.StoreUint32(&m.mode, uint32(ModeStation))
	atomic.StoreUint32(&m.connected, 1)
	m.Log.Infof("%s connected ssid=%s", modName, ssid)
	return nil
}

// Handle refreshes link status, throttled so the service loop can call
// it every cycle.
func (m *Manager) Handle(ctx context.Context) {
	if m.Mode() != ModeStation {
		return
	}
	m.status.GetOrUpdate(func() {
		if m.drv.Status(ctx) {
			atomic.StoreUint32(&m.connected, 1)
			m.status.Set(1)
			return
		}
		atomic.StoreUint32(&m.connected, 0)
		m.status.Set(0)
	})
}

// NMDriver drives the radio through nmcli.
type NMDriver struct {
	Log *log2.Log
	// Timeout bounds each nmcli invocation.
	Timeout time.Duration
}

func (d *NMDriver) run(ctx context.Context, args ...string) (string, error) {
	timeout := d.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "nmcli", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", errors.Annotatef(err, "nmcli %s out=%s", strings.Join(args, " "), strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

func (d *NMDriver) Connect(ctx context.Context, ssid, password string) error {
	args := []string{"device", "wifi", "connect", ssid}
	if password != "" {
		args = append(args, "password", password)
	}
	_, err := d.run(ctx, args...)
	return err
}

func (d *NMDriver) StartAP(ctx context.Context, ssid, password string) error {
	_, err := d.run(ctx, "device", "wifi", "hotspot", "ssid", ssid, "password", password)
	return err
}

func (d *NMDriver) Status(ctx context.Context) bool {
	out, err := d.run(ctx, "-t", "-f", "STATE", "general")
	if err != nil {
		d.Log.Debugf("%s status err=%v", modName, err)
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(out), "connected")
}
