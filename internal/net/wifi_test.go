package net

import (
	"context"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindspring/zhihui/internal/kvs"
	"github.com/mindspring/zhihui/log2"
)

type scriptDriver struct {
	good     map[string]string // ssid -> password that connects
	apErr    error
	apSSID   string
	connects []string
	online   bool
}

func (d *scriptDriver) Connect(ctx context.Context, ssid, password string) error {
	d.connects = append(d.connects, ssid)
	if pass, ok := d.good[ssid]; ok && pass == password {
		d.online = true
		return nil
	}
	return errors.Timeoutf("connect ssid=%s", ssid)
}

func (d *scriptDriver) StartAP(ctx context.Context, ssid, password string) error {
	if d.apErr != nil {
		return d.apErr
	}
	d.apSSID = ssid
	return nil
}

func (d *scriptDriver) Status(ctx context.Context) bool { return d.online }

func testStore(t testing.TB) *kvs.Store {
	s, err := kvs.Open(t.TempDir(), log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)
	return s
}

func TestBootSavedCredentials(t *testing.T) {
	t.Parallel()
	kv := testStore(t)
	require.NoError(t, kv.Set(KeySSID, "home"))
	require.NoError(t, kv.Set(KeyPassword, "secret"))
	drv := &scriptDriver{good: map[string]string{"home": "secret"}}
	m := NewManager(drv, kv, log2.NewTest(t, log2.LDebug))

	require.NoError(t, m.ConnectBoot(context.Background()))
	assert.Equal(t, ModeStation, m.Mode())
	assert.True(t, m.IsConnected())
	assert.Equal(t, []string{"home"}, drv.connects)
}

func TestBootFallbackPersists(t *testing.T) {
	t.Parallel()
	kv := testStore(t)
	require.NoError(t, kv.Set(KeySSID, "stale"))
	require.NoError(t, kv.Set(KeyPassword, "wrong"))
	drv := &scriptDriver{good: map[string]string{FallbackSSID: FallbackPassword}}
	m := NewManager(drv, kv, log2.NewTest(t, log2.LDebug))

	require.NoError(t, m.ConnectBoot(context.Background()))
	assert.Equal(t, ModeStation, m.Mode())
	assert.True(t, m.IsConnected())
	assert.Equal(t, []string{"stale", FallbackSSID}, drv.connects)
	// credentials that worked replace the stale ones
	assert.Equal(t, FallbackSSID, kv.GetString(KeySSID, ""))
	assert.Equal(t, FallbackPassword, kv.GetString(KeyPassword, ""))
}

func TestBootAPMode(t *testing.T) {
	t.Parallel()
	drv := &scriptDriver{}
	m := NewManager(drv, testStore(t), log2.NewTest(t, log2.LDebug))

	require.NoError(t, m.ConnectBoot(context.Background()))
	assert.Equal(t, ModeAP, m.Mode())
	assert.False(t, m.IsConnected())
	assert.Equal(t, DefaultAPSSID, drv.apSSID)
	assert.Contains(t, m.APPayload(), "WIFI:S:"+DefaultAPSSID)
}

func TestBootAPFailed(t *testing.T) {
	t.Parallel()
	drv := &scriptDriver{apErr: errors.New("radio gone")}
	m := NewManager(drv, testStore(t), log2.NewTest(t, log2.LDebug))

	err := m.ConnectBoot(context.Background())
	require.Error(t, err)
	assert.Equal(t, ModeOff, m.Mode())
}

func TestHandleStatus(t *testing.T) {
	t.Parallel()
	drv := &scriptDriver{good: map[string]string{FallbackSSID: FallbackPassword}}
	m := NewManager(drv, testStore(t), log2.NewTest(t, log2.LDebug))
	require.NoError(t, m.ConnectBoot(context.Background()))
	require.True(t, m.IsConnected())

	// first Handle after boot always polls the driver
	drv.online = false
	m.Handle(context.Background())
	assert.False(t, m.IsConnected())
}
