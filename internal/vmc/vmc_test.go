package vmc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindspring/zhihui/hardware/display"
	"github.com/mindspring/zhihui/internal/apps/mindmate"
	"github.com/mindspring/zhihui/internal/apps/respond"
	state_new "github.com/mindspring/zhihui/internal/state/new"
	"github.com/mindspring/zhihui/internal/types"
	"github.com/mindspring/zhihui/internal/ui"
)

const testConf = `
ui {
  lock_timeout_ms = 500
  service_period_ms = 5
}
`

func bootedSystem(t testing.TB) (context.Context, *System, *display.MockEngine, func()) {
	ctx, g, engine := state_new.NewTestContext(t, testConf)
	sys, err := New(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- sys.BootTask(ctx) }()

	select {
	case <-sys.WaitReady():
	case <-time.After(5 * time.Second):
		t.Fatal("boot did not finish")
	}
	cleanup := func() {
		g.Stop()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("boot task did not stop")
		}
	}
	return ctx, sys, engine, cleanup
}

func TestBootSequence(t *testing.T) {
	t.Parallel()
	ctx, sys, engine, cleanup := bootedSystem(t)
	defer cleanup()

	assert.True(t, sys.Ready())
	assert.Equal(t, ui.Standby, sys.UI().Visible())

	loads := engine.Loads()
	require.NotEmpty(t, loads)
	assert.Equal(t, "loading", loads[0])
	assert.Equal(t, "standby", loads[len(loads)-1])

	// progress ended at 100
	var value int
	require.NoError(t, sys.UI().Mutate(ctx, ui.Loading, func(f *display.Frame) {
		value = f.Get("progress").Value()
	}))
	assert.Equal(t, 100, value)
}

func TestButtonsToggle(t *testing.T) {
	t.Parallel()
	ctx, sys, _, cleanup := bootedSystem(t)
	defer cleanup()

	press := types.InputEvent{Source: "test", Key: types.KeyPower, Up: true}
	sys.onInput(ctx, press)
	assert.Equal(t, ui.Launcher, sys.UI().Visible())

	// boot button toggles the same way
	press.Key = types.KeyBoot
	sys.onInput(ctx, press)
	assert.Equal(t, ui.Standby, sys.UI().Visible())

	// non-press edges are ignored
	sys.onInput(ctx, types.InputEvent{Source: "test", Key: types.KeyPower})
	assert.Equal(t, ui.Standby, sys.UI().Visible())
}

func TestLaunchAndLeaveApp(t *testing.T) {
	t.Parallel()
	ctx, sys, _, cleanup := bootedSystem(t)
	defer cleanup()

	sys.launch(ctx, respond.AppID)
	assert.Equal(t, ui.AppScreen(respond.AppID), sys.UI().Visible())
	assert.True(t, sys.Registry().IsRunning(respond.AppID))

	// any button leaves the app back to standby
	sys.onInput(ctx, types.InputEvent{Source: "test", Key: types.KeyPower, Up: true})
	assert.Equal(t, ui.Standby, sys.UI().Visible())
	assert.False(t, sys.Registry().IsRunning(respond.AppID))
}

func TestLauncherClickQueues(t *testing.T) {
	t.Parallel()
	ctx, sys, _, cleanup := bootedSystem(t)
	defer cleanup()

	require.NoError(t, sys.UI().Show(ctx, ui.Launcher))
	require.True(t, ui.ClickLauncher(ctx, sys.UI(), mindmate.AppID))

	select {
	case f := <-sys.uiq:
		f(ctx)
	case <-time.After(time.Second):
		t.Fatal("launch was not queued")
	}
	assert.Equal(t, ui.AppScreen(mindmate.AppID), sys.UI().Visible())
	assert.True(t, sys.Registry().IsRunning(mindmate.AppID))
}

func TestTeleMessageRouting(t *testing.T) {
	t.Parallel()
	ctx, sys, _, cleanup := bootedSystem(t)
	defer cleanup()

	sys.launch(ctx, respond.AppID)
	assert.True(t, sys.onTeleMessage(ctx, []byte("回答")))
	assert.False(t, sys.onTeleMessage(ctx, nil))
}

func TestServiceStops(t *testing.T) {
	t.Parallel()
	ctx, g, _ := state_new.NewTestContext(t, testConf)
	sys, err := New(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- sys.ServiceTask(ctx) }()

	// never became ready, stop must still unblock the task
	g.Stop()
	select {
	case serr := <-done:
		assert.NoError(t, serr)
	case <-time.After(5 * time.Second):
		t.Fatal("service task did not stop")
	}
}

func TestServiceTick(t *testing.T) {
	t.Parallel()
	ctx, sys, engine, cleanup := bootedSystem(t)
	defer cleanup()

	before := len(engine.Loads())
	sys.UI().UpdatePeriod = 0
	sys.tick(ctx)
	assert.Greater(t, len(engine.Loads()), before)
}
