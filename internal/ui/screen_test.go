package ui

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindspring/zhihui/hardware/display"
	"github.com/mindspring/zhihui/log2"
)

func newTestScreens(t testing.TB) (*Screens, *display.MockEngine) {
	engine := display.NewMockEngine(image.Point{X: 240, Y: 320})
	log := log2.NewTest(t, log2.LDebug)
	return NewScreens(display.New(engine, log), 100*time.Millisecond, log), engine
}

func TestShowSequence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, engine := newTestScreens(t)
	RegisterLoading(s)
	RegisterStandby(s, StandbyData{})

	require.NoError(t, s.Show(ctx, Loading))
	assert.Equal(t, Loading, s.Visible())
	require.NoError(t, s.Show(ctx, Standby))
	assert.Equal(t, Standby, s.Visible())
	assert.Equal(t, []string{"loading", "standby"}, engine.Loads())

	// showing the visible screen is a no-op
	require.NoError(t, s.Show(ctx, Standby))
	assert.Equal(t, []string{"loading", "standby"}, engine.Loads())
}

func TestShowUnknown(t *testing.T) {
	t.Parallel()
	s, _ := newTestScreens(t)
	err := s.Show(context.Background(), Standby)
	assert.Error(t, err)
}

func TestBuildOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestScreens(t)
	RegisterLoading(s)
	builds := 0
	s.Register(Standby, func(ctx context.Context, g *display.Guard, f *display.Frame) error {
		builds++
		f.Label("x", "x", colorWhite)
		return nil
	}, nil)

	require.NoError(t, s.Show(ctx, Standby))
	require.NoError(t, s.Show(ctx, Loading))
	require.NoError(t, s.Show(ctx, Standby))
	assert.Equal(t, 1, builds)
}

func TestShowSurfaceNotReady(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, engine := newTestScreens(t)
	builds := 0
	s.Register(Standby, func(ctx context.Context, g *display.Guard, f *display.Frame) error {
		builds++
		return nil
	}, nil)

	engine.SetReady(false)
	err := s.Show(ctx, Standby)
	require.Error(t, err)
	assert.True(t, display.IsUnavailable(err))
	assert.Equal(t, 0, builds)
	assert.Equal(t, None, s.Visible())

	// engine came up, retry builds from scratch
	engine.SetReady(true)
	require.NoError(t, s.Show(ctx, Standby))
	assert.Equal(t, 1, builds)
}

func TestHideIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestScreens(t)
	RegisterStandby(s, StandbyData{})

	s.Hide(ctx, Standby) // not visible yet
	require.NoError(t, s.Show(ctx, Standby))
	s.Hide(ctx, Standby)
	assert.Equal(t, None, s.Visible())
	s.Hide(ctx, Standby)
	assert.Equal(t, None, s.Visible())
}

func TestUpdateThrottle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestScreens(t)
	updates := 0
	s.Register(Standby, func(ctx context.Context, g *display.Guard, f *display.Frame) error {
		f.Label("x", "x", colorWhite)
		return nil
	}, func(ctx context.Context, f *display.Frame) {
		updates++
	})

	require.NoError(t, s.Show(ctx, Standby))
	assert.Equal(t, 1, updates) // Show refreshes before first paint

	require.NoError(t, s.Update(ctx)) // within throttle window
	assert.Equal(t, 1, updates)

	s.UpdatePeriod = 0
	require.NoError(t, s.Update(ctx))
	assert.Equal(t, 2, updates)
}

func TestUpdateNothingVisible(t *testing.T) {
	t.Parallel()
	s, engine := newTestScreens(t)
	require.NoError(t, s.Update(context.Background()))
	assert.Empty(t, engine.Loads())
}

func TestBootProgress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, engine := newTestScreens(t)
	RegisterLoading(s)
	require.NoError(t, s.Show(ctx, Loading))

	require.NoError(t, SetBootProgress(ctx, s, 40, "rtc"))
	var value int
	var status string
	require.NoError(t, s.Mutate(ctx, Loading, func(f *display.Frame) {
		value = f.Get("progress").Value()
		status = f.Get("status").Text()
	}))
	assert.Equal(t, 40, value)
	assert.Equal(t, "rtc", status)
	// show + progress + inspect mutate while visible
	assert.Len(t, engine.Loads(), 3)
}

func TestStandbyContent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestScreens(t)
	level := 60
	RegisterStandby(s, StandbyData{
		Time:            func() string { return "14:25:09" },
		BatteryLevel:    func() int { return level },
		BatteryCharging: func() bool { return false },
		WifiConnected:   func() bool { return true },
	})
	require.NoError(t, s.Show(ctx, Standby))

	check := func(wantText string, wantColor uint32, wantIcon display.IconKind) {
		require.NoError(t, s.Mutate(ctx, Standby, func(f *display.Frame) {
			assert.Equal(t, "14:25:09", f.Get("time").Text())
			assert.Equal(t, wantText, f.Get("battery").Text())
			assert.Equal(t, wantColor, f.Get("battery").Color())
			assert.Equal(t, wantIcon, f.Get("battery-icon").Icon())
			assert.Equal(t, display.IconWifiConnected, f.Get("wifi").Icon())
		}))
	}
	check("60%", uint32(colorGreen), display.IconBatteryFull)

	level = 30
	s.UpdatePeriod = 0
	require.NoError(t, s.Update(ctx))
	check("30%", uint32(colorYellow), display.IconBatteryMedium)

	level = 10
	require.NoError(t, s.Update(ctx))
	check("10%", uint32(colorRed), display.IconBatteryLow)
}

func TestStandbyAPQR(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestScreens(t)
	RegisterStandby(s, StandbyData{
		APPayload: func() string { return "WIFI:S:ZhiHui-Setup;T:WPA;P:zhihui123;;" },
	})
	require.NoError(t, s.Show(ctx, Standby))
	require.NoError(t, s.Mutate(ctx, Standby, func(f *display.Frame) {
		require.NotNil(t, f.Get("ap-qr"))
		assert.NotNil(t, f.Get("ap-qr").QR())
		assert.Equal(t, "扫码配网", f.Get("status").Text())
	}))
}

func TestLauncherClick(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestScreens(t)
	selected := ""
	RegisterLauncher(s, []LauncherEntry{
		{ID: "respond", Label: "智回", Icon: display.IconMicrophone, OnSelect: func() { selected = "respond" }},
		{ID: "mindmate", Label: "MindMate", Icon: display.IconSettings, OnSelect: func() { selected = "mindmate" }},
	})
	require.NoError(t, s.Show(ctx, Launcher))

	assert.True(t, ClickLauncher(ctx, s, "respond"))
	assert.Equal(t, "respond", selected)
	assert.False(t, ClickLauncher(ctx, s, "absent"))
}
