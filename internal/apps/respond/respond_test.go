package respond

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindspring/zhihui/hardware/display"
	"github.com/mindspring/zhihui/internal/ui"
	"github.com/mindspring/zhihui/log2"
)

func newTestApp(t testing.TB) (*App, *ui.Screens, *display.MockEngine) {
	engine := display.NewMockEngine(image.Point{X: 240, Y: 320})
	log := log2.NewTest(t, log2.LDebug)
	screens := ui.NewScreens(display.New(engine, log), 100*time.Millisecond, log)
	return New(screens, log), screens, engine
}

func TestShowHide(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a, screens, _ := newTestApp(t)

	assert.False(t, a.IsRunning())
	require.NoError(t, a.Show(ctx))
	assert.True(t, a.IsRunning())
	assert.Equal(t, ui.AppScreen(AppID), screens.Visible())

	a.Hide(ctx)
	assert.False(t, a.IsRunning())
	assert.Equal(t, ui.None, screens.Visible())
	a.Hide(ctx)
	assert.False(t, a.IsRunning())
}

func TestReplyRendered(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a, screens, _ := newTestApp(t)
	require.NoError(t, a.Show(ctx))
	a.SetWaiting(true)

	require.True(t, a.OnMessage(ctx, []byte("你好")))
	var reply, prompt string
	require.NoError(t, screens.Mutate(ctx, ui.AppScreen(AppID), func(f *display.Frame) {
		reply = f.Get("reply").Text()
		prompt = f.Get("prompt").Text()
	}))
	assert.Equal(t, "你好", reply)
	assert.Equal(t, promptIdle, prompt)
}

func TestReplyWhileHidden(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a, screens, engine := newTestApp(t)
	require.True(t, a.OnMessage(ctx, []byte("稍后")))
	assert.Empty(t, engine.Loads())

	// kept reply shows up on next Show
	require.NoError(t, a.Show(ctx))
	var reply string
	require.NoError(t, screens.Mutate(ctx, ui.AppScreen(AppID), func(f *display.Frame) {
		reply = f.Get("reply").Text()
	}))
	assert.Equal(t, "稍后", reply)
}

func TestEmptyMessage(t *testing.T) {
	t.Parallel()
	a, _, _ := newTestApp(t)
	assert.False(t, a.OnMessage(context.Background(), nil))
}
