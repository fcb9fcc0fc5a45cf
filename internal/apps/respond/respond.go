// Package respond is the voice response application. The microphone
// path runs in the audio codec and backend; this side shows the
// conversation and renders replies pushed over tele.
package respond

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/juju/errors"

	"github.com/mindspring/zhihui/hardware/display"
	"github.com/mindspring/zhihui/internal/types"
	"github.com/mindspring/zhihui/internal/ui"
	"github.com/mindspring/zhihui/log2"
)

const AppID types.AppID = "respond"

const promptIdle = "请说话"
const promptWaiting = "思考中"

type App struct {
	Log     *log2.Log
	screens *ui.Screens
	running uint32

	mu    sync.Mutex
	reply string
	// waiting is true between an utterance event and the backend reply
	waiting bool
}

var _ types.Apper = new(App)

func New(screens *ui.Screens, log *log2.Log) *App {
	a := &App{Log: log, screens: screens}
	screens.Register(ui.AppScreen(AppID), a.build, a.refresh)
	return a
}

func (a *App) build(ctx context.Context, g *display.Guard, f *display.Frame) error {
	f.Icon("mic", display.IconMicrophone)
	f.Label("prompt", promptIdle, 0xffffff)
	f.Label("reply", "", 0x9e9e9e)
	return nil
}

func (a *App) refresh(ctx context.Context, f *display.Frame) {
	a.mu.Lock()
	reply, waiting := a.reply, a.waiting
	a.mu.Unlock()
	f.Get("reply").SetText(reply)
	if waiting {
		f.Get("prompt").SetText(promptWaiting)
	} else {
		f.Get("prompt").SetText(promptIdle)
	}
}

func (a *App) Show(ctx context.Context) error {
	if err := a.screens.Show(ctx, ui.AppScreen(AppID)); err != nil {
		return errors.Annotatef(err, "app=%s", AppID)
	}
	atomic.StoreUint32(&a.running, 1)
	return nil
}

func (a *App) Hide(ctx context.Context) {
	atomic.StoreUint32(&a.running, 0)
	a.screens.Hide(ctx, ui.AppScreen(AppID))
}

func (a *App) Update(ctx context.Context) error { return nil }

func (a *App) IsRunning() bool { return atomic.LoadUint32(&a.running) == 1 }

// OnMessage accepts a backend reply, plain utf-8 text.
func (a *App) OnMessage(ctx context.Context, payload []byte) bool {
	if len(payload) == 0 {
		return false
	}
	a.mu.Lock()
	a.reply = string(payload)
	a.waiting = false
	a.mu.Unlock()
	if !a.IsRunning() {
		// reply arrived after the user left, keep it for next Show
		a.Log.Debugf("app=%s reply while hidden", AppID)
		return true
	}
	if err := a.screens.Mutate(ctx, ui.AppScreen(AppID), func(f *display.Frame) { a.refresh(ctx, f) }); err != nil {
		a.Log.Errorf("app=%s render reply err=%v", AppID, err)
	}
	return true
}

// SetWaiting flips the prompt while the backend is thinking.
func (a *App) SetWaiting(waiting bool) {
	a.mu.Lock()
	a.waiting = waiting
	a.mu.Unlock()
}
