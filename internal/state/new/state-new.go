// Sorry, workaround to import cycles.
package state_new

import (
	"context"
	"image"
	"os"
	"strings"
	"testing"

	"github.com/temoto/alive/v2"

	"github.com/mindspring/zhihui/hardware/display"
	"github.com/mindspring/zhihui/internal/state"
	"github.com/mindspring/zhihui/internal/tele"
	"github.com/mindspring/zhihui/log2"
)

func NewContext(log *log2.Log) (context.Context, *state.Global) {
	if log == nil {
		panic("code error NewContext() log=nil")
	}

	g := &state.Global{
		Alive: alive.NewAlive(),
		Log:   log,
		Tele:  new(tele.Tele),
	}
	ctx := context.Background()
	ctx = context.WithValue(ctx, log2.ContextKey, log)
	ctx = context.WithValue(ctx, state.ContextKey, g)

	return ctx, g
}

// NewTestContext boots a Global from an inline config string with a
// mock display engine wired in. Returns the engine for assertions.
func NewTestContext(t testing.TB, confString string) (context.Context, *state.Global, *display.MockEngine) {
	var log *log2.Log
	if os.Getenv("zhihui_test_log_stderr") == "1" {
		log = log2.NewStderr(log2.LDebug) // useful with panics
	} else {
		log = log2.NewTest(t, log2.LDebug)
	}
	log.SetFlags(log2.LTestFlags)
	ctx, g := NewContext(log)
	g.BuildVersion = "test"

	engine := display.NewMockEngine(image.Point{X: 240, Y: 320})
	engine.SetReady(true)
	g.Hardware.Display.D = display.New(engine, log)

	cfg := state.MustReadConfig(strings.NewReader(confString), log)
	if cfg.Persist.Root == "" {
		cfg.Persist.Root = t.TempDir()
	}
	g.MustInit(ctx, cfg)

	return ctx, g, engine
}
