package state

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	gpio "github.com/temoto/gpio-cdev-go"

	"github.com/mindspring/zhihui/hardware/input"
	"github.com/mindspring/zhihui/helpers"
	"github.com/mindspring/zhihui/internal/kvs"
	"github.com/mindspring/zhihui/internal/net"
	"github.com/mindspring/zhihui/internal/tele"
	"github.com/mindspring/zhihui/internal/types"
	"github.com/mindspring/zhihui/log2"
)

type Global struct {
	Alive        *alive.Alive
	BuildVersion string
	Config       *Config
	Hardware     hardware // hardware.go
	KV           *kvs.Store
	Log          *log2.Log
	Tele         *tele.Tele
	Wifi         *net.Manager

	// apps register their backend message handler after Init, so the
	// tele callback dereferences this at call time
	XXX_onMessage atomic.Value // tele.MessageFunc

	_copy_guard sync.Mutex //nolint:unused
}

const ContextKey = "run/state-global"

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

// If `Init` fails, consider `Global` is in broken state.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.Config = cfg

	g.Log.Infof("build version=%s", g.BuildVersion)

	if g.Config.Persist.Root == "" {
		g.Config.Persist.Root = "./tmp-zhihui-db"
		g.Log.Errorf("config: persist.root=empty changed=%s", g.Config.Persist.Root)
	}
	g.Log.Debugf("config: persist.root=%s", g.Config.Persist.Root)

	kv, err := kvs.Open(filepath.Join(g.Config.Persist.Root, "kv"), g.Log)
	if err != nil {
		return errors.Annotate(err, "kvs init")
	}
	g.KV = kv

	// Tele is the remote error reporting mechanism, it goes up before
	// anything else. It gets a Log clone from before SetErrorFunc so
	// Tele's own errors don't recurse.
	if g.Config.Tele.StorePath == "" {
		g.Config.Tele.StorePath = filepath.Join(g.Config.Persist.Root, "tele")
	}
	if g.Tele == nil {
		g.Tele = new(tele.Tele)
	}
	onMessage := func(mctx context.Context, payload []byte) bool {
		if f := g.XXX_onMessage.Load(); f != nil {
			return f.(tele.MessageFunc)(mctx, payload)
		}
		return false
	}
	if err = g.Tele.Init(ctx, g.Log.Clone(log2.LInfo), g.Config.Tele, onMessage); err != nil {
		return errors.Annotate(err, "tele init")
	}
	g.Log.SetErrorFunc(func(e error) {
		g.Tele.Event([]byte("error: " + e.Error()))
	})

	if g.Wifi == nil {
		g.Wifi = net.NewManager(&net.NMDriver{Log: g.Log}, g.KV, g.Log)
	}
	g.Wifi.SetAP(g.Config.Wifi.APSSID, g.Config.Wifi.APPassword)

	const initTasks = 2
	wg := sync.WaitGroup{}
	wg.Add(initTasks)
	errch := make(chan error, initTasks)
	go helpers.WrapErrChan(&wg, errch, g.initDisplay)
	go helpers.WrapErrChan(&wg, errch, g.initInput)
	wg.Wait()
	close(errch)

	return helpers.FoldErrChan(errch)
}

func (g *Global) initDisplay() error {
	_, err := g.Display()
	return err
}

func (g *Global) initInput() error {
	g.Hardware.Input = input.NewDispatch(g.Log.Clone(log2.LDebug), g.Alive.StopChan())
	cfg := &g.Config.Hardware.Buttons
	sources := make([]input.Source, 0, 3)
	if cfg.Enable && cfg.GpioChip != "" {
		chip, err := gpio.Open(cfg.GpioChip, "zhihui-input")
		if err != nil {
			return errors.Annotatef(err, "config: buttons.gpio_chip=%s", cfg.GpioChip)
		}
		power, err := input.NewGpioButtonSource(chip, uint32(cfg.PowerLine), types.KeyPower)
		if err != nil {
			return errors.Annotatef(err, "config: buttons.power_line=%d", cfg.PowerLine)
		}
		boot, err := input.NewGpioButtonSource(chip, uint32(cfg.BootLine), types.KeyBoot)
		if err != nil {
			return errors.Annotatef(err, "config: buttons.boot_line=%d", cfg.BootLine)
		}
		sources = append(sources, power, boot)
	}
	if cfg.Enable && cfg.EvdevDevice != "" {
		src, err := input.NewDevInputEventSource(cfg.EvdevDevice)
		if err != nil {
			// evdev is a convenience source, absence is not fatal
			g.Log.Errorf("config: buttons.evdev_device=%s err=%v", cfg.EvdevDevice, err)
		} else {
			sources = append(sources, src)
		}
	}
	go g.Hardware.Input.Run(sources)
	return nil
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	if err := g.Init(ctx, cfg); err != nil {
		g.Fatal(err)
	}
}

// SetMessageHandler routes backend messages to the app layer.
func (g *Global) SetMessageHandler(f tele.MessageFunc) {
	g.XXX_onMessage.Store(f)
}

func (g *Global) Error(err error, args ...interface{}) {
	if err != nil {
		if len(args) != 0 {
			msg := args[0].(string)
			args = args[1:]
			err = errors.Annotatef(err, msg, args...)
		}
		g.Log.Error(err)
	}
}

func (g *Global) Fatal(err error, args ...interface{}) {
	if err != nil {
		g.Error(err, args...)
		g.StopWait(5 * time.Second)
		g.Log.Fatal(err)
	}
}

func (g *Global) Stop() {
	g.Alive.Stop()
}

func (g *Global) StopWait(timeout time.Duration) bool {
	g.Alive.Stop()
	select {
	case <-g.Alive.WaitChan():
		return true
	case <-time.After(timeout):
		return false
	}
}

// LockTimeout is the bound for every display acquisition outside boot.
func (g *Global) LockTimeout() time.Duration {
	return helpers.IntMillisecondDefault(g.Config.UI.LockTimeoutMs, 5*time.Second)
}

func (g *Global) ServicePeriod() time.Duration {
	return helpers.IntMillisecondDefault(g.Config.UI.ServicePeriodMs, 10*time.Millisecond)
}
