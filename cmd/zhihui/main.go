package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/temoto/alive/v2"

	"github.com/mindspring/zhihui/internal/state"
	"github.com/mindspring/zhihui/internal/vmc"
	"github.com/mindspring/zhihui/log2"
)

// BuildVersion is overridden by the build script via ldflags.
var BuildVersion = "unknown"

func main() {
	flagConfig := flag.String("config", "zhihui.hcl", "")
	flagVersion := flag.Bool("version", false, "")
	flag.Parse()
	if *flagVersion {
		fmt.Println(BuildVersion)
		return
	}

	logger := log2.NewStderr(log2.LDebug)
	if sdnotify("READY=0\nSTATUS=starting") {
		// under systemd, journal adds timestamps
		logger.SetFlags(log2.LServiceFlags)
	} else {
		logger.SetFlags(log2.LInteractiveFlags)
	}
	logger.Infof("zhihui version=%s", BuildVersion)

	g := &state.Global{
		Alive:        alive.NewAlive(),
		BuildVersion: BuildVersion,
		Log:          logger,
	}
	ctx := context.Background()
	ctx = context.WithValue(ctx, log2.ContextKey, logger)
	ctx = context.WithValue(ctx, state.ContextKey, g)

	config := state.MustReadConfigFile(*flagConfig, logger)
	g.MustInit(ctx, config)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Infof("term signal")
		g.Tele.Close()
		g.Stop()
	}()

	sys, err := vmc.New(ctx)
	if err != nil {
		g.Fatal(errors.Annotate(err, "vmc new"))
	}

	go func() {
		if berr := sys.BootTask(ctx); berr != nil {
			g.Error(berr, "boot task")
		}
	}()
	go func() {
		if serr := sys.ServiceTask(ctx); serr != nil {
			g.Error(serr, "service task")
		}
	}()

	select {
	case <-sys.WaitReady():
		sdnotify(daemon.SdNotifyReady)
		logger.Infof("init complete, running")
	case <-g.Alive.StopChan():
	}

	g.Alive.Wait()
	logger.Infof("stopped")
}

func sdnotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
