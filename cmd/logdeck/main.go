package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/slatehart/logdeck/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	logFile := flag.String("log-file", "", "override persisted log path (optional)")
	demoRate := flag.Int("demo-rate", 0, "feed synthetic log traffic at N events per second")
	tickMS := flag.Int("tick", 0, "render tick in milliseconds (optional, defaults to 100)")
	debug := flag.Bool("debug", false, "emit internal diagnostics on stderr")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		LogFile:    *logFile,
		DemoRate:   *demoRate,
		Debug:      *debug,
	}
	if *tickMS > 0 {
		opts.TickMS = *tickMS
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "logdeck: %v\n", err)
		return 1
	}
	return 0
}
