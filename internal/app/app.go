// Package app wires configuration, storage and the TUI together.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/slatehart/logdeck/internal/config"
	"github.com/slatehart/logdeck/internal/console"
	"github.com/slatehart/logdeck/internal/prefs"
	"github.com/slatehart/logdeck/internal/spam"
	"github.com/slatehart/logdeck/internal/ui"
)

// Options configure the logdeck application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/logdeck/prefs.toml
	LogFile    string // overrides the configured log file path
	DemoRate   int    // demo events per second; zero disables the feed
	TickMS     int    // render tick in milliseconds; zero uses default
	Debug      bool   // emit internal diagnostics on stderr
}

// Run boots the logdeck TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.LogFile != "" {
		cfg.LogFile = opts.LogFile
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	// The TUI owns the terminal, so diagnostics are discarded unless
	// debug output was explicitly requested.
	var logger *slog.Logger
	if opts.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	con := console.New(console.Options{
		Capacity: cfg.Capacity,
		FilePath: cfg.LogFile,
		File: console.FileOptions{
			CacheSize:       cfg.FileCacheSize,
			FlushEvery:      cfg.FlushEvery,
			FlushInterval:   time.Duration(cfg.FlushIntervalMS) * time.Millisecond,
			CheckpointEvery: cfg.CheckpointEvery,
		},
		Engine: console.EngineOptions{
			MaxDisplay:       cfg.MaxDisplay,
			LargeThreshold:   cfg.LargeThreshold,
			SearchThreshold:  cfg.SearchThreshold,
			ChunkSize:        cfg.ChunkSize,
			ChunkBudget:      time.Duration(cfg.ChunkBudgetMS) * time.Millisecond,
			MinSearchResults: cfg.MinSearchResults,
		},
		Spam: spam.Options{
			Threshold:          cfg.SpamThreshold,
			Window:             time.Duration(cfg.SpamWindowMS) * time.Millisecond,
			BlockExpire:        time.Duration(cfg.BlockExpireMS) * time.Millisecond,
			MaxTrackedPatterns: cfg.MaxTrackedPatterns,
		},
		Logger: logger,
	})
	defer func() {
		if err := con.Close(); err != nil {
			logger.Error("close console", "error", err)
		}
	}()

	applyPrefs(con, userPrefs)

	var events chan ui.Event
	if opts.DemoRate > 0 {
		events = make(chan ui.Event, 1024)
		StartGenerator(ctx, events, opts.DemoRate)
	}

	tick := time.Duration(opts.TickMS) * time.Millisecond
	return ui.Run(ui.Options{
		Context:   ctx,
		Console:   con,
		Events:    events,
		TickEvery: tick,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		UserPrefs: userPrefs,
	})
}

// applyPrefs seeds the console's filter from persisted preferences.
// Unknown level names are ignored so a stale prefs file cannot block
// startup.
func applyPrefs(con *console.Console, p prefs.Prefs) {
	if p.CaseSensitive {
		con.SetCaseSensitive(true)
	}
	for _, name := range p.HiddenLevels {
		level, err := console.ParseLevel(name)
		if err != nil {
			continue
		}
		con.SetLevelState(level, console.TriExcluded)
	}
}
