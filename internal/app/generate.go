package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/slatehart/logdeck/internal/ui"
)

const defaultDemoRate = 20 // events per second

// StartGenerator launches a background goroutine that feeds synthetic
// log traffic into the events channel at a fixed cadence. It returns
// immediately.
func StartGenerator(ctx context.Context, out chan<- ui.Event, perSecond int) {
	if perSecond <= 0 {
		perSecond = defaultDemoRate
	}
	interval := time.Second / time.Duration(perSecond)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		g := newGenerator()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			select {
			case out <- g.next():
			default:
				// UI is behind; drop instead of blocking the ticker.
			}
		}
	}()
}

type generator struct {
	n         int
	burstLeft int
}

func newGenerator() *generator { return &generator{} }

var demoSources = []struct {
	category string
	level    string
	messages []string
}{
	{"Net", "INFO", []string{
		"connection established to peer %d",
		"received packet seq=%d",
		"round trip time %d ms",
	}},
	{"Net", "WARN", []string{
		"retransmit for packet seq=%d",
		"peer %d slow to acknowledge",
	}},
	{"Render", "DEBUG", []string{
		"frame %d drawn",
		"texture atlas rebuilt, %d tiles",
	}},
	{"Render", "ERROR", []string{
		"shader compilation failed, unit %d",
	}},
	{"Audio", "INFO", []string{
		"mixing channel %d",
		"buffer refill at sample %d",
	}},
	{"Physics", "TRACE", []string{
		"step %d integrated",
	}},
	{"Save", "INFO", []string{
		"autosave slot %d written",
	}},
}

// next produces one event. Every so often it opens a burst of
// identical warnings so rate limiting has something to chew on.
func (g *generator) next() ui.Event {
	g.n++

	if g.burstLeft > 0 {
		g.burstLeft--
		return ui.Event{
			Level:    "WARN",
			Category: "Net",
			Message:  "socket buffer full, dropping frame",
			Data:     map[string]any{"socket": 7},
		}
	}
	if g.n%311 == 0 {
		g.burstLeft = 25
	}

	src := demoSources[rand.IntN(len(demoSources))]
	msg := src.messages[rand.IntN(len(src.messages))]
	return ui.Event{
		Level:    src.level,
		Category: src.category,
		Message:  fmt.Sprintf(msg, g.n),
		Data:     map[string]any{"tick": g.n},
	}
}
