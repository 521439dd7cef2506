package app

import "testing"

func TestGeneratorProducesValidEvents(t *testing.T) {
	g := newGenerator()
	levels := map[string]struct{}{
		"TRACE": {}, "DEBUG": {}, "INFO": {}, "WARN": {}, "ERROR": {},
	}

	for i := 0; i < 1000; i++ {
		ev := g.next()
		if _, ok := levels[ev.Level]; !ok {
			t.Fatalf("event %d has unknown level %q", i, ev.Level)
		}
		if ev.Category == "" || ev.Message == "" {
			t.Fatalf("event %d missing category or message: %+v", i, ev)
		}
	}
}

func TestGeneratorEmitsBursts(t *testing.T) {
	g := newGenerator()

	identical := 0
	for i := 0; i < 1000; i++ {
		ev := g.next()
		if ev.Message == "socket buffer full, dropping frame" {
			identical++
		}
	}
	// Bursts of 25 open every 311 events: three bursts in 1000.
	if identical < 50 {
		t.Fatalf("saw %d burst messages in 1000 events, want a repeated pattern", identical)
	}
}
