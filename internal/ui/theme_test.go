package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 2 {
		t.Fatalf("ThemeNames() returned %d names, want 2", len(names))
	}
	if names[0] != "Midnight" || names[1] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Midnight Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Midnight"); got != "Slate" {
		t.Fatalf("NextTheme(Midnight) = %q, want Slate", got)
	}
	if got := NextTheme("Slate"); got != "Midnight" {
		t.Fatalf("NextTheme(Slate) = %q, want Midnight", got)
	}
	if got := NextTheme("Unknown"); got != "Midnight" {
		t.Fatalf("NextTheme(Unknown) = %q, want Midnight", got)
	}
}

func TestGetTheme_FallsBackToMidnight(t *testing.T) {
	if got := GetTheme("Slate"); got.Name != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", got.Name)
	}
	if got := GetTheme("Unknown"); got.Name != "Midnight" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Midnight (fallback)", got.Name)
	}
}

func TestLevelStyleKnownLevels(t *testing.T) {
	styles := midnightTheme().Styles()
	for _, level := range []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"} {
		if midnightTheme().LevelColors[level] == "" {
			t.Fatalf("theme has no color for level %s", level)
		}
		// LevelStyle must not panic and must render text back out.
		if got := styles.LevelStyle(level).Render(level); got == "" {
			t.Fatalf("LevelStyle(%s) rendered empty", level)
		}
	}
}
