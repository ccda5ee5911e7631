package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	for _, name := range names {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%q).Name = %q", name, got)
		}
	}
}

func TestNextTheme(t *testing.T) {
	names := ThemeNames()
	for i, name := range names {
		want := names[(i+1)%len(names)]
		if got := NextTheme(name); got != want {
			t.Fatalf("NextTheme(%q) = %q, want %q", name, got, want)
		}
	}
	if got := NextTheme("Unknown"); got != names[0] {
		t.Fatalf("NextTheme(Unknown) = %q, want %q", got, names[0])
	}
}

func TestGetTheme_UnknownFallsBack(t *testing.T) {
	if got := GetTheme("nope").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(nope) = %q, want Nightfox", got)
	}
}

func TestStatusColors(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, status := range []string{"connected", "scanning", "disconnected", "synced", "pending", "capturing"} {
			if th.StatusColors[status] == "" {
				t.Fatalf("theme %s has no color for %s", name, status)
			}
		}
		styles := th.Styles()
		if got := styles.StatusColor("missing"); string(got) != th.Muted {
			t.Fatalf("StatusColor(missing) = %q, want muted %q", got, th.Muted)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"abcdefghij", 8, "abcde..."},
		{"abcdef", 3, "abc"},
		{"日本語のテキスト", 6, "日本語..."},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestTruncateMiddle(t *testing.T) {
	if got := truncateMiddle("http://192.168.100.200:31010", 15); got != "http://…0:31010" {
		t.Fatalf("truncateMiddle = %q, want %q", got, "http://…0:31010")
	}
	if got := truncateMiddle("short", 15); got != "short" {
		t.Fatalf("truncateMiddle(short) = %q", got)
	}
}

func TestSingleLine(t *testing.T) {
	if got := singleLine("a\n\tb   c\r\n"); got != "a b c" {
		t.Fatalf("singleLine = %q, want %q", got, "a b c")
	}
}
