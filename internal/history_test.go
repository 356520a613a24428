package internal

import (
	"path/filepath"
	"testing"
)

func TestPushHistory(t *testing.T) {
	h := PushHistory(nil, "alpha")
	h = PushHistory(h, "beta")
	if len(h) != 2 || h[0] != "beta" || h[1] != "alpha" {
		t.Fatalf("most recent keyword must lead: %v", h)
	}

	// duplicates are not re-inserted
	h = PushHistory(h, "alpha")
	if len(h) != 2 {
		t.Fatalf("duplicate keyword must not grow the list: %v", h)
	}

	// capped at the limit
	for i := 0; i < historyLimit*2; i++ {
		h = PushHistory(h, string(rune('a'+i%26))+"-kw-"+string(rune('A'+i%26)))
	}
	if len(h) > historyLimit {
		t.Fatalf("history must stay capped at %d, got %d", historyLimit, len(h))
	}
}

func TestHistory_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	want := []string{"foo", "bar baz", "日本語"}
	if err := SaveHistory(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := LoadHistory(path)
	if len(got) != len(want) {
		t.Fatalf("round trip lost entries: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestLoadHistory_MissingOrBroken(t *testing.T) {
	if h := LoadHistory(filepath.Join(t.TempDir(), "none.json")); h != nil {
		t.Error("missing file should yield empty history")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	writeFile(t, path, "{not json")
	if h := LoadHistory(path); h != nil {
		t.Error("broken file should yield empty history")
	}
}
