package tui

import (
	"testing"

	"charm.land/bubbles/v2/key"
)

// TestParseBindingKeys verifies key parsing for configured overrides.
func TestParseBindingKeys(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		fallback string
		wantKeys []string
		wantHelp string
	}{
		{name: "space aliases", raw: "space", fallback: "n", wantKeys: []string{" ", "space"}, wantHelp: "space"},
		{name: "uppercase rune adds shift alias", raw: "A", fallback: "n", wantKeys: []string{"A", "shift+a"}, wantHelp: "A"},
		{name: "multi rune lowercases matcher", raw: "Ctrl+N", fallback: "n", wantKeys: []string{"ctrl+n"}, wantHelp: "Ctrl+N"},
		{name: "blank uses fallback", raw: "  ", fallback: "]", wantKeys: []string{"]"}, wantHelp: "]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			keys, help := parseBindingKeys(tc.raw, tc.fallback)
			if len(keys) != len(tc.wantKeys) {
				t.Fatalf("keys = %#v, want %#v", keys, tc.wantKeys)
			}
			for i := range keys {
				if keys[i] != tc.wantKeys[i] {
					t.Fatalf("keys = %#v, want %#v", keys, tc.wantKeys)
				}
			}
			if help != tc.wantHelp {
				t.Fatalf("help = %q, want %q", help, tc.wantHelp)
			}
		})
	}
}

// TestConfigureBinding verifies override application on one binding.
func TestConfigureBinding(t *testing.T) {
	b := key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "old"))
	configureBinding(&b, "a", "n", "new card")
	if keys := b.Keys(); len(keys) != 1 || keys[0] != "a" {
		t.Fatalf("unexpected configured keys %#v", keys)
	}
	if b.Help().Key != "a" || b.Help().Desc != "new card" {
		t.Fatalf("unexpected configured help %#v", b.Help())
	}
}

// TestKeyMapApplyConfig verifies overrides land on the right bindings and blanks keep defaults.
func TestKeyMapApplyConfig(t *testing.T) {
	k := newKeyMap()
	k.applyConfig(KeyConfig{MoveItemLeft: "<", MoveItemRight: ">", CopyID: "C"})

	assertKeys := func(name string, binding key.Binding, expected ...string) {
		t.Helper()
		got := binding.Keys()
		if len(got) != len(expected) {
			t.Fatalf("%s keys = %#v, want %#v", name, got, expected)
		}
		for i := range expected {
			if got[i] != expected[i] {
				t.Fatalf("%s keys = %#v, want %#v", name, got, expected)
			}
		}
	}
	assertKeys("move left", k.moveItemLeft, "<")
	assertKeys("move right", k.moveItemRight, ">")
	assertKeys("copy id", k.copyID, "C", "shift+c")
	assertKeys("add item", k.addItem, "n")
	assertKeys("toggle archived", k.toggleArchived, "t")
}

// TestKeyMapHelpGroups verifies every binding is reachable from the full help.
func TestKeyMapHelpGroups(t *testing.T) {
	k := newKeyMap()
	total := 0
	for _, group := range k.FullHelp() {
		total += len(group)
	}
	if total != 19 {
		t.Fatalf("full help bindings = %d, want 19", total)
	}
	if len(k.ShortHelp()) == 0 {
		t.Fatal("expected short help bindings")
	}
}
