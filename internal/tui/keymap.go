package tui

import (
	"strings"
	"unicode"

	"charm.land/bubbles/v2/key"
)

type keyMap struct {
	quit           key.Binding
	reload         key.Binding
	toggleHelp     key.Binding
	moveLeft       key.Binding
	moveRight      key.Binding
	moveUp         key.Binding
	moveDown       key.Binding
	nextBoard      key.Binding
	prevBoard      key.Binding
	addItem        key.Binding
	itemInfo       key.Binding
	copyID         key.Binding
	deleteItem     key.Binding
	hardDeleteItem key.Binding
	restoreItem    key.Binding
	toggleArchived key.Binding
	moveItemLeft   key.Binding
	moveItemRight  key.Binding
	cancel         key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:       key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "card up")),
		moveDown:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "card down")),
		nextBoard:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next board")),
		prevBoard:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous board")),
		addItem:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new card")),
		itemInfo:       key.NewBinding(key.WithKeys("enter", "i"), key.WithHelp("enter", "card details")),
		copyID:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		deleteItem:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete (default)")),
		hardDeleteItem: key.NewBinding(key.WithKeys("D", "shift+d"), key.WithHelp("D", "hard delete")),
		restoreItem:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "restore card")),
		toggleArchived: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle archived")),
		moveItemLeft:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move card left")),
		moveItemRight:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move card right")),
		cancel:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addItem, k.itemInfo, k.nextBoard, k.moveItemLeft, k.moveItemRight, k.toggleHelp, k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addItem, k.itemInfo, k.copyID, k.toggleArchived, k.toggleHelp, k.reload, k.quit},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.nextBoard, k.prevBoard},
		{k.moveItemLeft, k.moveItemRight, k.cancel, k.deleteItem, k.hardDeleteItem, k.restoreItem},
	}
}

// KeyConfig overrides selected bindings. Blank fields keep the defaults.
type KeyConfig struct {
	AddItem        string
	MoveItemLeft   string
	MoveItemRight  string
	CopyID         string
	ToggleArchived string
}

func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.addItem, cfg.AddItem, "n", "new card")
	configureBinding(&k.moveItemLeft, cfg.MoveItemLeft, "[", "move card left")
	configureBinding(&k.moveItemRight, cfg.MoveItemRight, "]", "move card right")
	configureBinding(&k.copyID, cfg.CopyID, "y", "copy id")
	configureBinding(&k.toggleArchived, cfg.ToggleArchived, "t", "toggle archived")
}

func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, helpKey := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(helpKey, desc)
}

// parseBindingKeys turns a configured key into matcher strings and a help label.
// A single uppercase rune also matches its shift+ form.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = fallback
	}
	if strings.EqualFold(value, "space") {
		return []string{" ", "space"}, "space"
	}
	runes := []rune(value)
	if len(runes) == 1 {
		r := runes[0]
		if unicode.IsUpper(r) {
			return []string{value, "shift+" + string(unicode.ToLower(r))}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}
