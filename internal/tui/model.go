package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/hylla/fieldboard/internal/app"
	"github.com/hylla/fieldboard/internal/board"
	"github.com/hylla/fieldboard/internal/domain"
)

// Service is the slice of the application service the board needs.
type Service interface {
	ListBoards(context.Context) ([]domain.Board, error)
	BoardLanes(context.Context, string, bool) (app.BoardLanes, error)
	CreateItem(context.Context, app.CreateItemInput) (domain.Item, error)
	MoveItem(context.Context, string, string) (app.MoveResult, error)
	DeleteItem(context.Context, string, app.DeleteMode) error
	RestoreItem(context.Context, string) (domain.Item, error)
}

// inputMode represents a selectable mode.
type inputMode int

const (
	modeNone inputMode = iota
	modeAddItem
	modeItemInfo
)

var (
	archivedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	mutedColor    = lipgloss.Color("241")
	dimColor      = lipgloss.Color("239")
)

// BoardsChangedMsg tells the model the board templates were reloaded and synced.
type BoardsChangedMsg struct {
	Err error
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	boards        []domain.Board
	selectedBoard int
	lanes         app.BoardLanes
	err           error
}

// actionMsg reports the outcome of a mutation.
type actionMsg struct {
	err         error
	status      string
	reload      bool
	focusItemID string
}

// statusChange is one drop reported by the drag coordinator.
type statusChange struct {
	itemID string
	status string
}

// dropQueue collects status changes fired during Release so Update can apply them.
type dropQueue struct {
	pending []statusChange
}

func (q *dropQueue) push(itemID, status string) {
	q.pending = append(q.pending, statusChange{itemID: itemID, status: status})
}

func (q *dropQueue) drain() []statusChange {
	out := q.pending
	q.pending = nil
	return out
}

// Model is the interactive board.
type Model struct {
	svc Service
	log Logger

	ready  bool
	width  int
	height int
	err    error
	status string
	help   help.Model
	keys   keyMap

	boards         []domain.Board
	selectedBoard  int
	pendingBoardID string
	lanes          app.BoardLanes
	selectedColumn int
	selectedItem   int
	pendingFocusID string
	showArchived   bool

	display   DisplayConfig
	renderers map[domain.BoardKind]CardRenderer

	activation board.Activation
	drag       *board.DragCoordinator
	drops      *dropQueue

	mode     inputMode
	input    textinput.Model
	md       *markdownRenderer
	copyText func(string) error

	defaultDeleteMode app.DeleteMode
	warnedUnassigned  map[string]struct{}
}

// NewModel constructs the board model over svc.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:               svc,
		log:               nopLogger{},
		status:            "loading...",
		help:              h,
		keys:              newKeyMap(),
		display:           DefaultDisplayConfig(),
		renderers:         DefaultCardRenderers(),
		activation:        board.DefaultActivation(),
		drops:             &dropQueue{},
		input:             newModalInput("title: ", "new card title", "", 160),
		md:                &markdownRenderer{},
		copyText:          clipboard.WriteAll,
		defaultDeleteMode: app.DeleteModeArchive,
		warnedUnassigned:  map[string]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.drag = board.NewDragCoordinator(m.drops.push, board.WithActivation(m.activation))
	return m
}

func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// Init loads the first board.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.boards = msg.boards
		m.selectedBoard = msg.selectedBoard
		m.lanes = msg.lanes
		m.pendingBoardID = ""
		m.warnUnassigned()
		m.clampSelections()
		if m.pendingFocusID != "" {
			m.focusItem(m.pendingFocusID)
			m.pendingFocusID = ""
		}
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.err != nil {
			m.status = msg.err.Error()
			m.log.Warn("board action failed", "err", msg.err)
		}
		if msg.focusItemID != "" {
			m.pendingFocusID = msg.focusItemID
		}
		if msg.reload {
			return m, m.loadData
		}
		return m, nil

	case BoardsChangedMsg:
		if msg.Err != nil {
			m.status = "config reload failed: " + msg.Err.Error()
			return m, nil
		}
		m.status = "config reloaded"
		m.drag.Cancel()
		return m, m.loadData

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		if m.mode == modeAddItem {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// View renders the board.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// render builds the full frame as text.
func (m Model) render() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n\npress r to retry • q quit\n"
	}
	if !m.ready {
		return "loading..."
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dimColor)
	if len(m.boards) == 0 {
		return strings.Join([]string{
			titleStyle.Render("fieldboard"),
			"",
			"No boards configured.",
			"Add a [[boards]] table to the config file, then press r.",
			"Press q to quit.",
		}, "\n")
	}

	b := m.lanes.Board
	header := titleStyle.Render("fieldboard") + "  " + b.Name + statusStyle.Render("  ["+string(b.Kind)+"]")
	if m.showArchived {
		header += statusStyle.Render("  showing archived")
	}
	if id, ok := m.drag.Dragging(); ok {
		if item, found := m.itemByID(id); found {
			header += statusStyle.Render("  dragging: " + truncate(item.Title, 32))
		}
	}

	lanes := m.visibleLanes()
	views := make([]string, 0, len(lanes))
	for idx, lane := range lanes {
		views = append(views, m.renderLane(idx, lane))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, views...)

	sections := []string{header, m.renderBoardTabs(), "", body}
	status := ""
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		status = m.status
	}
	sections = append(sections, statusStyle.Render(status))
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(mutedColor).
		BorderTop(true).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	full := content + "\n" + helpLine

	frameHeight := lipgloss.Height(full)
	if m.height > 0 {
		frameHeight = m.height
	}
	if card, at, ok := m.dragOverlay(); ok {
		full = layerAt(full, card, at.X, at.Y, max(1, m.width), max(1, frameHeight))
	}
	overlay := m.renderModeOverlay(m.width - 8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(m.width - 8)
	}
	if overlay != "" {
		full = overlayOnContent(full, overlay, max(1, m.width), max(1, frameHeight))
	}
	return full
}

// dragOverlay returns the floating card and where its top-left corner goes.
func (m Model) dragOverlay() (string, board.Point, bool) {
	id, ok := m.drag.Dragging()
	if !ok {
		return "", board.Point{}, false
	}
	at, _ := m.drag.Overlay()
	item, found := m.itemByID(id)
	if !found {
		return "", board.Point{}, false
	}
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("212")).
		Padding(0, 1).
		Render(m.cardFor(m.lanes.Board.Kind)(item, m.cardWidth()))
	x := clamp(at.X-cardGutter, 0, max(0, m.width-lipgloss.Width(card)))
	y := clamp(at.Y, 0, max(0, m.height-lipgloss.Height(card)))
	return card, board.Point{X: x, Y: y}, true
}

func (m Model) renderBoardTabs() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(headerColor(""))
	inactive := lipgloss.NewStyle().Foreground(dimColor)
	parts := make([]string, 0, len(m.boards))
	for idx, b := range m.boards {
		if idx == m.selectedBoard {
			parts = append(parts, active.Render("["+b.Name+"]"))
			continue
		}
		parts = append(parts, inactive.Render(b.Name))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderHelpOverlay(maxWidth int) string {
	width := clamp(maxWidth, 48, 96)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(headerColor("")).Render("fieldboard help"),
		"",
		hb.View(m.keys),
		"",
		lipgloss.NewStyle().Foreground(mutedColor).Render("drag a card with the mouse to change its status • esc cancels a drag"),
		lipgloss.NewStyle().Foreground(mutedColor).Render("press ? or esc to close"),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderModeOverlay(maxWidth int) string {
	switch m.mode {
	case modeAddItem:
		column := "first column"
		if lane, ok := m.currentLane(); ok && !lane.unassigned {
			column = lane.column.Title
		}
		lines := []string{
			lipgloss.NewStyle().Bold(true).Foreground(headerColor("")).Render("New card in " + column),
			m.input.View(),
			lipgloss.NewStyle().Foreground(mutedColor).Render("enter save • esc cancel"),
		}
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimColor).
			Padding(0, 1).
			Render(strings.Join(lines, "\n"))
	case modeItemInfo:
		item, ok := m.selectedItemInLane()
		if !ok {
			return ""
		}
		width := clamp(maxWidth, 40, 100)
		body := m.md.render(itemMarkdown(item, m.lanes.Board), width-4)
		lines := []string{
			body,
			lipgloss.NewStyle().Foreground(mutedColor).Render("y copy id • esc close"),
		}
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimColor).
			Padding(0, 1).
			Render(strings.Join(lines, "\n"))
	default:
		return ""
	}
}

// loadData loads boards and the lanes of the selected board.
func (m Model) loadData() tea.Msg {
	ctx := context.Background()
	boards, err := m.svc.ListBoards(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	if len(boards) == 0 {
		return loadedMsg{boards: boards}
	}
	idx := clamp(m.selectedBoard, 0, len(boards)-1)
	if m.pendingBoardID != "" {
		for i, b := range boards {
			if b.ID == m.pendingBoardID {
				idx = i
				break
			}
		}
	}
	lanes, err := m.svc.BoardLanes(ctx, boards[idx].ID, m.showArchived)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{boards: boards, selectedBoard: idx, lanes: lanes}
}

// warnUnassigned logs each item whose status matches no column, once per item.
func (m *Model) warnUnassigned() {
	for _, item := range m.lanes.Lanes.Unassigned {
		if _, seen := m.warnedUnassigned[item.ID]; seen {
			continue
		}
		m.warnedUnassigned[item.ID] = struct{}{}
		m.log.Warn("item status matches no column",
			"board", m.lanes.Board.ID,
			"item", item.ID,
			"status", item.Status,
		)
	}
}

func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		if m.drag.Cancel() {
			m.status = "drag cancelled"
			return m, nil
		}
		if m.help.ShowAll {
			m.help.ShowAll = false
			m.status = "ready"
		}
		return m, nil
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		if m.help.ShowAll {
			m.status = "help"
		} else {
			m.status = "ready"
		}
		return m, nil
	}
	if m.help.ShowAll {
		return m, nil
	}
	if m.err != nil {
		if key.Matches(msg, m.keys.reload) {
			m.err = nil
			m.status = "loading..."
			return m, m.loadData
		}
		return m, nil
	}
	// Keyboard actions are ignored while a drag owns the board.
	if _, dragging := m.drag.Dragging(); dragging {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.selectedItem = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < len(m.visibleLanes())-1 {
			m.selectedColumn++
			m.selectedItem = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedItem > 0 {
			m.selectedItem--
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		if lane, ok := m.currentLane(); ok && m.selectedItem < len(lane.items)-1 {
			m.selectedItem++
		}
		return m, nil
	case key.Matches(msg, m.keys.nextBoard):
		return m.switchBoard(1)
	case key.Matches(msg, m.keys.prevBoard):
		return m.switchBoard(-1)
	case key.Matches(msg, m.keys.toggleArchived):
		m.showArchived = !m.showArchived
		if m.showArchived {
			m.status = "showing archived"
		} else {
			m.status = "hiding archived"
		}
		return m, m.loadData
	case key.Matches(msg, m.keys.addItem):
		if len(m.boards) == 0 {
			m.status = "no board loaded"
			return m, nil
		}
		m.mode = modeAddItem
		m.input = newModalInput("title: ", "new card title", "", 160)
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.itemInfo):
		if _, ok := m.selectedItemInLane(); !ok {
			m.status = "no card selected"
			return m, nil
		}
		m.mode = modeItemInfo
		return m, nil
	case key.Matches(msg, m.keys.copyID):
		return m.copySelectedID()
	case key.Matches(msg, m.keys.moveItemLeft):
		return m.moveSelectedItem(-1)
	case key.Matches(msg, m.keys.moveItemRight):
		return m.moveSelectedItem(1)
	case key.Matches(msg, m.keys.deleteItem):
		return m.deleteSelectedItem(m.defaultDeleteMode)
	case key.Matches(msg, m.keys.hardDeleteItem):
		return m.deleteSelectedItem(app.DeleteModeHard)
	case key.Matches(msg, m.keys.restoreItem):
		return m.restoreSelectedItem()
	default:
		return m, nil
	}
}

func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeItemInfo:
		switch {
		case msg.String() == "esc", key.Matches(msg, m.keys.itemInfo):
			m.mode = modeNone
			return m, nil
		case key.Matches(msg, m.keys.copyID):
			return m.copySelectedID()
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		}
		return m, nil
	case modeAddItem:
		switch msg.String() {
		case "esc":
			m.mode = modeNone
			m.input.Blur()
			m.status = "cancelled"
			return m, nil
		case "enter":
			title := strings.TrimSpace(m.input.Value())
			if title == "" {
				m.status = "title required"
				return m, nil
			}
			m.mode = modeNone
			m.input.Blur()
			return m.createItem(title)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	default:
		m.mode = modeNone
		return m, nil
	}
}

func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone {
		return m, nil
	}
	lane, ok := m.currentLane()
	if !ok || len(lane.items) == 0 {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.selectedItem > 0 {
			m.selectedItem--
		}
	case tea.MouseWheelDown:
		if m.selectedItem < len(lane.items)-1 {
			m.selectedItem++
		}
	}
	return m, nil
}

// handleMouseClick focuses the card under the pointer and arms a drag for it.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone || msg.Button != tea.MouseLeft {
		return m, nil
	}
	at := board.Point{X: msg.X, Y: msg.Y}
	laneIdx, itemIdx, ok := m.cardAt(at)
	if !ok {
		if col, inColumn := m.columnAt(at); inColumn {
			m.selectedColumn = col
			m.clampSelections()
		}
		return m, nil
	}
	m.selectedColumn = laneIdx
	m.selectedItem = itemIdx
	item := m.visibleLanes()[laneIdx].items[itemIdx]
	m.drag.Press(item.ID, item.Status, at, board.PointerMouse)
	return m, nil
}

func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.drag.Armed() && m.drag.State() != board.DragDragging {
		return m, nil
	}
	update := m.drag.Move(board.Point{X: msg.X, Y: msg.Y}, m.dropZones())
	if update.Started {
		m.log.Debug("drag started", "board", m.lanes.Board.ID, "x", msg.X, "y", msg.Y)
	}
	return m, nil
}

// handleMouseRelease resolves the drop and applies any status change it fired.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	drop := m.drag.Release(board.Point{X: msg.X, Y: msg.Y}, m.dropZones())
	changes := m.drops.drain()
	if !drop.Changed || len(changes) == 0 {
		if !drop.Click && drop.ItemID != "" {
			m.log.Debug("drop ignored", "item", drop.ItemID, "from", drop.From, "to", drop.To)
		}
		return m, nil
	}
	cmds := make([]tea.Cmd, 0, len(changes))
	for _, change := range changes {
		var cmd tea.Cmd
		m, cmd = m.applyStatusChange(change.itemID, change.status)
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 1 {
		return m, cmds[0]
	}
	return m, tea.Batch(cmds...)
}

// applyStatusChange moves the item locally so the drop lands at once, then persists it.
func (m Model) applyStatusChange(itemID, status string) (Model, tea.Cmd) {
	layout, err := m.lanes.Board.Layout()
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	items := m.allItems()
	moved, ok := board.Move(items, itemID, status)
	if !ok {
		return m, nil
	}
	m.lanes.Lanes = board.Partition(layout, moved)
	m.focusItem(itemID)
	title := itemID
	if item, found := m.itemByID(itemID); found {
		title = item.Title
	}
	label := status
	if col, found := m.lanes.Board.Column(status); found {
		label = col.Title
	}
	return m, func() tea.Msg {
		if _, err := m.svc.MoveItem(context.Background(), itemID, status); err != nil {
			return actionMsg{err: fmt.Errorf("move failed: %w", err), reload: true}
		}
		return actionMsg{
			status:      fmt.Sprintf("moved %q to %s", truncate(title, 32), label),
			reload:      true,
			focusItemID: itemID,
		}
	}
}

func (m Model) moveSelectedItem(delta int) (tea.Model, tea.Cmd) {
	lane, ok := m.currentLane()
	if !ok || lane.unassigned {
		m.status = "select a card in a column to move it"
		return m, nil
	}
	item, ok := m.selectedItemInLane()
	if !ok {
		m.status = "no card selected"
		return m, nil
	}
	target := m.selectedColumn + delta
	if target < 0 || target >= len(m.lanes.Lanes.Lanes) {
		m.status = "no column in that direction"
		return m, nil
	}
	return m.applyStatusChange(item.ID, m.lanes.Lanes.Lanes[target].Column.ID)
}

func (m Model) createItem(title string) (tea.Model, tea.Cmd) {
	in := app.CreateItemInput{BoardID: m.lanes.Board.ID, Title: title}
	if lane, ok := m.currentLane(); ok && !lane.unassigned {
		in.Status = lane.column.ID
	}
	return m, func() tea.Msg {
		item, err := m.svc.CreateItem(context.Background(), in)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "card created", reload: true, focusItemID: item.ID}
	}
}

func (m Model) deleteSelectedItem(mode app.DeleteMode) (tea.Model, tea.Cmd) {
	item, ok := m.selectedItemInLane()
	if !ok {
		m.status = "no card selected"
		return m, nil
	}
	status := "card archived"
	if mode == app.DeleteModeHard {
		status = "card deleted"
	}
	return m, func() tea.Msg {
		if err := m.svc.DeleteItem(context.Background(), item.ID, mode); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: status, reload: true}
	}
}

func (m Model) restoreSelectedItem() (tea.Model, tea.Cmd) {
	item, ok := m.selectedItemInLane()
	if !ok {
		m.status = "no card selected"
		return m, nil
	}
	if item.ArchivedAt == nil {
		m.status = "card is not archived"
		return m, nil
	}
	return m, func() tea.Msg {
		restored, err := m.svc.RestoreItem(context.Background(), item.ID)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "card restored", reload: true, focusItemID: restored.ID}
	}
}

func (m Model) copySelectedID() (tea.Model, tea.Cmd) {
	item, ok := m.selectedItemInLane()
	if !ok {
		m.status = "no card selected"
		return m, nil
	}
	if err := m.copyText(item.ID); err != nil {
		m.status = "copy failed: " + err.Error()
		return m, nil
	}
	m.status = "copied " + item.ID
	return m, nil
}

func (m Model) switchBoard(delta int) (tea.Model, tea.Cmd) {
	if len(m.boards) < 2 {
		return m, nil
	}
	m.drag.Cancel()
	m.selectedBoard = (m.selectedBoard + delta + len(m.boards)) % len(m.boards)
	m.pendingBoardID = m.boards[m.selectedBoard].ID
	m.selectedColumn = 0
	m.selectedItem = 0
	m.status = "board " + m.boards[m.selectedBoard].Name
	return m, m.loadData
}

func (m *Model) clampSelections() {
	lanes := m.visibleLanes()
	if len(lanes) == 0 {
		m.selectedColumn = 0
		m.selectedItem = 0
		return
	}
	m.selectedColumn = clamp(m.selectedColumn, 0, len(lanes)-1)
	m.selectedItem = clamp(m.selectedItem, 0, max(0, len(lanes[m.selectedColumn].items)-1))
}

func (m *Model) focusItem(itemID string) {
	for laneIdx, lane := range m.visibleLanes() {
		for idx, item := range lane.items {
			if item.ID == itemID {
				m.selectedColumn = laneIdx
				m.selectedItem = idx
				return
			}
		}
	}
	m.clampSelections()
}

func (m Model) currentLane() (laneView, bool) {
	lanes := m.visibleLanes()
	if len(lanes) == 0 {
		return laneView{}, false
	}
	return lanes[clamp(m.selectedColumn, 0, len(lanes)-1)], true
}

func (m Model) selectedItemInLane() (domain.Item, bool) {
	lane, ok := m.currentLane()
	if !ok || len(lane.items) == 0 {
		return domain.Item{}, false
	}
	return lane.items[clamp(m.selectedItem, 0, len(lane.items)-1)], true
}

// allItems flattens lanes back into one list, unassigned items last.
func (m Model) allItems() []domain.Item {
	out := make([]domain.Item, 0, m.lanes.Lanes.Count())
	for _, lane := range m.lanes.Lanes.Lanes {
		out = append(out, lane.Items...)
	}
	return append(out, m.lanes.Lanes.Unassigned...)
}

func (m Model) itemByID(itemID string) (domain.Item, bool) {
	for _, item := range m.allItems() {
		if item.ID == itemID {
			return item, true
		}
	}
	return domain.Item{}, false
}

// itemMarkdown renders an item as a markdown document for the details overlay.
func itemMarkdown(item domain.Item, b domain.Board) string {
	status := item.Status
	if col, ok := b.Column(item.Status); ok {
		status = col.Title
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", item.Title)
	fmt.Fprintf(&sb, "- **status:** %s\n", status)
	if item.Contact != "" {
		fmt.Fprintf(&sb, "- **contact:** %s\n", item.Contact)
	}
	if item.Address != "" {
		fmt.Fprintf(&sb, "- **address:** %s\n", item.Address)
	}
	if item.Source != "" {
		fmt.Fprintf(&sb, "- **source:** %s\n", item.Source)
	}
	if item.ValueCents != 0 {
		fmt.Fprintf(&sb, "- **value:** %s\n", domain.FormatCents(item.ValueCents))
	}
	if item.ScheduledAt != nil {
		fmt.Fprintf(&sb, "- **scheduled:** %s\n", formatAppointment(*item.ScheduledAt))
	}
	if len(item.Labels) > 0 {
		fmt.Fprintf(&sb, "- **labels:** %s\n", strings.Join(item.Labels, ", "))
	}
	if item.ArchivedAt != nil {
		sb.WriteString("- **archived**\n")
	}
	fmt.Fprintf(&sb, "- **id:** `%s`\n", item.ID)
	if desc := strings.TrimSpace(item.Description); desc != "" {
		sb.WriteString("\n" + desc + "\n")
	}
	return sb.String()
}

func headerColor(style string) color.Color {
	style = strings.TrimSpace(style)
	if style == "" {
		return lipgloss.Color("62")
	}
	return lipgloss.Color(style)
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines pads or truncates content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base.
func overlayOnContent(base, overlay string, width, height int) string {
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	return layerAt(base, centered, 0, 0, width, height)
}

// layerAt composes overlay above base with its top-left corner at (x, y).
func layerAt(base, overlay string, x, y, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(fitLines(base, height)).X(0).Y(0).Z(0))
	canvas.Compose(lipgloss.NewLayer(overlay).X(x).Y(y).Z(20))
	return canvas.Render()
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(rs[:maxLen])
	}
	return string(rs[:maxLen-1]) + "…"
}
