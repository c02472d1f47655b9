package tui

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/hylla/fieldboard/internal/board"
	"github.com/hylla/fieldboard/internal/domain"
)

// Screen geometry. Rows and cells are 0-based.
const (
	// boardTop is the first row of the column borders: header, tabs, spacer.
	boardTop = 3
	// columnChrome is border (2) + horizontal padding (2) + right margin (1).
	columnChrome = 5
	// laneHeaderRows is the column title plus one spacer row.
	laneHeaderRows = 2
	// footerRows is the status line plus the bordered help line.
	footerRows = 3
	cardGutter = 2

	minColumnInner = 18
	maxColumnInner = 40
	minColumnRows  = 6
)

// laneView is one rendered column. The unassigned bucket renders as a lane but is never a drop target.
type laneView struct {
	column     board.Column
	items      []domain.Item
	unassigned bool
}

// cardBlock is a rendered card and its first row inside the lane body.
type cardBlock struct {
	item  domain.Item
	lines []string
	top   int
}

func (m Model) visibleLanes() []laneView {
	lanes := make([]laneView, 0, len(m.lanes.Lanes.Lanes)+1)
	for _, lane := range m.lanes.Lanes.Lanes {
		lanes = append(lanes, laneView{column: lane.Column, items: lane.Items})
	}
	if m.display.ShowUnassigned && len(m.lanes.Lanes.Unassigned) > 0 {
		lanes = append(lanes, laneView{
			column:     board.Column{Title: "Unassigned", HeaderStyle: "203"},
			items:      m.lanes.Lanes.Unassigned,
			unassigned: true,
		})
	}
	return lanes
}

// columnInnerWidth is the content width of every column.
func (m Model) columnInnerWidth() int {
	n := len(m.visibleLanes())
	if n == 0 || m.width <= 0 {
		return 28
	}
	return clamp((m.width-n*columnChrome)/n, minColumnInner, maxColumnInner)
}

// columnInnerHeight is the content height of every column.
func (m Model) columnInnerHeight() int {
	return max(minColumnRows, m.height-boardTop-footerRows-2)
}

func (m Model) cardWidth() int {
	return max(1, m.columnInnerWidth()-cardGutter)
}

func (m Model) bodyRows() int {
	return max(1, m.columnInnerHeight()-laneHeaderRows)
}

func (m Model) columnX(idx int) int {
	return idx * (m.columnInnerWidth() + columnChrome)
}

// laneBlocks renders every card in a lane and assigns body rows, one blank row between cards.
func (m Model) laneBlocks(lane laneView) []cardBlock {
	render := m.cardFor(m.lanes.Board.Kind)
	width := m.cardWidth()
	blocks := make([]cardBlock, 0, len(lane.items))
	row := 0
	for _, item := range lane.items {
		lines := strings.Split(render(item, width), "\n")
		if m.display.ShowDescriptions {
			if desc := firstLine(item.Description); desc != "" {
				lines = append(lines, cardMetaStyle.Render(truncate(desc, width)))
			}
		}
		if item.ArchivedAt != nil {
			lines = append(lines, archivedStyle.Render("archived"))
		}
		blocks = append(blocks, cardBlock{item: item, lines: lines, top: row})
		row += len(lines) + 1
	}
	return blocks
}

// laneScroll returns the first visible body row. Only the selected column scrolls.
func (m Model) laneScroll(laneIdx int, blocks []cardBlock) int {
	if laneIdx != m.selectedColumn || len(blocks) == 0 {
		return 0
	}
	window := m.bodyRows()
	sel := blocks[clamp(m.selectedItem, 0, len(blocks)-1)]
	end := sel.top + len(sel.lines) - 1
	top := 0
	if end >= window {
		top = end - window + 1
	}
	if sel.top < top {
		top = sel.top
	}
	last := blocks[len(blocks)-1]
	total := last.top + len(last.lines)
	return clamp(top, 0, max(0, total-window))
}

// dropZones returns one hit zone per real column; the unassigned lane is excluded.
func (m Model) dropZones() board.Zones {
	zones := make(board.Zones, 0, len(m.lanes.Lanes.Lanes))
	colHeight := m.columnInnerHeight() + 2
	for idx, lane := range m.visibleLanes() {
		if lane.unassigned {
			continue
		}
		zones = append(zones, board.Zone{
			ColumnID: lane.column.ID,
			Rect: board.Rect{
				X:      m.columnX(idx),
				Y:      boardTop,
				Width:  m.columnInnerWidth() + columnChrome,
				Height: colHeight,
			},
		})
	}
	return zones
}

// columnAt returns the visible lane index under p.
func (m Model) columnAt(p board.Point) (int, bool) {
	lanes := m.visibleLanes()
	if p.Y < boardTop || p.Y >= boardTop+m.columnInnerHeight()+2 || p.X < 0 {
		return 0, false
	}
	idx := p.X / (m.columnInnerWidth() + columnChrome)
	if idx >= len(lanes) {
		return 0, false
	}
	return idx, true
}

// cardAt returns the lane and item index of the card under p.
func (m Model) cardAt(p board.Point) (int, int, bool) {
	laneIdx, ok := m.columnAt(p)
	if !ok {
		return 0, 0, false
	}
	row := p.Y - (boardTop + 1 + laneHeaderRows)
	if row < 0 || row >= m.bodyRows() {
		return laneIdx, 0, false
	}
	lane := m.visibleLanes()[laneIdx]
	blocks := m.laneBlocks(lane)
	row += m.laneScroll(laneIdx, blocks)
	for idx, block := range blocks {
		if row >= block.top && row < block.top+len(block.lines) {
			return laneIdx, idx, true
		}
	}
	return laneIdx, 0, false
}

// renderLane draws one column body, hiding the card that is being dragged.
func (m Model) renderLane(laneIdx int, lane laneView) string {
	draggingID, dragging := m.drag.Dragging()
	accent := headerColor(lane.column.HeaderStyle)
	title := lipgloss.NewStyle().Bold(true).Foreground(accent).
		Render(truncate(laneTitle(lane), m.columnInnerWidth()))

	blocks := m.laneBlocks(lane)
	rows := make([]string, 0, len(blocks)*4)
	if len(blocks) == 0 {
		rows = append(rows, archivedStyle.Render("(empty)"))
	}
	for idx, block := range blocks {
		if idx > 0 {
			rows = append(rows, "")
		}
		selected := laneIdx == m.selectedColumn && idx == m.selectedItem
		gutter := "  "
		if selected {
			gutter = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render("▌") + " "
		}
		for _, line := range block.lines {
			if dragging && block.item.ID == draggingID {
				rows = append(rows, "")
				continue
			}
			rows = append(rows, gutter+line)
		}
	}

	window := m.bodyRows()
	top := m.laneScroll(laneIdx, blocks)
	if top > 0 && top < len(rows) {
		rows = rows[top:]
	}
	if len(rows) > window {
		rows = rows[:window]
	}
	body := append([]string{title, ""}, rows...)
	content := lipgloss.NewStyle().
		Width(m.columnInnerWidth()).
		MaxWidth(m.columnInnerWidth()).
		Render(fitLines(strings.Join(body, "\n"), m.columnInnerHeight()))

	border := lipgloss.Color("239")
	if laneIdx == m.selectedColumn {
		border = accent
	}
	if hover, ok := m.drag.Hover(); ok && !lane.unassigned && hover == lane.column.ID {
		border = lipgloss.Color("212")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		MarginRight(1).
		Render(content)
}

func laneTitle(lane laneView) string {
	return lane.column.Title + " (" + strconv.Itoa(len(lane.items)) + ")"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
