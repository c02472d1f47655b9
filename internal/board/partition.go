package board

// Item is the minimal shape the board needs from a caller's record.
type Item[T any] interface {
	ItemID() string
	ItemStatus() string
	WithStatus(status string) T
}

// Lane is one column and the items currently in it.
type Lane[T any] struct {
	Column Column
	Items  []T
}

// Partitioned is the result of grouping items by status.
type Partitioned[T any] struct {
	Lanes      []Lane[T]
	Unassigned []T
}

// Lane returns the lane for a column id.
func (p Partitioned[T]) Lane(columnID string) (Lane[T], bool) {
	for _, lane := range p.Lanes {
		if lane.Column.ID == columnID {
			return lane, true
		}
	}
	return Lane[T]{}, false
}

// Count returns the number of items across all lanes and the unassigned bucket.
func (p Partitioned[T]) Count() int {
	total := len(p.Unassigned)
	for _, lane := range p.Lanes {
		total += len(lane.Items)
	}
	return total
}

// Partition groups items into one lane per layout column, preserving input order inside each lane.
// Items whose status is not a column id are collected in Unassigned.
func Partition[T Item[T]](layout Layout, items []T) Partitioned[T] {
	out := Partitioned[T]{Lanes: make([]Lane[T], len(layout.columns))}
	for i, col := range layout.columns {
		out.Lanes[i] = Lane[T]{Column: col, Items: []T{}}
	}
	for _, item := range items {
		idx, ok := layout.index[item.ItemStatus()]
		if !ok {
			out.Unassigned = append(out.Unassigned, item)
			continue
		}
		out.Lanes[idx].Items = append(out.Lanes[idx].Items, item)
	}
	return out
}

// Move returns a copy of items where itemID carries status and sits after every other item,
// so the next Partition places it last in its new lane. It reports false when nothing changes.
func Move[T Item[T]](items []T, itemID, status string) ([]T, bool) {
	at := -1
	for i, item := range items {
		if item.ItemID() == itemID {
			at = i
			break
		}
	}
	if at < 0 || items[at].ItemStatus() == status {
		return items, false
	}
	out := make([]T, 0, len(items))
	out = append(out, items[:at]...)
	out = append(out, items[at+1:]...)
	out = append(out, items[at].WithStatus(status))
	return out, true
}
