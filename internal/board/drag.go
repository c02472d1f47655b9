package board

import (
	"strings"
	"time"
)

// Point is a pointer position in screen cells.
type Point struct {
	X int
	Y int
}

// Rect is an axis-aligned screen region.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether p falls inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// HitTester resolves the drop-target column under a point.
type HitTester interface {
	ColumnAt(Point) (string, bool)
}

// Zone binds a column id to its on-screen region.
type Zone struct {
	ColumnID string
	Rect     Rect
}

// Zones is an ordered list of drop targets; the first zone containing a point wins.
type Zones []Zone

// ColumnAt implements HitTester.
func (z Zones) ColumnAt(p Point) (string, bool) {
	for _, zone := range z {
		if zone.Rect.Contains(p) {
			return zone.ColumnID, true
		}
	}
	return "", false
}

// PointerKind identifies the input device behind a gesture.
type PointerKind int

// PointerKind values.
const (
	PointerMouse PointerKind = iota
	PointerTouch
)

// String returns a stable label for logs.
func (k PointerKind) String() string {
	switch k {
	case PointerTouch:
		return "touch"
	default:
		return "mouse"
	}
}

// Activation configures when a press becomes a drag.
// Mouse drags start once the pointer travels Distance cells.
// Touch drags start once the press is held for HoldDelay without drifting more than HoldTolerance cells.
type Activation struct {
	Distance      int
	HoldDelay     time.Duration
	HoldTolerance int
}

// DefaultActivation returns thresholds tuned for terminal cells.
func DefaultActivation() Activation {
	return Activation{
		Distance:      1,
		HoldDelay:     250 * time.Millisecond,
		HoldTolerance: 1,
	}
}

func (a Activation) normalized() Activation {
	if a.Distance < 1 {
		a.Distance = 1
	}
	if a.HoldDelay < 0 {
		a.HoldDelay = 0
	}
	if a.HoldTolerance < 0 {
		a.HoldTolerance = 0
	}
	return a
}

// DragState is the coordinator's gesture state.
type DragState int

// DragState values.
const (
	DragIdle DragState = iota
	DragDragging
)

// String returns a stable label for logs.
func (s DragState) String() string {
	if s == DragDragging {
		return "dragging"
	}
	return "idle"
}

// StatusChangeFunc receives a completed cross-column drop.
type StatusChangeFunc func(itemID, status string)

// DragUpdate reports what a pointer move did.
type DragUpdate struct {
	Started  bool
	Changed  bool
	Disarmed bool
	Hover    string
	Hovering bool
}

// Drop reports how a gesture ended.
type Drop struct {
	ItemID  string
	From    string
	To      string
	Changed bool
	Click   bool
}

// DragOption configures a DragCoordinator.
type DragOption func(*DragCoordinator)

// WithActivation overrides the activation thresholds.
func WithActivation(a Activation) DragOption {
	return func(d *DragCoordinator) {
		d.activation = a.normalized()
	}
}

// WithClock overrides the time source used for hold delays.
func WithClock(now func() time.Time) DragOption {
	return func(d *DragCoordinator) {
		if now != nil {
			d.now = now
		}
	}
}

// DragCoordinator tracks one pointer gesture at a time and resolves drops against hit zones.
// It never holds the item list; the caller owns board state and reacts to the status-change callback.
type DragCoordinator struct {
	activation     Activation
	now            func() time.Time
	onStatusChange StatusChangeFunc

	state     DragState
	armed     bool
	itemID    string
	status    string
	kind      PointerKind
	origin    Point
	pressedAt time.Time
	pointer   Point
	hover     string
	hovering  bool
}

// NewDragCoordinator constructs an idle coordinator.
func NewDragCoordinator(onStatusChange StatusChangeFunc, opts ...DragOption) *DragCoordinator {
	d := &DragCoordinator{
		activation:     DefaultActivation(),
		now:            time.Now,
		onStatusChange: onStatusChange,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// State returns the current gesture state.
func (d *DragCoordinator) State() DragState {
	return d.state
}

// Armed reports whether a press is waiting to cross the activation threshold.
func (d *DragCoordinator) Armed() bool {
	return d.state == DragIdle && d.armed
}

// Dragging returns the lifted item id while a drag is active.
func (d *DragCoordinator) Dragging() (string, bool) {
	if d.state != DragDragging {
		return "", false
	}
	return d.itemID, true
}

// Overlay returns the pointer position the floating copy should follow.
func (d *DragCoordinator) Overlay() (Point, bool) {
	if d.state != DragDragging {
		return Point{}, false
	}
	return d.pointer, true
}

// Hover returns the column currently under the pointer during a drag.
func (d *DragCoordinator) Hover() (string, bool) {
	if d.state != DragDragging || !d.hovering {
		return "", false
	}
	return d.hover, true
}

// Press arms a drag candidate for itemID, whose current status is status.
// It is ignored while a drag is already active.
func (d *DragCoordinator) Press(itemID, status string, at Point, kind PointerKind) bool {
	itemID = strings.TrimSpace(itemID)
	if d.state == DragDragging || itemID == "" {
		return false
	}
	d.armed = true
	d.itemID = itemID
	d.status = status
	d.kind = kind
	d.origin = at
	d.pointer = at
	d.pressedAt = d.now()
	d.hover, d.hovering = "", false
	return true
}

// Move feeds a pointer position. hits may be nil when no zones are known.
func (d *DragCoordinator) Move(at Point, hits HitTester) DragUpdate {
	if d.state == DragDragging {
		return d.track(at, hits)
	}
	if !d.armed {
		return DragUpdate{}
	}
	travelled := chebyshev(d.origin, at)
	switch d.kind {
	case PointerTouch:
		held := d.now().Sub(d.pressedAt)
		if held < d.activation.HoldDelay {
			if travelled > d.activation.HoldTolerance {
				d.reset()
				return DragUpdate{Disarmed: true}
			}
			return DragUpdate{}
		}
	default:
		if travelled < d.activation.Distance {
			return DragUpdate{}
		}
	}
	d.state = DragDragging
	d.armed = false
	update := d.track(at, hits)
	update.Started = true
	update.Changed = true
	return update
}

// Release ends the gesture at the given point. A cross-column drop fires the status-change
// callback exactly once; every other outcome fires nothing.
func (d *DragCoordinator) Release(at Point, hits HitTester) Drop {
	if d.state != DragDragging {
		if !d.armed {
			return Drop{}
		}
		click := Drop{ItemID: d.itemID, From: d.status, Click: true}
		d.reset()
		return click
	}
	drop := Drop{ItemID: d.itemID, From: d.status}
	if hits != nil {
		if columnID, ok := hits.ColumnAt(at); ok {
			drop.To = columnID
		}
	}
	d.reset()
	if drop.To == "" || drop.To == drop.From {
		return drop
	}
	drop.Changed = true
	if d.onStatusChange != nil {
		d.onStatusChange(drop.ItemID, drop.To)
	}
	return drop
}

// Cancel aborts any armed or active gesture without firing the callback.
func (d *DragCoordinator) Cancel() bool {
	active := d.state == DragDragging || d.armed
	d.reset()
	return active
}

func (d *DragCoordinator) track(at Point, hits HitTester) DragUpdate {
	hover, hovering := "", false
	if hits != nil {
		hover, hovering = hits.ColumnAt(at)
	}
	changed := at != d.pointer || hover != d.hover || hovering != d.hovering
	d.pointer = at
	d.hover, d.hovering = hover, hovering
	return DragUpdate{Changed: changed, Hover: hover, Hovering: hovering}
}

func (d *DragCoordinator) reset() {
	d.state = DragIdle
	d.armed = false
	d.itemID = ""
	d.status = ""
	d.kind = PointerMouse
	d.origin = Point{}
	d.pointer = Point{}
	d.pressedAt = time.Time{}
	d.hover, d.hovering = "", false
}

func chebyshev(a, b Point) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return max(dx, dy)
}
