package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Item is a job or lead card on a board.
type Item struct {
	ID          string
	BoardID     string
	Status      string
	Position    int
	Title       string
	Description string
	Contact     string
	Address     string
	Source      string
	ValueCents  int64
	ScheduledAt *time.Time
	Labels      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ArchivedAt  *time.Time
}

// ItemInput holds constructor values for NewItem.
type ItemInput struct {
	ID          string
	BoardID     string
	Status      string
	Position    int
	Title       string
	Description string
	Contact     string
	Address     string
	Source      string
	ValueCents  int64
	ScheduledAt *time.Time
	Labels      []string
}

// ItemDetails holds the editable, non-placement fields of an item.
type ItemDetails struct {
	Title       string
	Description string
	Contact     string
	Address     string
	Source      string
	ValueCents  int64
	ScheduledAt *time.Time
	Labels      []string
}

// NewItem constructs a new value for this package.
func NewItem(in ItemInput, now time.Time) (Item, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.BoardID = strings.TrimSpace(in.BoardID)
	in.Status = strings.TrimSpace(in.Status)
	if in.ID == "" || in.BoardID == "" {
		return Item{}, ErrInvalidID
	}
	if in.Status == "" {
		return Item{}, ErrInvalidStatus
	}
	if in.Position < 0 {
		return Item{}, ErrInvalidPosition
	}
	item := Item{
		ID:        in.ID,
		BoardID:   in.BoardID,
		Status:    in.Status,
		Position:  in.Position,
		CreatedAt: now.UTC(),
	}
	if err := item.UpdateDetails(ItemDetails{
		Title:       in.Title,
		Description: in.Description,
		Contact:     in.Contact,
		Address:     in.Address,
		Source:      in.Source,
		ValueCents:  in.ValueCents,
		ScheduledAt: in.ScheduledAt,
		Labels:      in.Labels,
	}, now); err != nil {
		return Item{}, err
	}
	return item, nil
}

// ItemID returns the item id.
func (i Item) ItemID() string { return i.ID }

// ItemStatus returns the item's column id.
func (i Item) ItemStatus() string { return i.Status }

// WithStatus returns a copy of the item with a new status.
func (i Item) WithStatus(status string) Item {
	i.Status = status
	return i
}

// Move places the item in a column at the given position.
func (i *Item) Move(status string, position int, now time.Time) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return ErrInvalidStatus
	}
	if position < 0 {
		return ErrInvalidPosition
	}
	i.Status = status
	i.Position = position
	i.UpdatedAt = now.UTC()
	return nil
}

// UpdateDetails replaces the editable fields.
func (i *Item) UpdateDetails(in ItemDetails, now time.Time) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return ErrInvalidTitle
	}
	if in.ValueCents < 0 {
		return ErrInvalidValue
	}
	i.Title = title
	i.Description = strings.TrimSpace(in.Description)
	i.Contact = strings.TrimSpace(in.Contact)
	i.Address = strings.TrimSpace(in.Address)
	i.Source = strings.TrimSpace(in.Source)
	i.ValueCents = in.ValueCents
	i.ScheduledAt = normalizeScheduledAt(in.ScheduledAt)
	i.Labels = normalizeLabels(in.Labels)
	i.UpdatedAt = now.UTC()
	return nil
}

// Archive archives the item.
func (i *Item) Archive(now time.Time) {
	ts := now.UTC()
	i.ArchivedAt = &ts
	i.UpdatedAt = ts
}

// Restore clears the archive marker.
func (i *Item) Restore(now time.Time) {
	i.ArchivedAt = nil
	i.UpdatedAt = now.UTC()
}

// Details returns the editable fields.
func (i Item) Details() ItemDetails {
	return ItemDetails{
		Title:       i.Title,
		Description: i.Description,
		Contact:     i.Contact,
		Address:     i.Address,
		Source:      i.Source,
		ValueCents:  i.ValueCents,
		ScheduledAt: i.ScheduledAt,
		Labels:      append([]string(nil), i.Labels...),
	}
}

// FormatCents renders an amount of cents as dollars with thousands separators.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := fmt.Sprintf("%d", cents/100)
	var b strings.Builder
	for idx, r := range whole {
		if idx > 0 && (len(whole)-idx)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), cents%100)
}

func normalizeScheduledAt(at *time.Time) *time.Time {
	if at == nil {
		return nil
	}
	ts := at.UTC().Truncate(time.Minute)
	return &ts
}

func normalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := map[string]struct{}{}
	for _, raw := range labels {
		label := strings.ToLower(strings.TrimSpace(raw))
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	slices.Sort(out)
	return out
}
