package app

import (
	"context"
	"errors"
	"time"

	"github.com/hylla/fieldboard/internal/domain"
)

type seedItem struct {
	boardID     string
	status      string
	title       string
	description string
	contact     string
	address     string
	source      string
	valueCents  int64
	scheduleIn  time.Duration
	labels      []string
}

var demoItems = []seedItem{
	{boardID: "jobs", status: "scheduled", title: "Replace water heater", description: "50 gal gas unit, haul away old tank.", contact: "Dana Ruiz", address: "412 Alder St", valueCents: 185000, scheduleIn: 26 * time.Hour, labels: []string{"plumbing"}},
	{boardID: "jobs", status: "scheduled", title: "Panel upgrade", description: "100A to 200A service. Permit pulled.", contact: "Marcus Lee", address: "88 Birch Ct", valueCents: 340000, scheduleIn: 72 * time.Hour, labels: []string{"electrical", "permit"}},
	{boardID: "jobs", status: "in_progress", title: "Kitchen rough-in", description: "Move sink to island. Inspect Friday.", contact: "Priya Nair", address: "19 Cedar Ln", valueCents: 520000, labels: []string{"plumbing"}},
	{boardID: "jobs", status: "awaiting_parts", title: "Mini-split install", description: "Line set backordered.", contact: "Tom Okafor", address: "7 Elm Row", valueCents: 410000, labels: []string{"hvac"}},
	{boardID: "jobs", status: "completed", title: "Fence repair", description: "Three posts replaced.", contact: "Ana Costa", address: "230 Pine Ave", valueCents: 72000},
	{boardID: "jobs", status: "invoiced", title: "Gutter cleaning", contact: "Lee Park", address: "5 Spruce Dr", valueCents: 18000},
	{boardID: "leads", status: "new", title: "Bathroom remodel inquiry", description: "Wants walk-in shower. Budget unclear.", contact: "Jordan Blake", source: "website", valueCents: 1500000},
	{boardID: "leads", status: "new", title: "Deck staining", contact: "Sam Rivera", source: "referral", valueCents: 90000},
	{boardID: "leads", status: "contacted", title: "Whole-house repipe", description: "Galvanized lines, low pressure upstairs.", contact: "Chris Moore", source: "google", valueCents: 890000},
	{boardID: "leads", status: "estimate_sent", title: "EV charger circuit", contact: "Taylor Kim", source: "repeat", valueCents: 160000, labels: []string{"electrical"}},
	{boardID: "leads", status: "won", title: "Attic insulation", contact: "Morgan Diaz", source: "mailer", valueCents: 240000},
}

// SeedDemo fills empty configured boards with sample jobs and leads and returns the number created.
// Boards that already hold items are skipped, as are samples whose column is not configured.
func (s *Service) SeedDemo(ctx context.Context) (int, error) {
	now := s.clock()
	boards := map[string]*domain.Board{}
	created := 0
	for _, seed := range demoItems {
		b, known := boards[seed.boardID]
		if !known {
			loaded, err := s.seedTarget(ctx, seed.boardID)
			if err != nil {
				return created, err
			}
			boards[seed.boardID] = loaded
			b = loaded
		}
		if b == nil || !b.HasStatus(seed.status) {
			continue
		}
		var scheduledAt *time.Time
		if seed.scheduleIn > 0 {
			at := now.Add(seed.scheduleIn)
			scheduledAt = &at
		}
		_, err := s.CreateItem(ctx, CreateItemInput{
			BoardID:     seed.boardID,
			Status:      seed.status,
			Title:       seed.title,
			Description: seed.description,
			Contact:     seed.contact,
			Address:     seed.address,
			Source:      seed.source,
			ValueCents:  seed.valueCents,
			ScheduledAt: scheduledAt,
			Labels:      seed.labels,
		})
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// seedTarget returns the board when it exists and is empty, or nil when it should be skipped.
func (s *Service) seedTarget(ctx context.Context, boardID string) (*domain.Board, error) {
	b, err := s.repo.GetBoard(ctx, boardID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, boardID, true)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return nil, nil
	}
	return &b, nil
}
