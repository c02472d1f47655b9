package app

import (
	"context"

	"github.com/hylla/fieldboard/internal/domain"
)

// Repository is the persistence port used by Service.
type Repository interface {
	CreateBoard(context.Context, domain.Board) error
	UpdateBoard(context.Context, domain.Board) error
	GetBoard(context.Context, string) (domain.Board, error)
	ListBoards(context.Context) ([]domain.Board, error)

	CreateItem(context.Context, domain.Item) error
	UpdateItem(context.Context, domain.Item) error
	GetItem(context.Context, string) (domain.Item, error)
	ListItems(context.Context, string, bool) ([]domain.Item, error)
	DeleteItem(context.Context, string) error

	ListChangeEvents(context.Context, string, int) ([]domain.ChangeEvent, error)
}
