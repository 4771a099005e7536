package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/ecom-shop/internal/domain/models"
	"github.com/linemk/ecom-shop/internal/storage"
)

// ItemService определяет интерфейс чтения каталога.
type ItemService interface {
	List(ctx context.Context) ([]*models.Item, error)
	GetByID(ctx context.Context, id int64) (*models.Item, error)
	GetByName(ctx context.Context, name string) ([]*models.Item, error)
}

type itemService struct {
	log      *slog.Logger
	itemRepo storage.ItemStorage
}

func NewItemService(log *slog.Logger, itemRepo storage.ItemStorage) ItemService {
	return &itemService{log: log, itemRepo: itemRepo}
}

func (s *itemService) List(ctx context.Context) ([]*models.Item, error) {
	const op = "service.ItemService.List"
	items, err := s.itemRepo.ListItems(ctx)
	if err != nil {
		s.log.Error("failed to list items", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

func (s *itemService) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	const op = "service.ItemService.GetByID"
	item, err := s.itemRepo.GetItemByID(ctx, id)
	if err != nil {
		s.log.Error("failed to get item", slog.String("op", op), slog.Int64("itemID", id), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// GetByName возвращает все товары с данным названием; пустой список трактуется
// на транспортном уровне как NotFound.
func (s *itemService) GetByName(ctx context.Context, name string) ([]*models.Item, error) {
	const op = "service.ItemService.GetByName"
	items, err := s.itemRepo.GetItemsByName(ctx, name)
	if err != nil {
		s.log.Error("failed to get items by name", slog.String("op", op), slog.String("name", name), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}
