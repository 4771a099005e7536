package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linemk/ecom-shop/internal/domain/models"
)

// ItemStorage описывает методы для работы с каталогом товаров.
// Каталог с точки зрения сервисов только читается.
type ItemStorage interface {
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	// GetItemByIDTx получает товар в рамках транзакции мутации корзины.
	GetItemByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Item, error)
	ListItems(ctx context.Context) ([]*models.Item, error)
	GetItemsByName(ctx context.Context, name string) ([]*models.Item, error)
}

// itemRepository — конкретная реализация интерфейса ItemStorage.
type itemRepository struct {
	db *sql.DB
}

// NewItemRepository создаёт новый репозиторий каталога.
func NewItemRepository(db *sql.DB) ItemStorage {
	return &itemRepository{db: db}
}

var ErrItemNotFound = errors.New("item not found")

func (r *itemRepository) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, name, description, price FROM items WHERE id = $1", id)
	return scanItem(row)
}

func (r *itemRepository) GetItemByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Item, error) {
	row := tx.QueryRowContext(ctx, "SELECT id, name, description, price FROM items WHERE id = $1", id)
	return scanItem(row)
}

func scanItem(row *sql.Row) (*models.Item, error) {
	item := &models.Item{}
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *itemRepository) ListItems(ctx context.Context) ([]*models.Item, error) {
	query := "SELECT id, name, description, price FROM items ORDER BY id"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// GetItemsByName возвращает все товары с указанным названием
// (название товара не уникально, в отличие от имени пользователя).
func (r *itemRepository) GetItemsByName(ctx context.Context, name string) ([]*models.Item, error) {
	query := "SELECT id, name, description, price FROM items WHERE name = $1 ORDER BY id"
	rows, err := r.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows *sql.Rows) ([]*models.Item, error) {
	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
