package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/ecom-shop/internal/domain/models"
)

var ErrCartNotFound = errors.New("cart not found")

// CartStorage описывает методы для работы с корзиной.
// Содержимое корзины хранится как мультимножество: одна строка cart_items — одна единица товара.
type CartStorage interface {
	// CreateCart создаёт пустую корзину пользователя; вызывается в одной транзакции с созданием пользователя.
	CreateCart(ctx context.Context, tx *sql.Tx, userID int64) (int64, error)
	// LockCartByUserIDTx находит корзину пользователя и блокирует её строку на время транзакции,
	// чтобы конкурентные мутации одной корзины выполнялись последовательно.
	LockCartByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) (int64, error)
	// AddItems вставляет quantity строк с указанным товаром.
	AddItems(ctx context.Context, tx *sql.Tx, cartID, itemID int64, quantity int) error
	// RemoveItems удаляет не более quantity строк с указанным товаром и возвращает число удалённых.
	RemoveItems(ctx context.Context, tx *sql.Tx, cartID, itemID int64, quantity int) (int64, error)
	// ListCartItemsTx возвращает содержимое корзины с текущими ценами каталога.
	ListCartItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]*models.Item, error)
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

func (r *cartRepository) CreateCart(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		"INSERT INTO carts (user_id) VALUES ($1) RETURNING id", userID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create cart: %w", err)
	}
	return id, nil
}

func (r *cartRepository) LockCartByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
	var id int64
	row := tx.QueryRowContext(ctx, "SELECT id FROM carts WHERE user_id = $1 FOR UPDATE NOWAIT", userID)
	if err := row.Scan(&id); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "55P03" { // lock
				return 0, fmt.Errorf("cart is locked, please try again: %w", err)
			}
		}
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrCartNotFound
		}
		return 0, err
	}
	return id, nil
}

func (r *cartRepository) AddItems(ctx context.Context, tx *sql.Tx, cartID, itemID int64, quantity int) error {
	query := "INSERT INTO cart_items (cart_id, item_id) SELECT $1, $2 FROM generate_series(1, $3)"
	_, err := tx.ExecContext(ctx, query, cartID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("failed to add cart items: %w", err)
	}
	return nil
}

// RemoveItems удаляет до quantity совпадающих строк; если их меньше — удаляет сколько есть.
// Отсутствие совпадений ошибкой не считается.
func (r *cartRepository) RemoveItems(ctx context.Context, tx *sql.Tx, cartID, itemID int64, quantity int) (int64, error) {
	query := `DELETE FROM cart_items
	          WHERE id IN (SELECT id FROM cart_items WHERE cart_id = $1 AND item_id = $2 ORDER BY id LIMIT $3)`
	res, err := tx.ExecContext(ctx, query, cartID, itemID, quantity)
	if err != nil {
		return 0, fmt.Errorf("failed to remove cart items: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (r *cartRepository) ListCartItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]*models.Item, error) {
	query := `
		SELECT i.id, i.name, i.description, i.price
		FROM cart_items ci
		JOIN items i ON ci.item_id = i.id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`
	rows, err := tx.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}
