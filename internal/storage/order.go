package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/linemk/ecom-shop/internal/domain/models"
	"github.com/shopspring/decimal"
)

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrder вставляет заказ и построчный снимок цен в рамках транзакции.
	// Возвращает идентификатор и момент создания заказа.
	CreateOrder(ctx context.Context, tx *sql.Tx, userID int64, items []*models.Item, total decimal.Decimal) (int64, time.Time, error)
	// GetOrdersByUserID возвращает заказы пользователя со строками, новые первыми.
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, tx *sql.Tx, userID int64, items []*models.Item, total decimal.Decimal) (int64, time.Time, error) {
	var (
		id        int64
		createdAt time.Time
	)
	err := tx.QueryRowContext(ctx,
		"INSERT INTO orders (user_id, total, created_at) VALUES ($1, $2, NOW()) RETURNING id, created_at",
		userID, total,
	).Scan(&id, &createdAt)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to create order: %w", err)
	}

	// фиксируем цену каждой строки на момент оформления
	for _, item := range items {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, item_id, price) VALUES ($1, $2, $3)",
			id, item.ID, item.Price,
		)
		if err != nil {
			return 0, time.Time{}, fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return id, createdAt, nil
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `
		SELECT id, user_id, total, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	byID := make(map[int64]*models.Order)
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.Total, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
		byID[order.ID] = order
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	// строки заказов одним запросом, раскладываем по заказам в памяти
	linesQuery := `
		SELECT oi.order_id, oi.item_id, i.name, oi.price
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		JOIN items i ON oi.item_id = i.id
		WHERE o.user_id = $1
		ORDER BY oi.id`
	lineRows, err := r.db.QueryContext(ctx, linesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var orderID int64
		line := &models.OrderItem{}
		if err := lineRows.Scan(&orderID, &line.ItemID, &line.Name, &line.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if order, ok := byID[orderID]; ok {
			order.Items = append(order.Items, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
