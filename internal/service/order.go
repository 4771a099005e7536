package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/linemk/ecom-shop/internal/domain/models"
	"github.com/linemk/ecom-shop/internal/storage"
)

// OrderService определяет интерфейс оформления заказов и истории.
type OrderService interface {
	Submit(ctx context.Context, username string) (*models.Order, error)
	History(ctx context.Context, username string) ([]*models.Order, error)
}

type orderService struct {
	log       *slog.Logger
	db        *sql.DB
	userRepo  storage.UserStorage
	cartRepo  storage.CartStorage
	orderRepo storage.OrderStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, userRepo storage.UserStorage, cartRepo storage.CartStorage, orderRepo storage.OrderStorage) OrderService {
	return &orderService{
		log:       log,
		db:        db,
		userRepo:  userRepo,
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
	}
}

// Submit оформляет заказ по текущему содержимому корзины пользователя.
// Список товаров и итог копируются в заказ и после этого не меняются,
// даже если цены в каталоге изменятся. Корзина при оформлении не очищается.
// Пустая корзина даёт заказ с нулевым итогом.
func (s *orderService) Submit(ctx context.Context, username string) (*models.Order, error) {
	const op = "service.OrderService.Submit"
	logger := s.log.With(slog.String("op", op), slog.String("username", username))
	logger.Info("submitting order")

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// блокируем корзину, чтобы снимок не разъехался с конкурентной мутацией
	cartID, err := s.cartRepo.LockCartByUserIDTx(ctx, tx, user.ID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to lock cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to lock cart: %w", op, err)
	}

	items, err := s.cartRepo.ListCartItemsTx(ctx, tx, cartID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to load cart items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to load cart items: %w", op, err)
	}

	total := cartTotal(items)
	orderID, createdAt, err := s.orderRepo.CreateOrder(ctx, tx, user.ID, items, total)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	order := &models.Order{
		ID:        orderID,
		UserID:    user.ID,
		Total:     total,
		CreatedAt: createdAt,
	}
	for _, item := range items {
		order.Items = append(order.Items, &models.OrderItem{
			ItemID: item.ID,
			Name:   item.Name,
			Price:  item.Price,
		})
	}

	logger.Info("order submitted", slog.Int64("orderID", orderID), slog.String("total", total.String()))
	return order, nil
}

// History возвращает ранее оформленные заказы пользователя.
func (s *orderService) History(ctx context.Context, username string) ([]*models.Order, error) {
	const op = "service.OrderService.History"
	logger := s.log.With(slog.String("op", op), slog.String("username", username))
	logger.Info("getting order history")

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, user.ID)
	if err != nil {
		logger.Error("failed to get orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get orders: %w", op, err)
	}
	return orders, nil
}
