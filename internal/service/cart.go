package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/ecom-shop/internal/domain/models"
	"github.com/linemk/ecom-shop/internal/storage"
	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// CartService определяет интерфейс для мутаций корзины.
type CartService interface {
	AddItems(ctx context.Context, username string, itemID int64, quantity int) (*models.Cart, error)
	RemoveItems(ctx context.Context, username string, itemID int64, quantity int) (*models.Cart, error)
}

type cartService struct {
	log      *slog.Logger
	db       *sql.DB
	userRepo storage.UserStorage
	itemRepo storage.ItemStorage
	cartRepo storage.CartStorage
}

func NewCartService(log *slog.Logger, db *sql.DB, userRepo storage.UserStorage, itemRepo storage.ItemStorage, cartRepo storage.CartStorage) CartService {
	return &cartService{
		log:      log,
		db:       db,
		userRepo: userRepo,
		itemRepo: itemRepo,
		cartRepo: cartRepo,
	}
}

// AddItems добавляет quantity единиц товара в корзину пользователя.
// Вся мутация выполняется в одной транзакции с блокировкой строки корзины,
// итог пересчитывается по текущим ценам каталога.
func (s *cartService) AddItems(ctx context.Context, username string, itemID int64, quantity int) (*models.Cart, error) {
	const op = "service.CartService.AddItems"
	logger := s.log.With(slog.String("op", op), slog.String("username", username), slog.Int64("itemID", itemID), slog.Int("quantity", quantity))
	logger.Info("adding items to cart")

	if quantity < 1 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

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

	// товар должен существовать в каталоге
	if _, err := s.itemRepo.GetItemByIDTx(ctx, tx, itemID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get item: %w", op, err)
	}

	cartID, err := s.cartRepo.LockCartByUserIDTx(ctx, tx, user.ID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to lock cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to lock cart: %w", op, err)
	}

	if err := s.cartRepo.AddItems(ctx, tx, cartID, itemID, quantity); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to add items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to add items: %w", op, err)
	}

	cart, err := s.loadCart(ctx, tx, cartID, user.ID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to load cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to load cart: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("items added", slog.String("total", cart.Total.String()))
	return cart, nil
}

// RemoveItems удаляет до quantity единиц товара из корзины.
// Если единиц меньше, чем запрошено, удаляется сколько есть — это не ошибка.
func (s *cartService) RemoveItems(ctx context.Context, username string, itemID int64, quantity int) (*models.Cart, error) {
	const op = "service.CartService.RemoveItems"
	logger := s.log.With(slog.String("op", op), slog.String("username", username), slog.Int64("itemID", itemID), slog.Int("quantity", quantity))
	logger.Info("removing items from cart")

	if quantity < 1 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

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

	if _, err := s.itemRepo.GetItemByIDTx(ctx, tx, itemID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get item: %w", op, err)
	}

	cartID, err := s.cartRepo.LockCartByUserIDTx(ctx, tx, user.ID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to lock cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to lock cart: %w", op, err)
	}

	removed, err := s.cartRepo.RemoveItems(ctx, tx, cartID, itemID, quantity)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to remove items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to remove items: %w", op, err)
	}

	cart, err := s.loadCart(ctx, tx, cartID, user.ID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to load cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to load cart: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("items removed", slog.Int64("removed", removed), slog.String("total", cart.Total.String()))
	return cart, nil
}

func (s *cartService) loadCart(ctx context.Context, tx *sql.Tx, cartID, userID int64) (*models.Cart, error) {
	items, err := s.cartRepo.ListCartItemsTx(ctx, tx, cartID)
	if err != nil {
		return nil, err
	}
	return &models.Cart{
		ID:     cartID,
		UserID: userID,
		Items:  items,
		Total:  cartTotal(items),
	}, nil
}

// cartTotal — сумма текущих цен всех единиц товара в корзине.
// Точная десятичная арифметика, без плавающей точки.
func cartTotal(items []*models.Item) decimal.Decimal {
	total := decimal.New(0, -2)
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total
}
