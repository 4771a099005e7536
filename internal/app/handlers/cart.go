package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/ecom-shop/internal/domain/models"
	"github.com/linemk/ecom-shop/internal/service"
	"github.com/linemk/ecom-shop/internal/storage"
)

// ModifyCartRequest представляет входной JSON для добавления/удаления товара.
type ModifyCartRequest struct {
	Username string `json:"username" validate:"required"`
	ItemID   int64  `json:"itemId" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// AddToCartHandler обрабатывает запрос POST /api/cart/addToCart.
func AddToCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return modifyCartHandler(log, "handlers.AddToCartHandler", cartService.AddItems)
}

// RemoveFromCartHandler обрабатывает запрос POST /api/cart/removeFromCart.
// Удаление большего количества, чем есть в корзине, не ошибка: удаляется сколько есть.
func RemoveFromCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return modifyCartHandler(log, "handlers.RemoveFromCartHandler", cartService.RemoveItems)
}

// обе мутации корзины различаются только вызываемой операцией сервиса
func modifyCartHandler(log *slog.Logger, op string, mutate func(ctx context.Context, username string, itemID int64, quantity int) (*models.Cart, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", op))

		var req ModifyCartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		cart, err := mutate(r.Context(), req.Username, req.ItemID, req.Quantity)
		if err != nil {
			logger.Error("cart mutation failed", slog.Any("error", err))
			switch {
			case errors.Is(err, storage.ErrUserNotFound), errors.Is(err, storage.ErrItemNotFound), errors.Is(err, storage.ErrCartNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, service.ErrInvalidQuantity):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(cart); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}
}
