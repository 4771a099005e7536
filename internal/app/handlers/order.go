package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/ecom-shop/internal/service"
	"github.com/linemk/ecom-shop/internal/storage"
)

// SubmitOrderHandler обрабатывает запрос POST /api/order/submit/{username}.
// Заказ — снимок корзины на момент запроса; сама корзина не очищается.
func SubmitOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SubmitOrderHandler"
		logger := log.With(slog.String("op", op))

		username := chi.URLParam(r, "username")
		if username == "" {
			logger.Error("username parameter is missing")
			http.Error(w, "username parameter is required", http.StatusBadRequest)
			return
		}

		order, err := orderService.Submit(r.Context(), username)
		if err != nil {
			logger.Error("failed to submit order", slog.Any("error", err))
			if errors.Is(err, storage.ErrUserNotFound) || errors.Is(err, storage.ErrCartNotFound) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(order); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}
}

// OrderHistoryHandler обрабатывает запрос GET /api/order/history/{username}
func OrderHistoryHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderHistoryHandler"
		logger := log.With(slog.String("op", op))

		username := chi.URLParam(r, "username")
		if username == "" {
			logger.Error("username parameter is missing")
			http.Error(w, "username parameter is required", http.StatusBadRequest)
			return
		}

		orders, err := orderService.History(r.Context(), username)
		if err != nil {
			logger.Error("failed to get order history", slog.Any("error", err))
			if errors.Is(err, storage.ErrUserNotFound) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(orders); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}
}
