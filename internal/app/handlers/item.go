package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/ecom-shop/internal/service"
	"github.com/linemk/ecom-shop/internal/storage"
)

// ListItemsHandler обрабатывает запрос GET /api/items
func ListItemsHandler(log *slog.Logger, itemService service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListItemsHandler"
		logger := log.With(slog.String("op", op))

		items, err := itemService.List(r.Context())
		if err != nil {
			logger.Error("failed to list items", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(items); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

// GetItemHandler обрабатывает запрос GET /api/items/{id}
func GetItemHandler(log *slog.Logger, itemService service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetItemHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			logger.Error("invalid item id", slog.Any("error", err))
			http.Error(w, "invalid item id", http.StatusBadRequest)
			return
		}

		item, err := itemService.GetByID(r.Context(), id)
		if err != nil {
			logger.Error("failed to get item", slog.Any("error", err))
			if errors.Is(err, storage.ErrItemNotFound) {
				http.Error(w, "item not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(item); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

// GetItemsByNameHandler обрабатывает запрос GET /api/items/name/{name}.
// Название товара не уникально, поэтому ответ — список; пустой список — 404.
func GetItemsByNameHandler(log *slog.Logger, itemService service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetItemsByNameHandler"
		logger := log.With(slog.String("op", op))

		name := chi.URLParam(r, "name")
		if name == "" {
			logger.Error("name parameter is missing")
			http.Error(w, "name parameter is required", http.StatusBadRequest)
			return
		}

		items, err := itemService.GetByName(r.Context(), name)
		if err != nil {
			logger.Error("failed to get items by name", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if len(items) == 0 {
			http.Error(w, "items not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(items); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}
