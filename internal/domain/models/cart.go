package models

import "github.com/shopspring/decimal"

// Cart представляет корзину пользователя.
// Items — мультимножество: количество товара задаётся повторением записей.
// Total всегда выводится из текущих цен товаров и отдельно в БД не хранится.
type Cart struct {
	ID     int64           `json:"id"`
	UserID int64           `json:"user_id"`
	Items  []*Item         `json:"items"`
	Total  decimal.Decimal `json:"total"`
}
