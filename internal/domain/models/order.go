package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order представляет заказ — снимок корзины на момент оформления.
// После создания заказ не меняется: цены строк и итог зафиксированы.
type Order struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Items     []*OrderItem    `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderItem — строка заказа с зафиксированной на момент оформления ценой
type OrderItem struct {
	ItemID int64           `json:"item_id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}
