package models

import "github.com/shopspring/decimal"

// Item представляет товар каталога
type Item struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"` // цена с фиксированной точностью (2 знака)
}
