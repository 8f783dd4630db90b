package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID          string          `json:"id"`
	UserID      string          `json:"-"`
	Amount      decimal.Decimal `json:"amount"`
	PaidAt      time.Time       `json:"date"`
	Description string          `json:"description"`
}
