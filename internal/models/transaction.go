package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single parsed sales record. Immutable once parsed.
type Transaction struct {
	CustomerID string
	Date       time.Time
	ProductID  string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
}

func (t Transaction) LineRevenue() decimal.Decimal {
	return t.Quantity.Mul(t.UnitPrice)
}

func (t Transaction) Month() MonthKey {
	return MonthOf(t.Date)
}

type HistoryPoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type ForecastPoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// ForecastRequest is a price-adjustment scenario. Multipliers apply per
// product; products absent from the map keep their current price.
type ForecastRequest struct {
	PriceMultipliers map[string]float64 `json:"price_multipliers" validate:"dive,gte=0.5,lte=1.5"`
	HorizonMonths    int                `json:"horizon_months" validate:"gte=1"`
}

type ForecastResult struct {
	Points       []ForecastPoint `json:"points"`
	TotalRevenue float64         `json:"total_revenue"`
}

type HistoryResult struct {
	Points []HistoryPoint `json:"points"`
}

type ProductList struct {
	Products []string `json:"products"`
}

type UploadResult struct {
	Rows int `json:"rows"`
}
