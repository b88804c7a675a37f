package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfitSample is one point of the cumulative realized-profit series reported
// by the CryptoBot API. The upstream does not guarantee any ordering.
type ProfitSample struct {
	Date       time.Time
	Cumulative decimal.Decimal
}

// Funds is the invested/current portfolio valuation for one account.
type Funds struct {
	Invested decimal.Decimal `json:"invested"`
	Current  decimal.Decimal `json:"current"`
}
