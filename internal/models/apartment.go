package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Apartment struct {
	ID           int64           `json:"id" yaml:"id"`
	OwnerID      int64           `json:"owner_id" yaml:"owner_id"`
	City         string          `json:"city" yaml:"city"`
	Address      string          `json:"address" yaml:"address"`
	NightlyPrice decimal.Decimal `json:"nightly_price" yaml:"nightly_price"`
	MonthlyPrice decimal.Decimal `json:"monthly_price" yaml:"monthly_price"`
	Status       string          `json:"status" yaml:"status"`
	CreatedAt    time.Time       `json:"created_at" yaml:"-"`
	UpdatedAt    time.Time       `json:"updated_at" yaml:"-"`
}

func (a *Apartment) IsActive() bool {
	return a.Status == ApartmentActive
}
