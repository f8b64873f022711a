package service

import (
	"fmt"
	"time"

	"maskan/internal/domain"
	"maskan/internal/models"

	"github.com/shopspring/decimal"
)

// CalculateRent prices a stay. Up to NightlyRateCutoffNights nights the
// nightly rate applies. Longer stays pay whichever is cheaper, the nightly
// total or the monthly rate times the number of started 30-day blocks.
// Pure: same inputs always give the same result.
func CalculateRent(apartment *models.Apartment, checkIn, checkOut time.Time) (decimal.Decimal, error) {
	nights, err := StayNights(checkIn, checkOut)
	if err != nil {
		return decimal.Zero, err
	}

	nightlyTotal := apartment.NightlyPrice.Mul(decimal.NewFromInt(int64(nights)))
	if nights <= models.NightlyRateCutoffNights {
		return models.RoundMoney(nightlyTotal), nil
	}

	months := int64((nights + models.NightlyRateCutoffNights - 1) / models.NightlyRateCutoffNights)
	monthlyTotal := apartment.MonthlyPrice.Mul(decimal.NewFromInt(months))

	if monthlyTotal.LessThan(nightlyTotal) {
		return models.RoundMoney(monthlyTotal), nil
	}
	return models.RoundMoney(nightlyTotal), nil
}

// StayNights returns the number of nights between check-in and check-out.
// Check-out must be strictly after check-in.
func StayNights(checkIn, checkOut time.Time) (int, error) {
	if !checkOut.After(checkIn) {
		return 0, fmt.Errorf("%w: check-out date must be after check-in date", domain.ErrValidation)
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	if nights < 1 {
		return 0, fmt.Errorf("%w: stay must cover at least one night", domain.ErrValidation)
	}
	return nights, nil
}
