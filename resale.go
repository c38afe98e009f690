package givebox

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Resale validation messages.
const (
	MsgResaleFieldsRequired = "Original cost and purchase year are required for resale."
	MsgCostNotNumber        = "Original cost must be a number."
	MsgYearNotWhole         = "Purchase year must be a whole number."
)

var (
	errCost = errors.New(MsgCostNotNumber)
	errYear = errors.New(MsgYearNotWhole)
)

// ResaleEstimate is the payout the API records for a resale: 30% of cost for
// items up to two years old, 20% at three years and 10% beyond.
func ResaleEstimate(cost float64, year int, now time.Time) float64 {
	age := now.Year() - year
	switch {
	case age <= 2:
		return cost * 0.30
	case age == 3:
		return cost * 0.20
	default:
		return cost * 0.10
	}
}

// parseResaleInputs converts the raw cost and year fields.
func parseResaleInputs(cost, year string) (float64, int, error) {
	c, err := strconv.ParseFloat(strings.TrimSpace(cost), 64)
	if err != nil || math.IsNaN(c) || math.IsInf(c, 0) {
		return 0, 0, errCost
	}
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return 0, 0, errYear
	}
	return c, y, nil
}
