package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// maxAmount is the largest value a decimal(14,2) money column holds.
var maxAmount = decimal.RequireFromString("999999999999.99")

// ParseAmount reads a money amount typed by the operator. It accepts "$",
// spaces, dot thousands separators when a decimal comma is present
// ("1.250,50") and plain decimals ("1250.50"). Blank input is zero.
func ParseAmount(field, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid("El campo %s debe ser un número válido", field)
	}
	amount = amount.Round(2)
	if amount.Abs().GreaterThan(maxAmount) {
		return decimal.Zero, invalid("El campo %s supera el máximo permitido", field)
	}
	return amount, nil
}

// parsePositive reads an amount that must be strictly positive.
func parsePositive(field, raw string) (decimal.Decimal, error) {
	amount, err := ParseAmount(field, raw)
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, invalid("El %s debe ser mayor a cero", field)
	}
	return amount, nil
}
