package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"0", "CERO PESOS"},
		{"1", "UN PESO"},
		{"31", "TREINTA Y UN PESOS"},
		{"100", "CIEN PESOS"},
		{"101", "CIENTO UN PESOS"},
		{"1500.5", "MIL QUINIENTOS PESOS CON 50/100"},
		{"21000", "VEINTIÚN MIL PESOS"},
		{"110000", "CIENTO DIEZ MIL PESOS"},
		{"1000000", "UN MILLÓN DE PESOS"},
		{"2350000", "DOS MILLONES TRESCIENTOS CINCUENTA MIL PESOS"},
		{"-96500", "MENOS NOVENTA Y SEIS MIL QUINIENTOS PESOS"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.expected, AmountInWords(decimal.RequireFromString(tt.amount)))
		})
	}
}
