package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountInWords spells out a peso amount the way it is written on receipts.
// 110000 -> "CIENTO DIEZ MIL PESOS"; 1500.5 -> "MIL QUINIENTOS PESOS CON 50/100".
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Round(2)
	prefix := ""
	if amount.IsNegative() {
		prefix = "MENOS "
		amount = amount.Neg()
	}

	whole := amount.Truncate(0)
	cents := amount.Sub(whole).Shift(2).IntPart()

	n := whole.IntPart()
	var words string
	switch {
	case n == 0:
		words = "CERO PESOS"
	case n == 1:
		words = "UN PESO"
	case n%1000000 == 0:
		words = apocope(integerWords(n)) + " DE PESOS"
	default:
		words = apocope(integerWords(n)) + " PESOS"
	}
	if cents > 0 {
		words += " CON " + twoDigits(cents) + "/100"
	}
	return prefix + words
}

// integerWords spells n (0 < n < 10^12) in groups of millions and thousands.
func integerWords(n int64) string {
	var parts []string
	if millions := n / 1000000; millions > 0 {
		if millions == 1 {
			parts = append(parts, "UN MILLÓN")
		} else {
			parts = append(parts, apocope(integerWords(millions))+" MILLONES")
		}
		n %= 1000000
	}
	if thousands := n / 1000; thousands > 0 {
		if thousands == 1 {
			parts = append(parts, "MIL")
		} else {
			parts = append(parts, apocope(below1000(thousands))+" MIL")
		}
		n %= 1000
	}
	if n > 0 {
		parts = append(parts, below1000(n))
	}
	return strings.Join(parts, " ")
}

func below1000(n int64) string {
	if n == 100 {
		return "CIEN"
	}
	var parts []string
	if h := n / 100; h > 0 {
		parts = append(parts, hundredWords[h])
		n %= 100
	}
	switch {
	case n == 0:
	case n < 30:
		parts = append(parts, smallWords[n])
	case n%10 == 0:
		parts = append(parts, tenWords[n/10])
	default:
		parts = append(parts, tenWords[n/10]+" Y "+smallWords[n%10])
	}
	return strings.Join(parts, " ")
}

// apocope shortens a trailing "UNO" before a noun: VEINTIUNO MIL -> VEINTIÚN MIL.
func apocope(words string) string {
	switch {
	case strings.HasSuffix(words, "VEINTIUNO"):
		return strings.TrimSuffix(words, "VEINTIUNO") + "VEINTIÚN"
	case strings.HasSuffix(words, "UNO"):
		return strings.TrimSuffix(words, "UNO") + "UN"
	}
	return words
}

func twoDigits(n int64) string {
	return fmt.Sprintf("%02d", n)
}

var smallWords = [30]string{
	"", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE",
	"DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE",
	"DIECISÉIS", "DIECISIETE", "DIECIOCHO", "DIECINUEVE",
	"VEINTE", "VEINTIUNO", "VEINTIDÓS", "VEINTITRÉS", "VEINTICUATRO",
	"VEINTICINCO", "VEINTISÉIS", "VEINTISIETE", "VEINTIOCHO", "VEINTINUEVE",
}

var tenWords = [10]string{
	"", "", "VEINTE", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA",
}

var hundredWords = [10]string{
	"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS",
	"SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS",
}
