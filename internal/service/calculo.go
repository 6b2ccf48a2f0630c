package service

import (
	"github.com/shopspring/decimal"

	"github.com/CSKCREATIONS/ola-sub000/internal/model"
)

// calculo.go — monetary arithmetic for document lines and totals.
// One rounding rule everywhere: half-up to 2 decimals, applied both when
// computing a line subtotal and when summing a document, so the two never
// drift by a cent.

var cien = decimal.NewFromInt(100)

// Redondear2 rounds half-up to 2 decimal places.
func Redondear2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// CalcularSubtotal computes cantidad × precio × (1 − descuentoPct/100),
// rounded half-up to 2 decimals.
func CalcularSubtotal(cantidad int, precioUnitario, descuentoPct decimal.Decimal) decimal.Decimal {
	bruto := precioUnitario.Mul(decimal.NewFromInt(int64(cantidad)))
	factor := decimal.NewFromInt(1).Sub(descuentoPct.Div(cien))
	return Redondear2(bruto.Mul(factor))
}

// CalcularTotal sums the already-rounded line subtotals and rounds the sum
// with the same rule.
func CalcularTotal(items []model.DocumentoItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}
	return Redondear2(total)
}
