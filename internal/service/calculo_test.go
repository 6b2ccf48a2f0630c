package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/CSKCREATIONS/ola-sub000/internal/model"
)

func TestCalcularSubtotal_ConDescuento(t *testing.T) {
	// 2 × 21.00 con 10% de descuento = 37.80
	sub := CalcularSubtotal(2, decimal.RequireFromString("21.00"), decimal.RequireFromString("10"))
	assert.Equal(t, "37.80", sub.StringFixed(2))
}

func TestCalcularSubtotal_SinDescuento(t *testing.T) {
	sub := CalcularSubtotal(3, decimal.RequireFromString("199.99"), decimal.Zero)
	assert.Equal(t, "599.97", sub.StringFixed(2))
}

func TestCalcularSubtotal_RedondeoMedioArriba(t *testing.T) {
	// 1 × 0.335 × 3 → 1.005, que redondea hacia arriba a 1.01
	sub := CalcularSubtotal(3, decimal.RequireFromString("0.335"), decimal.Zero)
	assert.Equal(t, "1.01", sub.StringFixed(2))
}

func TestCalcularSubtotal_DescuentoPeriodico(t *testing.T) {
	// 1/3 de descuento produce un factor periódico; el resultado queda en 2dp
	sub := CalcularSubtotal(1, decimal.RequireFromString("100.00"), decimal.RequireFromString("33.33"))
	assert.Equal(t, "66.67", sub.StringFixed(2))
}

func TestCalcularTotal_SumaSubtotales(t *testing.T) {
	items := []model.DocumentoItem{
		{Subtotal: decimal.RequireFromString("21.00")},
		{Subtotal: decimal.RequireFromString("200.00")},
	}
	assert.Equal(t, "221.00", CalcularTotal(items).StringFixed(2))
}

func TestCalcularTotal_SinItems(t *testing.T) {
	assert.True(t, CalcularTotal(nil).IsZero())
}
