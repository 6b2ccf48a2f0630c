package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/CSKCREATIONS/ola-sub000/internal/apierror"
	"github.com/CSKCREATIONS/ola-sub000/internal/repository"
)

// Disponibilidad is the result of a per-line stock check.
type Disponibilidad struct {
	Suficiente bool
	Deficit    int
}

// StockGuard flags insufficient-stock conditions. Advisory by default: a line
// with deficit is still added and calculated, it just carries a warning. The
// single blocking policy lives in the documento service (STOCK_BLOQUEANTE),
// never per screen.
type StockGuard interface {
	VerificarDisponibilidad(ctx context.Context, productoID uuid.UUID, cantidad int) (Disponibilidad, error)
}

type stockGuard struct {
	productos repository.ProductoRepository
}

func NewStockGuard(productos repository.ProductoRepository) StockGuard {
	return &stockGuard{productos: productos}
}

func (g *stockGuard) VerificarDisponibilidad(ctx context.Context, productoID uuid.UUID, cantidad int) (Disponibilidad, error) {
	p, err := g.productos.FindByID(ctx, productoID)
	if err != nil {
		return Disponibilidad{}, err
	}
	if p.StockActual >= cantidad {
		return Disponibilidad{Suficiente: true}, nil
	}
	return Disponibilidad{Suficiente: false, Deficit: cantidad - p.StockActual}, nil
}

// advertenciaDe builds the caller-facing warning for a deficit.
func advertenciaDe(productoID uuid.UUID, disp Disponibilidad) apierror.StockWarning {
	return apierror.StockWarning{ProductoID: productoID, Deficit: disp.Deficit}
}
