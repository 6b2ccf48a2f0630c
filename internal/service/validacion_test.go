package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CSKCREATIONS/ola-sub000/internal/apierror"
	"github.com/CSKCREATIONS/ola-sub000/internal/model"
)

func itemValido() model.DocumentoItem {
	return model.DocumentoItem{
		ProductoID:     uuid.New(),
		NombreProducto: "Caja térmica 20L",
		Cantidad:       2,
		PrecioUnitario: decimal.RequireFromString("21.00"),
		Subtotal:       decimal.RequireFromString("42.00"),
	}
}

func campos(errs apierror.ValidationErrors) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Campo)
	}
	return out
}

func TestValidarDocumento_CotizacionValida(t *testing.T) {
	doc := &model.Documento{
		Tipo: model.TipoCotizacion,
		Cliente: model.ClienteInfo{
			Nombre:   "Distribuidora El Trébol",
			Telefono: "3001234567",
			Correo:   "compras@eltrebol.co",
		},
		Items: []model.DocumentoItem{itemValido()},
	}
	assert.Empty(t, ValidarDocumento(doc))
}

func TestValidarDocumento_RecolectaTodosLosErrores(t *testing.T) {
	// Documento vacío: todos los campos faltan y todas las violaciones
	// llegan juntas, nunca una por request.
	doc := &model.Documento{Tipo: model.TipoPedido}
	errs := ValidarDocumento(doc)

	got := campos(errs)
	assert.Contains(t, got, "cliente.nombre")
	assert.Contains(t, got, "cliente.ciudad")
	assert.Contains(t, got, "cliente.direccion")
	assert.Contains(t, got, "cliente.telefono")
	assert.Contains(t, got, "cliente.correo")
	assert.Contains(t, got, "fecha_agendada")
	assert.Contains(t, got, "fecha_entrega")
	assert.Contains(t, got, "items")
	assert.Len(t, errs, 8)
}

func TestValidarDocumento_CotizacionNoRequiereDireccion(t *testing.T) {
	doc := &model.Documento{
		Tipo: model.TipoCotizacion,
		Cliente: model.ClienteInfo{
			Nombre:   "Cliente Puntual",
			Telefono: "3110000000",
			Correo:   "cliente@example.com",
		},
		Items: []model.DocumentoItem{itemValido()},
	}
	errs := ValidarDocumento(doc)
	assert.NotContains(t, campos(errs), "cliente.ciudad")
	assert.NotContains(t, campos(errs), "cliente.direccion")
}

func TestValidarDocumento_CorreoInvalido(t *testing.T) {
	doc := &model.Documento{
		Tipo: model.TipoCotizacion,
		Cliente: model.ClienteInfo{
			Nombre:   "Cliente",
			Telefono: "3110000000",
			Correo:   "no-es-un-correo",
		},
		Items: []model.DocumentoItem{itemValido()},
	}
	errs := ValidarDocumento(doc)
	require.Len(t, errs, 1)
	assert.Equal(t, "cliente.correo", errs[0].Campo)
	assert.Equal(t, MsgCorreoInvalido, errs[0].Mensaje)
}

func TestValidarDocumento_LineasNumeradas(t *testing.T) {
	malo := itemValido()
	malo.Cantidad = 0
	doc := &model.Documento{
		Tipo: model.TipoCotizacion,
		Cliente: model.ClienteInfo{
			Nombre:   "Cliente",
			Telefono: "3110000000",
			Correo:   "cliente@example.com",
		},
		Items: []model.DocumentoItem{itemValido(), malo},
	}
	errs := ValidarDocumento(doc)
	require.Len(t, errs, 1)
	assert.Equal(t, "items[1].cantidad", errs[0].Campo)
	assert.Equal(t, "Producto 2: "+MsgCantidadInvalida, errs[0].Mensaje)
}

func TestValidarDocumento_RemisionRequiereFecha(t *testing.T) {
	doc := &model.Documento{
		Tipo: model.TipoRemision,
		Cliente: model.ClienteInfo{
			Nombre:    "Cliente",
			Ciudad:    "Bogotá",
			Direccion: "Cra 7 # 12-34",
			Telefono:  "3110000000",
			Correo:    "cliente@example.com",
		},
		Items: []model.DocumentoItem{itemValido()},
	}
	errs := ValidarDocumento(doc)
	require.Len(t, errs, 1)
	assert.Equal(t, "fecha_remision", errs[0].Campo)

	now := time.Now()
	doc.FechaRemision = &now
	assert.Empty(t, ValidarDocumento(doc))
}
