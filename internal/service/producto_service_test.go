package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CSKCREATIONS/ola-sub000/internal/apierror"
	"github.com/CSKCREATIONS/ola-sub000/internal/dto"
	"github.com/CSKCREATIONS/ola-sub000/internal/model"
)

type stubHistorialRepo struct {
	filas []*model.HistorialPrecio
}

func (r *stubHistorialRepo) Create(_ context.Context, h *model.HistorialPrecio) error {
	r.filas = append(r.filas, h)
	return nil
}

func (r *stubHistorialRepo) ListByProducto(_ context.Context, productoID uuid.UUID, _, _ int) ([]model.HistorialPrecio, int64, error) {
	var out []model.HistorialPrecio
	for _, h := range r.filas {
		if h.ProductoID == productoID {
			out = append(out, *h)
		}
	}
	return out, int64(len(out)), nil
}

type productoTestEnv struct {
	svc       ProductoService
	productos *stubProductoRepo
	catalogo  *stubCatalogoRepo
}

func buildProductoSvc() *productoTestEnv {
	productos := newStubProductoRepo()
	catalogo := newStubCatalogoRepo()
	svc := NewProductoService(
		productos,
		&stubHistorialRepo{},
		&stubMovimientoRepo{},
		NewCatalogoService(catalogo),
		nil,
	)
	return &productoTestEnv{svc: svc, productos: productos, catalogo: catalogo}
}

func TestActualizarProducto_MoverActivoASubcategoriaInactiva(t *testing.T) {
	env := buildProductoSvc()
	_, subs, _ := seedArbol(env.catalogo)

	p := seedProducto(env.productos, "Cemento gris 50kg", "28500.00", 40)
	p.SubcategoriaID = subs[0].ID

	subs[1].Activo = false

	destino := subs[1].ID.String()
	_, err := env.svc.Actualizar(context.Background(), p.ID, dto.ActualizarProductoRequest{
		SubcategoriaID: &destino,
	})

	var pi *apierror.ParentInactive
	require.ErrorAs(t, err, &pi)
	assert.Equal(t, subs[1].ID, pi.AncestroID)
	assert.Equal(t, subs[0].ID, p.SubcategoriaID, "el producto no debe quedar reubicado")
}

func TestActualizarProducto_MoverActivoBajoCategoriaInactiva(t *testing.T) {
	env := buildProductoSvc()
	cat, subs, _ := seedArbol(env.catalogo)

	p := seedProducto(env.productos, "Tubo PVC 3m", "12900.00", 25)
	p.SubcategoriaID = subs[0].ID

	// La subcategoría destino sigue activa pero su categoría no: la cadena
	// completa de ancestros debe estar activa para recibir productos activos.
	cat.Activo = false

	destino := subs[1].ID.String()
	_, err := env.svc.Actualizar(context.Background(), p.ID, dto.ActualizarProductoRequest{
		SubcategoriaID: &destino,
	})

	var pi *apierror.ParentInactive
	require.ErrorAs(t, err, &pi)
	assert.Equal(t, cat.ID, pi.AncestroID)
}

func TestActualizarProducto_MoverEntreSubcategoriasActivas(t *testing.T) {
	env := buildProductoSvc()
	_, subs, _ := seedArbol(env.catalogo)

	p := seedProducto(env.productos, "Arena fina bulto", "9800.00", 60)
	p.SubcategoriaID = subs[0].ID

	destino := subs[1].ID.String()
	resp, err := env.svc.Actualizar(context.Background(), p.ID, dto.ActualizarProductoRequest{
		SubcategoriaID: &destino,
	})

	require.NoError(t, err)
	assert.Equal(t, subs[1].ID.String(), resp.SubcategoriaID)
}

func TestActualizarProducto_InactivoPuedeMoverseASubcategoriaInactiva(t *testing.T) {
	env := buildProductoSvc()
	_, subs, _ := seedArbol(env.catalogo)

	p := seedProducto(env.productos, "Malla electrosoldada", "45000.00", 10)
	p.SubcategoriaID = subs[0].ID
	p.Activo = false

	subs[1].Activo = false

	destino := subs[1].ID.String()
	resp, err := env.svc.Actualizar(context.Background(), p.ID, dto.ActualizarProductoRequest{
		SubcategoriaID: &destino,
	})

	require.NoError(t, err)
	assert.Equal(t, subs[1].ID.String(), resp.SubcategoriaID)
	assert.False(t, resp.Activo)
}
