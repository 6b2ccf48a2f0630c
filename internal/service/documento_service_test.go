package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/CSKCREATIONS/ola-sub000/internal/apierror"
	"github.com/CSKCREATIONS/ola-sub000/internal/dto"
	"github.com/CSKCREATIONS/ola-sub000/internal/model"
	"github.com/CSKCREATIONS/ola-sub000/internal/repository"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubDocumentoRepo is an in-memory DocumentoRepository.
// failDuplicados makes the next N CreateTx calls fail with a duplicate-key
// error, to exercise the sequence collision retry.
type stubDocumentoRepo struct {
	docs           map[uuid.UUID]*model.Documento
	codigos        map[string]bool
	failDuplicados int
}

func newStubDocumentoRepo() *stubDocumentoRepo {
	return &stubDocumentoRepo{
		docs:    make(map[uuid.UUID]*model.Documento),
		codigos: make(map[string]bool),
	}
}

func (r *stubDocumentoRepo) CreateTx(_ *gorm.DB, d *model.Documento) error {
	if r.failDuplicados > 0 {
		r.failDuplicados--
		return errors.New(`duplicate key value violates unique constraint "documentos_codigo_key"`)
	}
	if r.codigos[d.Codigo] {
		return errors.New(`duplicate key value violates unique constraint "documentos_codigo_key"`)
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	for i := range d.Items {
		if d.Items[i].ID == uuid.Nil {
			d.Items[i].ID = uuid.New()
		}
		d.Items[i].DocumentoID = d.ID
	}
	r.codigos[d.Codigo] = true
	r.docs[d.ID] = d
	return nil
}

func (r *stubDocumentoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Documento, error) {
	d, ok := r.docs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return d, nil
}

func (r *stubDocumentoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Documento, error) {
	for _, d := range r.docs {
		if d.Codigo == codigo {
			return d, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubDocumentoRepo) List(_ context.Context, filter dto.DocumentoFilter) ([]model.Documento, int64, error) {
	var out []model.Documento
	for _, d := range r.docs {
		if filter.Tipo != "" && d.Tipo != filter.Tipo {
			continue
		}
		if filter.Estado != "" && filter.Estado != "all" && d.Estado != filter.Estado {
			continue
		}
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (r *stubDocumentoRepo) UpdateTx(_ *gorm.DB, d *model.Documento) error {
	r.docs[d.ID] = d
	return nil
}

func (r *stubDocumentoRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string) error {
	d, ok := r.docs[id]
	if !ok {
		return errors.New("not found")
	}
	d.Estado = estado
	return nil
}

func (r *stubDocumentoRepo) ReplaceItemsTx(_ *gorm.DB, documentoID uuid.UUID, items []model.DocumentoItem) error {
	d, ok := r.docs[documentoID]
	if !ok {
		return errors.New("not found")
	}
	d.Items = items
	return nil
}

func (r *stubDocumentoRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.docs, id)
	return nil
}

func (r *stubDocumentoRepo) DB() *gorm.DB { return nil }

var _ repository.DocumentoRepository = (*stubDocumentoRepo)(nil)

// stubProductoRepo is an in-memory ProductoRepository.
type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	p, ok := r.productos[id]
	if !ok {
		return errors.New("not found")
	}
	p.Activo = activo
	return nil
}

func (r *stubProductoRepo) FindByProveedorID(_ context.Context, _ uuid.UUID) ([]model.Producto, error) {
	return nil, nil
}

func (r *stubProductoRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.productos[id]
	if !ok {
		return errors.New("not found")
	}
	p.StockActual += delta
	return nil
}

func (r *stubProductoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubProductoRepo) AjustarStock(_ context.Context, id uuid.UUID, delta int) error {
	return r.UpdateStockTx(nil, id, delta)
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// stubMovimientoRepo captures stock movements for assertion.
type stubMovimientoRepo struct {
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoRepo) Create(_ context.Context, m *model.MovimientoStock) error {
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, _ repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	return r.movimientos, int64(len(r.movimientos)), nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

// stubEnvioRepo captures queued envíos.
type stubEnvioRepo struct {
	envios map[uuid.UUID]*model.EnvioCorreo
}

func newStubEnvioRepo() *stubEnvioRepo {
	return &stubEnvioRepo{envios: make(map[uuid.UUID]*model.EnvioCorreo)}
}

func (r *stubEnvioRepo) Create(_ context.Context, e *model.EnvioCorreo) error {
	return r.CreateTx(nil, e)
}

func (r *stubEnvioRepo) CreateTx(_ *gorm.DB, e *model.EnvioCorreo) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.envios[e.ID] = e
	return nil
}

func (r *stubEnvioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.EnvioCorreo, error) {
	e, ok := r.envios[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return e, nil
}

func (r *stubEnvioRepo) Update(_ context.Context, e *model.EnvioCorreo) error {
	r.envios[e.ID] = e
	return nil
}

func (r *stubEnvioRepo) ListPendingRetries(_ context.Context, now time.Time, limit int) ([]model.EnvioCorreo, error) {
	var out []model.EnvioCorreo
	for _, e := range r.envios {
		if e.Estado == model.EnvioPendiente && e.NextRetryAt != nil && e.NextRetryAt.Before(now) {
			out = append(out, *e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

var _ repository.EnvioCorreoRepository = (*stubEnvioRepo)(nil)

// stubMailer records sends and optionally fails.
type stubMailer struct {
	fail     bool
	enviados []string
}

func (m *stubMailer) EnviarDocumento(_ context.Context, destinatario, _, _ string) error {
	if m.fail {
		return errors.New("smtp: connection refused")
	}
	m.enviados = append(m.enviados, destinatario)
	return nil
}

// ── Fixtures ──────────────────────────────────────────────────────────────────

type docTestEnv struct {
	svc         DocumentoService
	docs        *stubDocumentoRepo
	productos   *stubProductoRepo
	movimientos *stubMovimientoRepo
	envios      *stubEnvioRepo
	mailer      *stubMailer
}

func buildDocumentoSvc(stockBloqueante bool) *docTestEnv {
	docs := newStubDocumentoRepo()
	productos := newStubProductoRepo()
	movimientos := &stubMovimientoRepo{}
	envios := newStubEnvioRepo()
	mailer := &stubMailer{}
	secuencias := NewSecuenciaService(newStubSecuenciaRepo())
	guard := NewStockGuard(productos)

	svc := NewDocumentoService(docs, productos, movimientos, envios, secuencias, guard, mailer, nil, stockBloqueante)
	return &docTestEnv{svc: svc, docs: docs, productos: productos, movimientos: movimientos, envios: envios, mailer: mailer}
}

func seedProducto(r *stubProductoRepo, nombre string, precio string, stock int) *model.Producto {
	p := &model.Producto{
		ID:             uuid.New(),
		Nombre:         nombre,
		PrecioUnitario: decimal.RequireFromString(precio),
		StockActual:    stock,
		SubcategoriaID: uuid.New(),
		Activo:         true,
	}
	r.productos[p.ID] = p
	return p
}

func clienteCompleto() dto.ClienteInfoRequest {
	return dto.ClienteInfoRequest{
		Nombre:    "Ferretería La 14",
		Ciudad:    "Cali",
		Direccion: "Calle 5 # 38-25",
		Telefono:  "6024858585",
		Correo:    "compras@la14.co",
	}
}

func fechaStr(s string) *string { return &s }

// ── Crear ─────────────────────────────────────────────────────────────────────

func TestCrearCotizacion_CodigoYTotal(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Tubo PVC 3m", "21.00", 50)

	resp, err := env.svc.Crear(context.Background(), dto.CrearDocumentoRequest{
		Tipo:    model.TipoCotizacion,
		Cliente: clienteCompleto(),
		Items: []dto.ItemDocumentoRequest{
			{ProductoID: p.ID.String(), Cantidad: 2, DescuentoPct: decimal.RequireFromString("10")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "COT-00001", resp.Codigo)
	assert.Equal(t, model.EstadoBorrador, resp.Estado)
	assert.Equal(t, "37.80", resp.Total.StringFixed(2))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Tubo PVC 3m", resp.Items[0].Producto)
	assert.Empty(t, resp.Advertencias)
}

func TestCrearPedido_EstadoInicialAgendado(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Cemento 50kg", "32000", 100)

	resp, err := env.svc.Crear(context.Background(), dto.CrearDocumentoRequest{
		Tipo:          model.TipoPedido,
		Cliente:       clienteCompleto(),
		Items:         []dto.ItemDocumentoRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
		FechaAgendada: fechaStr("2026-09-10"),
		FechaEntrega:  fechaStr("2026-09-12"),
	})
	require.NoError(t, err)
	assert.Equal(t, "PED-00001", resp.Codigo)
	assert.Equal(t, model.EstadoAgendado, resp.Estado)
}

func TestCrear_SnapshotDePrecio(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Pintura blanca 1gal", "85.50", 10)

	resp, err := env.svc.Crear(context.Background(), dto.CrearDocumentoRequest{
		Tipo:    model.TipoCotizacion,
		Cliente: clienteCompleto(),
		Items:   []dto.ItemDocumentoRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
	})
	require.NoError(t, err)

	// El precio del catálogo cambia después; el documento conserva el snapshot.
	p.PrecioUnitario = decimal.RequireFromString("99.99")
	guardado, err := env.docs.FindByID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, "85.50", guardado.Items[0].PrecioUnitario.StringFixed(2))
}

func TestCrear_StockInsuficienteEsAdvertencia(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Teja de zinc", "45.00", 2)

	resp, err := env.svc.Crear(context.Background(), dto.CrearDocumentoRequest{
		Tipo:    model.TipoCotizacion,
		Cliente: clienteCompleto(),
		Items:   []dto.ItemDocumentoRequest{{ProductoID: p.ID.String(), Cantidad: 5}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Advertencias, 1)
	assert.Equal(t, p.ID, resp.Advertencias[0].ProductoID)
	assert.Equal(t, 3, resp.Advertencias[0].Deficit)
	assert.True(t, resp.Items[0].ConflictoStock)
	// La línea se agrega y calcula igual.
	assert.Equal(t, "225.00", resp.Total.StringFixed(2))
	// El stock no se toca al cotizar.
	assert.Equal(t, 2, env.productos.productos[p.ID].StockActual)
}

func TestCrear_StockBloqueanteRechaza(t *testing.T) {
	env := buildDocumentoSvc(true)
	p := seedProducto(env.productos, "Teja de zinc", "45.00", 2)

	_, err := env.svc.Crear(context.Background(), dto.CrearDocumentoRequest{
		Tipo:    model.TipoCotizacion,
		Cliente: clienteCompleto(),
		Items:   []dto.ItemDocumentoRequest{{ProductoID: p.ID.String(), Cantidad: 5}},
	})
	assert.ErrorIs(t, err, apierror.ErrStockInsuficiente)
}

func TestCrear_ProductoInactivoRechazado(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Descontinuado", "10.00", 100)
	p.Activo = false

	_, err := env.svc.Crear(context.Background(), dto.CrearDocumentoRequest{
		Tipo:    model.TipoCotizacion,
		Cliente: clienteCompleto(),
		Items:   []dto.ItemDocumentoRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
	})
	assert.ErrorContains(t, err, "inactivo")
}

func TestCrear_ValidacionEnLote(t *testing.T) {
	env := buildDocumentoSvc(false)

	_, err := env.svc.Crear(context.Background(), dto.CrearDocumentoRequest{
		Tipo:    model.TipoPedido,
		Cliente: dto.ClienteInfoRequest{Correo: "mal-formato"},
	})
	var errs apierror.ValidationErrors
	require.ErrorAs(t, err, &errs)
	// Nombre, ciudad, dirección, teléfono, correo inválido, dos fechas, items.
	assert.Len(t, errs, 8)
}

func TestCrear_ColisionDeCodigoReintentaUnaVez(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Alambre dulce kg", "8.50", 30)

	env.docs.failDuplicados = 1
	resp, err := env.svc.Crear(context.Background(), dto.CrearDocumentoRequest{
		Tipo:    model.TipoCotizacion,
		Cliente: clienteCompleto(),
		Items:   []dto.ItemDocumentoRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
	})
	require.NoError(t, err)
	// El primer intento consumió COT-00001; el reintento emite un código nuevo.
	assert.Equal(t, "COT-00002", resp.Codigo)
}

func TestCrear_DobleColisionEsConflicto(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Alambre dulce kg", "8.50", 30)

	env.docs.failDuplicados = 2
	_, err := env.svc.Crear(context.Background(), dto.CrearDocumentoRequest{
		Tipo:    model.TipoCotizacion,
		Cliente: clienteCompleto(),
		Items:   []dto.ItemDocumentoRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
	})
	assert.ErrorIs(t, err, apierror.ErrConflictoConcurrencia)
}

// ── Actualizar ────────────────────────────────────────────────────────────────

func TestActualizar_SoloEnEstadoInicial(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Tubo PVC 3m", "21.00", 50)

	resp, err := env.svc.Crear(context.Background(), dto.CrearDocumentoRequest{
		Tipo:    model.TipoCotizacion,
		Cliente: clienteCompleto(),
		Items:   []dto.ItemDocumentoRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
	})
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	// Editable en borrador: se reemplaza la lista y el total se recalcula.
	upd, err := env.svc.Actualizar(context.Background(), id, dto.ActualizarDocumentoRequest{
		Items: []dto.ItemDocumentoRequest{{ProductoID: p.ID.String(), Cantidad: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, "84.00", upd.Total.StringFixed(2))

	// Tras una transición deja de ser editable.
	_, err = env.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Accion: "enviar"})
	require.NoError(t, err)

	_, err = env.svc.Actualizar(context.Background(), id, dto.ActualizarDocumentoRequest{
		Items: []dto.ItemDocumentoRequest{{ProductoID: p.ID.String(), Cantidad: 9}},
	})
	var ilegal *apierror.IllegalTransition
	assert.ErrorAs(t, err, &ilegal)
}

// ── Transiciones ──────────────────────────────────────────────────────────────

func crearCotizacion(t *testing.T, env *docTestEnv, p *model.Producto) uuid.UUID {
	t.Helper()
	resp, err := env.svc.Crear(context.Background(), dto.CrearDocumentoRequest{
		Tipo:    model.TipoCotizacion,
		Cliente: clienteCompleto(),
		Items:   []dto.ItemDocumentoRequest{{ProductoID: p.ID.String(), Cantidad: 2}},
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func crearPedido(t *testing.T, env *docTestEnv, p *model.Producto, cantidad int) uuid.UUID {
	t.Helper()
	resp, err := env.svc.Crear(context.Background(), dto.CrearDocumentoRequest{
		Tipo:          model.TipoPedido,
		Cliente:       clienteCompleto(),
		Items:         []dto.ItemDocumentoRequest{{ProductoID: p.ID.String(), Cantidad: cantidad}},
		FechaAgendada: fechaStr("2026-09-10"),
		FechaEntrega:  fechaStr("2026-09-12"),
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func TestEnviarCotizacion_RegistraEnvio(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Tubo PVC 3m", "21.00", 50)
	id := crearCotizacion(t, env, p)

	resp, err := env.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Accion: "enviar"})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoEnviada, resp.Estado)
	assert.Equal(t, []string{"compras@la14.co"}, env.mailer.enviados)

	require.Len(t, env.envios.envios, 1)
	for _, e := range env.envios.envios {
		assert.Equal(t, model.EnvioEnviado, e.Estado)
		assert.Equal(t, id, e.DocumentoID)
	}
}

func TestEnviarCotizacion_FalloSMTPDejaBorrador(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Tubo PVC 3m", "21.00", 50)
	id := crearCotizacion(t, env, p)

	env.mailer.fail = true
	_, err := env.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Accion: "enviar"})
	assert.ErrorContains(t, err, "correo")

	doc, _ := env.docs.FindByID(context.Background(), id)
	assert.Equal(t, model.EstadoBorrador, doc.Estado)
	assert.Empty(t, env.envios.envios)
}

func TestEnviar_SoloCotizacionBorrador(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Cemento 50kg", "32000", 100)
	id := crearPedido(t, env, p, 2)

	_, err := env.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Accion: "enviar"})
	var ilegal *apierror.IllegalTransition
	assert.ErrorAs(t, err, &ilegal)
}

func TestCancelar_RequiereConfirmacion(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Tubo PVC 3m", "21.00", 50)
	id := crearCotizacion(t, env, p)

	_, err := env.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Accion: "cancelar"})
	assert.ErrorContains(t, err, "confirmación")

	resp, err := env.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Accion: "cancelar", Confirmado: true})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoCancelada, resp.Estado)
}

func TestCancelar_PedidoUsaEstadoCancelado(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Cemento 50kg", "32000", 100)
	id := crearPedido(t, env, p, 2)

	resp, err := env.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Accion: "cancelar", Confirmado: true})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoCancelado, resp.Estado)
}

func TestCancelar_TerminalRechazado(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Tubo PVC 3m", "21.00", 50)
	id := crearCotizacion(t, env, p)

	_, err := env.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Accion: "enviar"})
	require.NoError(t, err)

	// enviada es terminal: no se puede cancelar, ni con confirmación.
	_, err = env.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Accion: "cancelar", Confirmado: true})
	var ilegal *apierror.IllegalTransition
	require.ErrorAs(t, err, &ilegal)
	assert.Equal(t, model.EstadoEnviada, ilegal.Desde)
}

func TestRemisionar_CreaRemisionEnLaMismaOperacion(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Cemento 50kg", "32000", 100)
	id := crearPedido(t, env, p, 3)

	resp, err := env.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Accion: "remisionar"})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoRemisionado, resp.Estado)

	// La remisión existe, activa, con el pedido como origen y las líneas copiadas.
	remisiones, _, err := env.docs.List(context.Background(), dto.DocumentoFilter{Tipo: model.TipoRemision})
	require.NoError(t, err)
	require.Len(t, remisiones, 1)
	rem := remisiones[0]
	assert.Equal(t, "REM-00001", rem.Codigo)
	assert.Equal(t, model.EstadoActiva, rem.Estado)
	require.NotNil(t, rem.DocumentoOrigenID)
	assert.Equal(t, id, *rem.DocumentoOrigenID)
	require.Len(t, rem.Items, 1)
	assert.Equal(t, 3, rem.Items[0].Cantidad)
	assert.NotNil(t, rem.FechaRemision)

	// Remisionar no toca stock; eso ocurre al cerrar.
	assert.Equal(t, 100, env.productos.productos[p.ID].StockActual)
}

func TestRemisionar_SoloPedidoAgendado(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Tubo PVC 3m", "21.00", 50)
	id := crearCotizacion(t, env, p)

	_, err := env.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Accion: "remisionar"})
	var ilegal *apierror.IllegalTransition
	assert.ErrorAs(t, err, &ilegal)
}

func TestCerrarRemision_DescuentaStockYEncolaCorreo(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Cemento 50kg", "32000", 100)
	pedidoID := crearPedido(t, env, p, 3)

	_, err := env.svc.Transicionar(context.Background(), pedidoID, dto.TransicionRequest{Accion: "remisionar"})
	require.NoError(t, err)

	remisiones, _, _ := env.docs.List(context.Background(), dto.DocumentoFilter{Tipo: model.TipoRemision})
	require.Len(t, remisiones, 1)
	remID := remisiones[0].ID

	resp, err := env.svc.Transicionar(context.Background(), remID, dto.TransicionRequest{Accion: "cerrar"})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoCerrada, resp.Estado)

	// Recién acá sale el stock, con su movimiento de auditoría.
	assert.Equal(t, 97, env.productos.productos[p.ID].StockActual)
	require.Len(t, env.movimientos.movimientos, 1)
	mov := env.movimientos.movimientos[0]
	assert.Equal(t, "remision", mov.Tipo)
	assert.Equal(t, -3, mov.Cantidad)
	assert.Equal(t, 100, mov.StockAnterior)
	assert.Equal(t, 97, mov.StockNuevo)

	// El correo queda encolado pendiente; lo entrega el worker.
	require.Len(t, env.envios.envios, 1)
	for _, e := range env.envios.envios {
		assert.Equal(t, model.EnvioPendiente, e.Estado)
		assert.Equal(t, remID, e.DocumentoID)
	}
	assert.Empty(t, env.mailer.enviados)
}

func TestCerrarRemision_ProductoInconsultable(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Cemento 50kg", "32000", 100)
	pedidoID := crearPedido(t, env, p, 3)

	_, err := env.svc.Transicionar(context.Background(), pedidoID, dto.TransicionRequest{Accion: "remisionar"})
	require.NoError(t, err)

	remisiones, _, _ := env.docs.List(context.Background(), dto.DocumentoFilter{Tipo: model.TipoRemision})
	require.Len(t, remisiones, 1)
	remID := remisiones[0].ID

	// Si la fila del producto no se puede leer, el cierre falla completo:
	// nada de movimientos con stock_anterior inventado.
	delete(env.productos.productos, p.ID)

	_, err = env.svc.Transicionar(context.Background(), remID, dto.TransicionRequest{Accion: "cerrar"})
	require.ErrorContains(t, err, "error consultando stock")

	assert.Empty(t, env.movimientos.movimientos)
	assert.Empty(t, env.envios.envios)
	remisiones, _, _ = env.docs.List(context.Background(), dto.DocumentoFilter{Tipo: model.TipoRemision})
	require.Len(t, remisiones, 1)
	assert.Equal(t, model.EstadoActiva, remisiones[0].Estado)
}

func TestCerrar_SoloRemisionActiva(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Cemento 50kg", "32000", 100)
	id := crearPedido(t, env, p, 1)

	_, err := env.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Accion: "cerrar"})
	var ilegal *apierror.IllegalTransition
	assert.ErrorAs(t, err, &ilegal)
}

func TestTransicionar_AccionDesconocida(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Tubo PVC 3m", "21.00", 50)
	id := crearCotizacion(t, env, p)

	_, err := env.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Accion: "archivar"})
	assert.ErrorContains(t, err, "desconocida")
}

// ── Eliminar ──────────────────────────────────────────────────────────────────

func TestEliminar_SoloCancelados(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Tubo PVC 3m", "21.00", 50)
	id := crearCotizacion(t, env, p)

	err := env.svc.Eliminar(context.Background(), id)
	var ilegal *apierror.IllegalTransition
	require.ErrorAs(t, err, &ilegal)
	assert.Equal(t, "eliminado", ilegal.Hacia)

	_, err = env.svc.Transicionar(context.Background(), id, dto.TransicionRequest{Accion: "cancelar", Confirmado: true})
	require.NoError(t, err)

	require.NoError(t, env.svc.Eliminar(context.Background(), id))
	_, err = env.svc.Obtener(context.Background(), id)
	assert.Error(t, err)
}

// ── Secuencias por tipo ───────────────────────────────────────────────────────

func TestCrear_CodigosPorTipoIndependientes(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Tubo PVC 3m", "21.00", 50)

	for i := 0; i < 3; i++ {
		crearCotizacion(t, env, p)
	}
	id := crearPedido(t, env, p, 1)

	doc, err := env.docs.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "PED-00001", doc.Codigo)

	cot, err := env.docs.FindByCodigo(context.Background(), "COT-00003")
	require.NoError(t, err)
	assert.Equal(t, model.TipoCotizacion, cot.Tipo)
}

func TestCrear_FechaInvalida(t *testing.T) {
	env := buildDocumentoSvc(false)
	p := seedProducto(env.productos, "Cemento 50kg", "32000", 100)

	_, err := env.svc.Crear(context.Background(), dto.CrearDocumentoRequest{
		Tipo:          model.TipoPedido,
		Cliente:       clienteCompleto(),
		Items:         []dto.ItemDocumentoRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
		FechaAgendada: fechaStr("10/09/2026"),
		FechaEntrega:  fechaStr("2026-09-12"),
	})
	assert.ErrorContains(t, err, fmt.Sprintf("fecha inválida %q", "10/09/2026"))
}
