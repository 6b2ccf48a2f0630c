package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/CSKCREATIONS/ola-sub000/internal/apierror"
	"github.com/CSKCREATIONS/ola-sub000/internal/dto"
	"github.com/CSKCREATIONS/ola-sub000/internal/model"
	"github.com/CSKCREATIONS/ola-sub000/internal/repository"
	"github.com/CSKCREATIONS/ola-sub000/internal/worker"
)

const fechaLayout = "2006-01-02"

// Mailer sends a document email. The cotización "enviar" transition is gated
// on this call succeeding, so implementations must be synchronous.
type Mailer interface {
	EnviarDocumento(ctx context.Context, destinatario, asunto, cuerpo string) error
}

// DocumentoService drives the lifecycle of cotizaciones, pedidos and
// remisiones: creation with sequential codes, line edits with price
// snapshots, the state machine, and hard deletion of cancelled documents.
type DocumentoService interface {
	Crear(ctx context.Context, req dto.CrearDocumentoRequest) (*dto.DocumentoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.DocumentoResponse, error)
	Listar(ctx context.Context, filter dto.DocumentoFilter) (*dto.DocumentoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarDocumentoRequest) (*dto.DocumentoResponse, error)
	Transicionar(ctx context.Context, id uuid.UUID, req dto.TransicionRequest) (*dto.DocumentoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type documentoService struct {
	repo        repository.DocumentoRepository
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
	envios      repository.EnvioCorreoRepository
	secuencias  SecuenciaService
	guard       StockGuard
	mailer      Mailer
	dispatcher  *worker.Dispatcher
	// stockBloqueante switches the stock guard from advisory to blocking.
	// One central policy, never per screen.
	stockBloqueante bool
}

func NewDocumentoService(
	repo repository.DocumentoRepository,
	productos repository.ProductoRepository,
	movimientos repository.MovimientoStockRepository,
	envios repository.EnvioCorreoRepository,
	secuencias SecuenciaService,
	guard StockGuard,
	mailer Mailer,
	dispatcher *worker.Dispatcher,
	stockBloqueante bool,
) DocumentoService {
	return &documentoService{
		repo:            repo,
		productos:       productos,
		movimientos:     movimientos,
		envios:          envios,
		secuencias:      secuencias,
		guard:           guard,
		mailer:          mailer,
		dispatcher:      dispatcher,
		stockBloqueante: stockBloqueante,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func (s *documentoService) Crear(ctx context.Context, req dto.CrearDocumentoRequest) (*dto.DocumentoResponse, error) {
	items, advertencias, err := s.resolverItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	doc := model.Documento{
		Tipo:   req.Tipo,
		Estado: model.EstadoInicialPorTipo(req.Tipo),
		Cliente: model.ClienteInfo{
			Nombre:    req.Cliente.Nombre,
			Ciudad:    req.Cliente.Ciudad,
			Direccion: req.Cliente.Direccion,
			Telefono:  req.Cliente.Telefono,
			Correo:    req.Cliente.Correo,
		},
		Items: items,
		Total: CalcularTotal(items),
	}
	if doc.FechaAgendada, err = parseFecha(req.FechaAgendada); err != nil {
		return nil, err
	}
	if doc.FechaEntrega, err = parseFecha(req.FechaEntrega); err != nil {
		return nil, err
	}
	if req.Tipo == model.TipoRemision {
		now := time.Now()
		doc.FechaRemision = &now
	}

	if errs := ValidarDocumento(&doc); len(errs) > 0 {
		return nil, errs
	}

	if err := s.crearConCodigo(ctx, &doc); err != nil {
		return nil, err
	}

	resp := documentoToResponse(&doc)
	resp.Advertencias = advertencias
	return resp, nil
}

// crearConCodigo issues the sequential code and persists the document.
// A duplicate-code collision (two issuers racing) gets exactly one internal
// retry with a freshly issued code; a second collision surfaces
// ErrConflictoConcurrencia to the caller.
func (s *documentoService) crearConCodigo(ctx context.Context, doc *model.Documento) error {
	for intento := 0; intento < 2; intento++ {
		err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			codigo, err := s.secuencias.SiguienteCodigoTx(tx, doc.Tipo)
			if err != nil {
				return err
			}
			doc.Codigo = codigo
			return s.repo.CreateTx(tx, doc)
		})
		if err == nil {
			return nil
		}
		if !esCodigoDuplicado(err) {
			return err
		}
		log.Warn().Str("codigo", doc.Codigo).Int("intento", intento+1).
			Msg("colisión de código de documento, reintentando")
	}
	return apierror.ErrConflictoConcurrencia
}

func esCodigoDuplicado(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key")
}

// resolverItems snapshots name and price from the catalog, computes line
// subtotals and collects advisory stock warnings. With STOCK_BLOQUEANTE the
// first deficit aborts instead.
func (s *documentoService) resolverItems(ctx context.Context, reqs []dto.ItemDocumentoRequest) ([]model.DocumentoItem, []apierror.StockWarning, error) {
	var items []model.DocumentoItem
	var advertencias []apierror.StockWarning

	for i, item := range reqs {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		p, err := s.productos.FindByID(ctx, pid)
		if err != nil {
			return nil, nil, fmt.Errorf("producto %s no encontrado", item.ProductoID)
		}
		if !p.Activo {
			return nil, nil, fmt.Errorf("producto %s está inactivo y no puede agregarse", p.Nombre)
		}

		conflicto := false
		disp, err := s.guard.VerificarDisponibilidad(ctx, pid, item.Cantidad)
		if err != nil {
			return nil, nil, err
		}
		if !disp.Suficiente {
			if s.stockBloqueante {
				return nil, nil, apierror.ErrStockInsuficiente
			}
			conflicto = true
			advertencias = append(advertencias, advertenciaDe(pid, disp))
		}

		items = append(items, model.DocumentoItem{
			ProductoID:     pid,
			NombreProducto: p.Nombre,
			Cantidad:       item.Cantidad,
			PrecioUnitario: p.PrecioUnitario,
			DescuentoPct:   item.DescuentoPct,
			Subtotal:       CalcularSubtotal(item.Cantidad, p.PrecioUnitario, item.DescuentoPct),
			Posicion:       i,
			ConflictoStock: conflicto,
		})
	}
	return items, advertencias, nil
}

// ── Lectura ───────────────────────────────────────────────────────────────────

func (s *documentoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.DocumentoResponse, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("documento no encontrado")
	}
	return documentoToResponse(doc), nil
}

func (s *documentoService) Listar(ctx context.Context, filter dto.DocumentoFilter) (*dto.DocumentoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	docs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.DocumentoResponse, 0, len(docs))
	for i := range docs {
		data = append(data, *documentoToResponse(&docs[i]))
	}
	return &dto.DocumentoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Actualizar ────────────────────────────────────────────────────────────────

// Actualizar replaces client data, dates and the full line set. Only documents
// still in their initial state are editable; once a transition ran the
// document is immutable.
func (s *documentoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarDocumentoRequest) (*dto.DocumentoResponse, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("documento no encontrado")
	}
	if doc.Estado != model.EstadoInicialPorTipo(doc.Tipo) {
		return nil, &apierror.IllegalTransition{
			Desde:  doc.Estado,
			Hacia:  doc.Estado,
			Motivo: "el documento ya no es editable",
		}
	}

	if req.Cliente != nil {
		doc.Cliente = model.ClienteInfo{
			Nombre:    req.Cliente.Nombre,
			Ciudad:    req.Cliente.Ciudad,
			Direccion: req.Cliente.Direccion,
			Telefono:  req.Cliente.Telefono,
			Correo:    req.Cliente.Correo,
		}
	}
	if doc.FechaAgendada, err = parseFechaKeep(req.FechaAgendada, doc.FechaAgendada); err != nil {
		return nil, err
	}
	if doc.FechaEntrega, err = parseFechaKeep(req.FechaEntrega, doc.FechaEntrega); err != nil {
		return nil, err
	}

	var advertencias []apierror.StockWarning
	if req.Items != nil {
		items, adv, err := s.resolverItems(ctx, req.Items)
		if err != nil {
			return nil, err
		}
		doc.Items = items
		doc.Total = CalcularTotal(items)
		advertencias = adv
	}

	if errs := ValidarDocumento(doc); len(errs) > 0 {
		return nil, errs
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if req.Items != nil {
			if err := s.repo.ReplaceItemsTx(tx, doc.ID, doc.Items); err != nil {
				return err
			}
		}
		return s.repo.UpdateTx(tx, doc)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := documentoToResponse(doc)
	resp.Advertencias = advertencias
	return resp, nil
}

// ── Transiciones ──────────────────────────────────────────────────────────────

func (s *documentoService) Transicionar(ctx context.Context, id uuid.UUID, req dto.TransicionRequest) (*dto.DocumentoResponse, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("documento no encontrado")
	}

	switch req.Accion {
	case "enviar":
		err = s.enviar(ctx, doc)
	case "cancelar":
		err = s.cancelar(ctx, doc, req.Confirmado)
	case "remisionar":
		err = s.remisionar(ctx, doc)
	case "cerrar":
		err = s.cerrar(ctx, doc)
	default:
		err = fmt.Errorf("acción desconocida: %q", req.Accion)
	}
	if err != nil {
		return nil, err
	}

	actualizado, err := s.repo.FindByID(ctx, doc.ID)
	if err != nil {
		// nil-db unit test mode: the in-memory doc already carries the new state.
		return documentoToResponse(doc), nil
	}
	return documentoToResponse(actualizado), nil
}

// enviar: cotización borrador → enviada. The email must go out before the
// state flips; an SMTP failure leaves the document in borrador.
func (s *documentoService) enviar(ctx context.Context, doc *model.Documento) error {
	if doc.Tipo != model.TipoCotizacion || doc.Estado != model.EstadoBorrador {
		return &apierror.IllegalTransition{Desde: doc.Estado, Hacia: model.EstadoEnviada}
	}
	if errs := ValidarDocumento(doc); len(errs) > 0 {
		return errs
	}

	asunto := fmt.Sprintf("Cotización %s", doc.Codigo)
	cuerpo := cuerpoCorreo(doc)
	if err := s.mailer.EnviarDocumento(ctx, doc.Cliente.Correo, asunto, cuerpo); err != nil {
		return fmt.Errorf("no se pudo enviar la cotización por correo: %w", err)
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		envio := &model.EnvioCorreo{
			DocumentoID:  doc.ID,
			Destinatario: doc.Cliente.Correo,
			Asunto:       asunto,
			Cuerpo:       cuerpo,
			Estado:       model.EnvioEnviado,
		}
		if err := s.envios.CreateTx(tx, envio); err != nil {
			return err
		}
		doc.Estado = model.EstadoEnviada
		return s.repo.UpdateEstadoTx(tx, doc.ID, model.EstadoEnviada)
	})
}

// cancelar moves any document from its initial state to its cancelled state.
// The UI confirmation must travel with the request; terminal documents are
// rejected, never coerced.
func (s *documentoService) cancelar(ctx context.Context, doc *model.Documento, confirmado bool) error {
	destino := model.EstadoCancelada
	if doc.Tipo == model.TipoPedido {
		destino = model.EstadoCancelado
	}
	if doc.EsTerminal() {
		return &apierror.IllegalTransition{
			Desde:  doc.Estado,
			Hacia:  destino,
			Motivo: "el documento está en un estado terminal",
		}
	}
	if !confirmado {
		return errors.New("la cancelación requiere confirmación explícita")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		doc.Estado = destino
		return s.repo.UpdateEstadoTx(tx, doc.ID, destino)
	})
}

// remisionar: pedido agendado → remisionado, creating the remisión in the
// same transaction so a crash can never leave a remisionado pedido without
// its remisión. The new document copies the client snapshot and lines and
// points back at the pedido.
func (s *documentoService) remisionar(ctx context.Context, doc *model.Documento) error {
	if doc.Tipo != model.TipoPedido || doc.Estado != model.EstadoAgendado {
		return &apierror.IllegalTransition{Desde: doc.Estado, Hacia: model.EstadoRemisionado}
	}
	if len(doc.Items) == 0 {
		return apierror.ValidationErrors{{Campo: "items", Mensaje: MsgSinProductos}}
	}
	if errs := ValidarDocumento(doc); len(errs) > 0 {
		return errs
	}

	now := time.Now()
	origenID := doc.ID
	remision := model.Documento{
		Tipo:              model.TipoRemision,
		Estado:            model.EstadoActiva,
		Cliente:           doc.Cliente,
		Total:             doc.Total,
		FechaRemision:     &now,
		DocumentoOrigenID: &origenID,
	}
	for _, it := range doc.Items {
		remision.Items = append(remision.Items, model.DocumentoItem{
			ProductoID:     it.ProductoID,
			NombreProducto: it.NombreProducto,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			DescuentoPct:   it.DescuentoPct,
			Subtotal:       it.Subtotal,
			Posicion:       it.Posicion,
			ConflictoStock: it.ConflictoStock,
		})
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		codigo, err := s.secuencias.SiguienteCodigoTx(tx, model.TipoRemision)
		if err != nil {
			return err
		}
		remision.Codigo = codigo
		if err := s.repo.CreateTx(tx, &remision); err != nil {
			return err
		}
		doc.Estado = model.EstadoRemisionado
		return s.repo.UpdateEstadoTx(tx, doc.ID, model.EstadoRemisionado)
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("pedido", doc.Codigo).
		Str("remision", remision.Codigo).
		Msg("pedido remisionado")
	return nil
}

// cerrar: remisión activa → cerrada. Stock leaves the warehouse here: each
// line decrements its product and leaves a movimiento row, all inside the
// transition transaction. The notification email is queued and delivered by
// the worker pool.
func (s *documentoService) cerrar(ctx context.Context, doc *model.Documento) error {
	if doc.Tipo != model.TipoRemision || doc.Estado != model.EstadoActiva {
		return &apierror.IllegalTransition{Desde: doc.Estado, Hacia: model.EstadoCerrada}
	}

	asunto := fmt.Sprintf("Remisión %s entregada", doc.Codigo)
	cuerpo := cuerpoCorreo(doc)
	var envio model.EnvioCorreo

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, it := range doc.Items {
			p, err := s.productos.FindByIDTx(tx, it.ProductoID)
			if err != nil {
				return fmt.Errorf("error consultando stock de %s: %w", it.NombreProducto, err)
			}
			stockAntes := p.StockActual
			if err := s.productos.UpdateStockTx(tx, it.ProductoID, -it.Cantidad); err != nil {
				return fmt.Errorf("error descontando stock de %s: %w", it.NombreProducto, err)
			}
			ref := doc.ID
			mov := &model.MovimientoStock{
				ProductoID:    it.ProductoID,
				Tipo:          "remision",
				Cantidad:      -it.Cantidad,
				StockAnterior: stockAntes,
				StockNuevo:    stockAntes - it.Cantidad,
				Motivo:        fmt.Sprintf("Remisión %s cerrada", doc.Codigo),
				ReferenciaID:  &ref,
			}
			if err := s.movimientos.CreateTx(tx, mov); err != nil {
				return err
			}
		}

		envio = model.EnvioCorreo{
			DocumentoID:  doc.ID,
			Destinatario: doc.Cliente.Correo,
			Asunto:       asunto,
			Cuerpo:       cuerpo,
			Estado:       model.EnvioPendiente,
		}
		if err := s.envios.CreateTx(tx, &envio); err != nil {
			return err
		}

		doc.Estado = model.EstadoCerrada
		return s.repo.UpdateEstadoTx(tx, doc.ID, model.EstadoCerrada)
	})
	if err != nil {
		return err
	}

	// Best-effort enqueue — the retry cron picks up anything the queue misses.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueEnvioCorreo(ctx, map[string]interface{}{
			"envio_id": envio.ID.String(),
		})
	}
	return nil
}

// ── Eliminar ──────────────────────────────────────────────────────────────────

// Eliminar hard-deletes a document. Only the cancelled estado of each kind
// permits deletion; anything else is an illegal transition.
func (s *documentoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("documento no encontrado")
	}
	if !doc.EsCancelado() {
		return &apierror.IllegalTransition{
			Desde:  doc.Estado,
			Hacia:  "eliminado",
			Motivo: "solo los documentos cancelados pueden eliminarse",
		}
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.DeleteTx(tx, doc.ID)
	})
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func parseFecha(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(fechaLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("fecha inválida %q: se espera AAAA-MM-DD", *s)
	}
	return &t, nil
}

// parseFechaKeep keeps the current value when the request omits the field.
func parseFechaKeep(s *string, actual *time.Time) (*time.Time, error) {
	if s == nil {
		return actual, nil
	}
	return parseFecha(s)
}

func cuerpoCorreo(doc *model.Documento) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Estimado/a %s,\n\n", doc.Cliente.Nombre)
	fmt.Fprintf(&b, "Documento: %s\n\n", doc.Codigo)
	for _, it := range doc.Items {
		fmt.Fprintf(&b, "  %d x %s — %s\n", it.Cantidad, it.NombreProducto, it.Subtotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", doc.Total.StringFixed(2))
	return b.String()
}

func formatFecha(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(fechaLayout)
	return &s
}

func documentoToResponse(d *model.Documento) *dto.DocumentoResponse {
	items := make([]dto.ItemDocumentoResponse, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, dto.ItemDocumentoResponse{
			ID:             it.ID.String(),
			ProductoID:     it.ProductoID.String(),
			Producto:       it.NombreProducto,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			DescuentoPct:   it.DescuentoPct,
			Subtotal:       it.Subtotal,
			ConflictoStock: it.ConflictoStock,
		})
	}
	var origen *string
	if d.DocumentoOrigenID != nil {
		s := d.DocumentoOrigenID.String()
		origen = &s
	}
	return &dto.DocumentoResponse{
		ID:     d.ID.String(),
		Tipo:   d.Tipo,
		Codigo: d.Codigo,
		Estado: d.Estado,
		Cliente: dto.ClienteInfoRequest{
			Nombre:    d.Cliente.Nombre,
			Ciudad:    d.Cliente.Ciudad,
			Direccion: d.Cliente.Direccion,
			Telefono:  d.Cliente.Telefono,
			Correo:    d.Cliente.Correo,
		},
		Items:             items,
		Total:             d.Total,
		FechaAgendada:     formatFecha(d.FechaAgendada),
		FechaEntrega:      formatFecha(d.FechaEntrega),
		FechaRemision:     formatFecha(d.FechaRemision),
		DocumentoOrigenID: origen,
		Advertencias:      nil,
		CreatedAt:         d.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
