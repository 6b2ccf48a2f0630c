package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/CSKCREATIONS/ola-sub000/internal/dto"
	"github.com/CSKCREATIONS/ola-sub000/internal/model"
	"github.com/CSKCREATIONS/ola-sub000/internal/repository"
)

// DirectorioClient looks up clients in the external business directory.
// Best effort: autocomplete merges its hits with local records but never
// fails because the directory is down.
type DirectorioClient interface {
	Buscar(ctx context.Context, nombre string, limit int) ([]dto.ClienteResponse, error)
}

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	// Autocompletar merges local matches with external directory hits.
	Autocompletar(ctx context.Context, nombre string) ([]dto.ClienteResponse, error)
}

const autocompleteLimit = 10

type clienteService struct {
	repo       repository.ClienteRepository
	directorio DirectorioClient
}

func NewClienteService(repo repository.ClienteRepository, directorio DirectorioClient) ClienteService {
	return &clienteService{repo: repo, directorio: directorio}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{
		Nombre:    req.Nombre,
		Ciudad:    req.Ciudad,
		Direccion: req.Direccion,
		Telefono:  req.Telefono,
		Correo:    req.Correo,
		Activo:    true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	clientes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		data = append(data, *clienteToResponse(&clientes[i]))
	}
	return &dto.ClienteListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	if req.Nombre != nil {
		c.Nombre = *req.Nombre
	}
	if req.Ciudad != nil {
		c.Ciudad = *req.Ciudad
	}
	if req.Direccion != nil {
		c.Direccion = *req.Direccion
	}
	if req.Telefono != nil {
		c.Telefono = *req.Telefono
	}
	if req.Correo != nil {
		c.Correo = *req.Correo
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("cliente no encontrado")
	}
	return s.repo.SetActivo(ctx, id, false)
}

func (s *clienteService) Autocompletar(ctx context.Context, nombre string) ([]dto.ClienteResponse, error) {
	locales, err := s.repo.BuscarPorNombre(ctx, nombre, autocompleteLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClienteResponse, 0, len(locales))
	vistos := make(map[string]bool, len(locales))
	for i := range locales {
		r := clienteToResponse(&locales[i])
		out = append(out, *r)
		vistos[r.Correo] = true
	}

	if s.directorio == nil || len(out) >= autocompleteLimit {
		return out, nil
	}

	externos, err := s.directorio.Buscar(ctx, nombre, autocompleteLimit-len(out))
	if err != nil {
		// Directory down (or breaker open): local results still serve.
		log.Warn().Err(err).Msg("directorio de clientes no disponible")
		return out, nil
	}
	for _, e := range externos {
		if vistos[e.Correo] {
			continue
		}
		e.Origen = "directorio"
		out = append(out, e)
	}
	return out, nil
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:        c.ID.String(),
		Nombre:    c.Nombre,
		Ciudad:    c.Ciudad,
		Direccion: c.Direccion,
		Telefono:  c.Telefono,
		Correo:    c.Correo,
		Activo:    c.Activo,
		Origen:    "local",
	}
}
