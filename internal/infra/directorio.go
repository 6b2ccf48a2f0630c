package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/CSKCREATIONS/ola-sub000/internal/dto"
)

// DirectorioClient queries the external business directory used for client
// autocomplete. Calls go through the circuit breaker so a directory outage
// degrades autocomplete to local-only instead of slowing every keystroke.
type DirectorioClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewDirectorioClient(baseURL string, cb *CircuitBreaker) *DirectorioClient {
	return &DirectorioClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		cb:         cb,
	}
}

type directorioEntry struct {
	Nombre    string `json:"nombre"`
	Ciudad    string `json:"ciudad"`
	Direccion string `json:"direccion"`
	Telefono  string `json:"telefono"`
	Correo    string `json:"correo"`
}

// Buscar returns up to limit directory entries matching nombre.
func (c *DirectorioClient) Buscar(ctx context.Context, nombre string, limit int) ([]dto.ClienteResponse, error) {
	var entries []directorioEntry

	err := c.cb.Execute(func() error {
		u := fmt.Sprintf("%s/buscar?nombre=%s&limit=%s",
			c.baseURL, url.QueryEscape(nombre), strconv.Itoa(limit))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("directorio: create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("directorio: unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("directorio: returned %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&entries)
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.ClienteResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ClienteResponse{
			Nombre:    e.Nombre,
			Ciudad:    e.Ciudad,
			Direccion: e.Direccion,
			Telefono:  e.Telefono,
			Correo:    e.Correo,
			Origen:    "directorio",
		})
	}
	return out, nil
}

// Estado exposes the breaker state for the health endpoint.
func (c *DirectorioClient) Estado() string {
	return c.cb.State().String()
}
