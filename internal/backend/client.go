// Package backend is the HTTP client for the warehouse backend, which owns
// all real order and inventory state. Every call is a single
// request/response; nothing is retried here, failures surface to the caller
// as a *RequestError.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/beneficencia/almacen/internal/models"
)

// RequestError describes a failed backend call.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("backend %s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Client talks to the warehouse backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a backend client with the given base URL and request
// timeout.
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Inventory fetches the full inventory from GET /api/inventario.
func (c *Client) Inventory(ctx context.Context) (*models.InventoryResponse, error) {
	var resp models.InventoryResponse
	if err := c.getJSON(ctx, "/api/inventario", &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &RequestError{Method: http.MethodGet, Path: "/api/inventario", Err: fmt.Errorf("backend reported failure: %s", resp.Message)}
	}
	return &resp, nil
}

// Groups fetches the product group list from GET /api/inventario/grupos.
func (c *Client) Groups(ctx context.Context) ([]string, error) {
	var resp models.GroupsResponse
	if err := c.getJSON(ctx, "/api/inventario/grupos", &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &RequestError{Method: http.MethodGet, Path: "/api/inventario/grupos", Err: fmt.Errorf("backend reported failure: %s", resp.Message)}
	}
	return resp.Grupos, nil
}

// OutboundProducts fetches the products available for an outbound order
// from GET /ordenes-salida/productos. The backend returns a bare array.
func (c *Client) OutboundProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.getJSON(ctx, "/ordenes-salida/productos", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SubmitOrder posts a validated order form to the backend as a standard
// form submission with repeated productoIds/cantidades/precios fields.
// The backend is the authoritative re-validator and persister.
func (c *Client) SubmitOrder(ctx context.Context, path string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return &RequestError{Method: http.MethodPost, Path: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Method: http.MethodPost, Path: path, Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	// The backend answers form posts with a redirect to the order listing.
	if resp.StatusCode >= http.StatusBadRequest {
		return &RequestError{Method: http.MethodPost, Path: path, StatusCode: resp.StatusCode}
	}
	return nil
}

// DeleteOutboundOrder calls DELETE /ordenes-salida/eliminar/{id}.
func (c *Client) DeleteOutboundOrder(ctx context.Context, id int64) (*models.ActionResult, error) {
	path := "/ordenes-salida/eliminar/" + strconv.FormatInt(id, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return nil, &RequestError{Method: http.MethodDelete, Path: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Method: http.MethodDelete, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{Method: http.MethodDelete, Path: path, StatusCode: resp.StatusCode}
	}

	var result models.ActionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &RequestError{Method: http.MethodDelete, Path: path, Err: err}
	}
	return &result, nil
}

// Download is an open file-download stream from the backend. Callers must
// close Body.
type Download struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

// DownloadInventoryReport opens the full-inventory report stream from
// GET /descargar-inventario-completo. The filename comes from the
// Content-Disposition header when present.
func (c *Client) DownloadInventoryReport(ctx context.Context) (*Download, error) {
	return c.download(ctx, "/descargar-inventario-completo", "inventario_completo.pdf")
}

// PrintOutboundOrder opens the printable document stream for an outbound
// order from GET /ordenes-salida/imprimir/{numeroOrden}.
func (c *Client) PrintOutboundOrder(ctx context.Context, numeroOrden string) (*Download, error) {
	path := "/ordenes-salida/imprimir/" + url.PathEscape(numeroOrden)
	fallback := fmt.Sprintf("orden_salida_%s.pdf", numeroOrden)
	return c.download(ctx, path, fallback)
}

func (c *Client) download(ctx context.Context, path, fallbackName string) (*Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &RequestError{Method: http.MethodGet, Path: path, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Method: http.MethodGet, Path: path, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &RequestError{Method: http.MethodGet, Path: path, StatusCode: resp.StatusCode}
	}

	filename := fallbackName
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := params["filename"]; name != "" {
				filename = name
			}
		}
	}

	return &Download{
		Filename:    filename,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &RequestError{Method: http.MethodGet, Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Method: http.MethodGet, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RequestError{Method: http.MethodGet, Path: path, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &RequestError{Method: http.MethodGet, Path: path, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
