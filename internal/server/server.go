package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kiesman99/tilesplit/internal/splitter"
	"github.com/kiesman99/tilesplit/pkg/tile"
)

const (
	// DefaultMaxBodyBytes caps uploaded sheets at 32 MiB
	DefaultMaxBodyBytes int64 = 32 << 20
	// DefaultMaxPixels caps the decoded size of a sheet
	DefaultMaxPixels int64 = 10000 * 10000
)

// Error codes returned in ErrorResponse.Error
const (
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeInvalidImage     = "INVALID_IMAGE"
	ErrCodeEmptyTile        = "EMPTY_TILE"
	ErrCodeTooLarge         = "REQUEST_TOO_LARGE"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    int       `json:"uptime"`
	Version   string    `json:"version"`
}

// ErrorResponse is the JSON body of every non-2xx response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestId string `json:"request_id,omitempty"`
}

// SplitParams are the optional query parameters of the split endpoint
type SplitParams struct {
	Cols *int `form:"cols" json:"cols,omitempty"`
	Rows *int `form:"rows" json:"rows,omitempty"`
}

// Server serves the tile splitting API
type Server struct {
	startTime    time.Time
	version      string
	grid         tile.Grid
	maxBodyBytes int64
	maxPixels    int64
}

// Option configures a Server
type Option func(*Server)

// WithGrid sets the grid used when a request does not specify one
func WithGrid(grid tile.Grid) Option {
	return func(s *Server) {
		s.grid = grid
	}
}

// WithMaxBodyBytes limits the size of uploaded sheets
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithMaxPixels limits width*height of uploaded sheets
func WithMaxPixels(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxPixels = n
		}
	}
}

// NewServer creates a new server instance
func NewServer(version string, opts ...Option) *Server {
	s := &Server{
		startTime:    time.Now(),
		version:      version,
		grid:         tile.DefaultGrid,
		maxBodyBytes: DefaultMaxBodyBytes,
		maxPixels:    DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes registers the API endpoints on r
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.GetHealth)
	r.Post("/split", s.SplitSheet)
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Uptime:    int(time.Since(s.startTime).Seconds()),
		Version:   s.version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding health response: %v", err)
	}
}

// SplitSheet splits the sheet in the request body and answers with a zip
// of the tiles
func (s *Server) SplitSheet(w http.ResponseWriter, r *http.Request) {
	requestID := generateRequestID()

	grid, err := s.bindGrid(r)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error(), requestID)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge,
				fmt.Sprintf("image exceeds %d bytes", maxErr.Limit), requestID)
			return
		}
		s.writeErrorResponse(w, http.StatusBadRequest, ErrCodeInvalidImage, err.Error(), requestID)
		return
	}

	// Check the header before decoding allocates the full bitmap
	cfg, err := tile.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, ErrCodeInvalidImage, err.Error(), requestID)
		return
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > s.maxPixels {
		s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge,
			fmt.Sprintf("image is %dx%d, limit is %d pixels", cfg.Width, cfg.Height, s.maxPixels), requestID)
		return
	}

	img, err := tile.Decode(bytes.NewReader(body))
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, ErrCodeInvalidImage, err.Error(), requestID)
		return
	}

	sp := splitter.New(splitter.Options{Grid: grid})
	geom, tiles, err := sp.SplitImage(img)
	if err != nil {
		if errors.Is(err, tile.ErrEmptyTile) {
			s.writeErrorResponse(w, http.StatusBadRequest, ErrCodeEmptyTile, err.Error(), requestID)
			return
		}
		s.writeErrorResponse(w, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", requestID)
		return
	}

	var archive bytes.Buffer
	if err := splitter.WriteArchive(&archive, tiles); err != nil {
		log.Printf("Error building archive for %s: %v", requestID, err)
		s.writeErrorResponse(w, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="tiles.zip"`)
	w.Header().Set("Content-Length", strconv.Itoa(archive.Len()))
	w.Header().Set("X-Request-ID", requestID)
	w.Header().Set("X-Tile-Count", strconv.Itoa(len(tiles)))
	w.Header().Set("X-Tile-Width", strconv.Itoa(geom.Width))
	w.Header().Set("X-Tile-Height", strconv.Itoa(geom.Height))

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(archive.Bytes()); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// bindGrid reads cols/rows from the query, falling back to the server grid
func (s *Server) bindGrid(r *http.Request) (tile.Grid, error) {
	var params SplitParams

	if err := runtime.BindQueryParameter("form", true, false, "cols", r.URL.Query(), &params.Cols); err != nil {
		return tile.Grid{}, fmt.Errorf("invalid format for parameter cols: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "rows", r.URL.Query(), &params.Rows); err != nil {
		return tile.Grid{}, fmt.Errorf("invalid format for parameter rows: %w", err)
	}

	grid := s.grid
	if params.Cols != nil {
		grid.Cols = *params.Cols
	}
	if params.Rows != nil {
		grid.Rows = *params.Rows
	}

	return grid, grid.Validate()
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message, requestID string) {
	response := ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestId: requestID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// generateRequestID generates a unique request ID
func generateRequestID() string {
	return fmt.Sprintf("req_%d", time.Now().UnixNano())
}
