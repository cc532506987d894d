package tile

import (
	"errors"
	"fmt"
	"image"
)

// Default grid for sprite sheets: 2 columns, 3 rows.
const (
	DefaultCols = 2
	DefaultRows = 3
)

// DefaultGrid is the grid used when nothing else is configured
var DefaultGrid = Grid{Cols: DefaultCols, Rows: DefaultRows}

var (
	// ErrInvalidGrid is returned when a grid has a non-positive column or row count.
	ErrInvalidGrid = errors.New("grid columns and rows must be positive")
	// ErrEmptyTile is returned when the image is too small to give every cell at least one pixel.
	ErrEmptyTile = errors.New("image too small for grid")
)

// Grid is the fixed column/row layout of a sheet
type Grid struct {
	Cols int
	Rows int
}

// Validate checks that both counts are positive
func (g Grid) Validate() error {
	if g.Cols <= 0 || g.Rows <= 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidGrid, g.Cols, g.Rows)
	}
	return nil
}

// Count returns the number of tiles the grid produces
func (g Grid) Count() int {
	return g.Cols * g.Rows
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d", g.Cols, g.Rows)
}

// Cell is one grid position. Rect is expressed in source image coordinates.
type Cell struct {
	Index int
	Row   int
	Col   int
	Rect  image.Rectangle
}

// Tile is a cropped cell. Image always has its origin at (0,0).
type Tile struct {
	Cell
	Image *image.NRGBA
}
