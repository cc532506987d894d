package tile

import (
	"fmt"
	"image"
)

// Geometry holds the tile size derived from an image and a grid.
// Pixels past Width*Cols or Height*Rows belong to no tile.
type Geometry struct {
	Grid   Grid
	Origin image.Point
	Width  int
	Height int
}

// NewGeometry divides the bounds by the grid using integer division
func NewGeometry(bounds image.Rectangle, grid Grid) (Geometry, error) {
	if err := grid.Validate(); err != nil {
		return Geometry{}, err
	}

	g := Geometry{
		Grid:   grid,
		Origin: bounds.Min,
		Width:  bounds.Dx() / grid.Cols,
		Height: bounds.Dy() / grid.Rows,
	}

	if g.Width == 0 || g.Height == 0 {
		return Geometry{}, fmt.Errorf("%w: %dx%d image with %s grid", ErrEmptyTile, bounds.Dx(), bounds.Dy(), grid)
	}

	return g, nil
}

// Cells returns every cell in row-major order
func (g Geometry) Cells() []Cell {
	cells := make([]Cell, 0, g.Grid.Count())
	for row := 0; row < g.Grid.Rows; row++ {
		for col := 0; col < g.Grid.Cols; col++ {
			cells = append(cells, g.Cell(row, col))
		}
	}
	return cells
}

// Cell returns the cell at the given row and column
func (g Geometry) Cell(row, col int) Cell {
	x0 := g.Origin.X + col*g.Width
	y0 := g.Origin.Y + row*g.Height

	return Cell{
		Index: row*g.Grid.Cols + col,
		Row:   row,
		Col:   col,
		Rect:  image.Rect(x0, y0, x0+g.Width, y0+g.Height),
	}
}

// Covered is the part of the source that ends up in some tile
func (g Geometry) Covered() image.Rectangle {
	return image.Rectangle{
		Min: g.Origin,
		Max: g.Origin.Add(image.Pt(g.Width*g.Grid.Cols, g.Height*g.Grid.Rows)),
	}
}

// FileName returns the output name of the tile at index
func FileName(index int) string {
	return fmt.Sprintf("tile_%d.png", index)
}
