package tile

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestNewGeometry(t *testing.T) {
	testCases := []struct {
		name       string
		bounds     image.Rectangle
		grid       Grid
		wantWidth  int
		wantHeight int
		wantErr    error
	}{
		{
			name:       "Even division",
			bounds:     image.Rect(0, 0, 100, 150),
			grid:       DefaultGrid,
			wantWidth:  50,
			wantHeight: 50,
		},
		{
			name:       "Remainder dropped",
			bounds:     image.Rect(0, 0, 101, 152),
			grid:       DefaultGrid,
			wantWidth:  50,
			wantHeight: 50,
		},
		{
			name:       "Single cell",
			bounds:     image.Rect(0, 0, 7, 9),
			grid:       Grid{Cols: 1, Rows: 1},
			wantWidth:  7,
			wantHeight: 9,
		},
		{
			name:       "Non-zero origin",
			bounds:     image.Rect(10, 20, 74, 84),
			grid:       Grid{Cols: 4, Rows: 4},
			wantWidth:  16,
			wantHeight: 16,
		},
		{
			name:    "Zero columns",
			bounds:  image.Rect(0, 0, 100, 100),
			grid:    Grid{Cols: 0, Rows: 3},
			wantErr: ErrInvalidGrid,
		},
		{
			name:    "Negative rows",
			bounds:  image.Rect(0, 0, 100, 100),
			grid:    Grid{Cols: 2, Rows: -1},
			wantErr: ErrInvalidGrid,
		},
		{
			name:    "Image narrower than grid",
			bounds:  image.Rect(0, 0, 1, 30),
			grid:    DefaultGrid,
			wantErr: ErrEmptyTile,
		},
		{
			name:    "Image shorter than grid",
			bounds:  image.Rect(0, 0, 30, 2),
			grid:    DefaultGrid,
			wantErr: ErrEmptyTile,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			geom, err := NewGeometry(tc.bounds, tc.grid)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Expected error %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if geom.Width != tc.wantWidth || geom.Height != tc.wantHeight {
				t.Errorf("Expected tile size %dx%d, got %dx%d", tc.wantWidth, tc.wantHeight, geom.Width, geom.Height)
			}
			if geom.Width*tc.grid.Cols > tc.bounds.Dx() || geom.Height*tc.grid.Rows > tc.bounds.Dy() {
				t.Errorf("Tiles exceed source bounds: %v", geom.Covered())
			}
		})
	}
}

func TestGeometryCells_RowMajor(t *testing.T) {
	geom, err := NewGeometry(image.Rect(0, 0, 100, 150), DefaultGrid)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []image.Rectangle{
		image.Rect(0, 0, 50, 50),
		image.Rect(50, 0, 100, 50),
		image.Rect(0, 50, 50, 100),
		image.Rect(50, 50, 100, 100),
		image.Rect(0, 100, 50, 150),
		image.Rect(50, 100, 100, 150),
	}

	cells := geom.Cells()
	if len(cells) != len(want) {
		t.Fatalf("Expected %d cells, got %d", len(want), len(cells))
	}

	for i, cell := range cells {
		if cell.Index != i {
			t.Errorf("Cell %d has index %d", i, cell.Index)
		}
		if cell.Index != cell.Row*geom.Grid.Cols+cell.Col {
			t.Errorf("Cell %d: index does not match row %d col %d", i, cell.Row, cell.Col)
		}
		if cell.Rect != want[i] {
			t.Errorf("Cell %d: expected %v, got %v", i, want[i], cell.Rect)
		}
	}
}

func TestGeometryCells_Origin(t *testing.T) {
	geom, err := NewGeometry(image.Rect(10, 20, 31, 50), Grid{Cols: 2, Rows: 3})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	last := geom.Cell(2, 1)
	if want := image.Rect(20, 40, 30, 50); last.Rect != want {
		t.Errorf("Expected %v, got %v", want, last.Rect)
	}
	if want := image.Rect(10, 20, 30, 50); geom.Covered() != want {
		t.Errorf("Expected covered %v, got %v", want, geom.Covered())
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(0); got != "tile_0.png" {
		t.Errorf("Expected tile_0.png, got %s", got)
	}
	if got := FileName(12); got != "tile_12.png" {
		t.Errorf("Expected tile_12.png, got %s", got)
	}
}

func TestCrop(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 20, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 20; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}

	// SubImage keeps source coordinates, so the cell must too
	sub := src.SubImage(image.Rect(4, 6, 20, 30))
	geom, err := NewGeometry(sub.Bounds(), Grid{Cols: 2, Rows: 3})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tl := Crop(sub, geom.Cell(1, 1))
	if tl.Image.Bounds() != image.Rect(0, 0, 8, 8) {
		t.Fatalf("Expected 8x8 tile at origin, got %v", tl.Image.Bounds())
	}

	got := tl.Image.NRGBAAt(0, 0)
	if got.R != 12 || got.G != 14 {
		t.Errorf("Expected pixel from (12,14), got (%d,%d)", got.R, got.G)
	}
}
