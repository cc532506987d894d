package splitter

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/kiesman99/tilesplit/pkg/tile"
)

// Defaults matching the sprite tooling this replaces
const (
	DefaultInput     = "spritesheet2.png"
	DefaultOutputDir = "output_tiles"
)

// Options contains all splitting parameters
type Options struct {
	OutputDir string
	Grid      tile.Grid
	// Progress receives one line per step. Nil discards progress.
	Progress io.Writer
}

// Result describes a finished split
type Result struct {
	Count    int
	Dir      string
	Files    []string
	Geometry tile.Geometry
}

// TileError reports a tile that could not be written. Tiles before it
// remain on disk.
type TileError struct {
	Index int
	Path  string
	Err   error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("write tile %d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *TileError) Unwrap() error {
	return e.Err
}

// Splitter cuts sheets into grid tiles
type Splitter struct {
	options  Options
	progress io.Writer
}

// New creates a splitter, filling in defaults for zero options
func New(opts Options) *Splitter {
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if opts.Grid == (tile.Grid{}) {
		opts.Grid = tile.DefaultGrid
	}

	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}

	return &Splitter{
		options:  opts,
		progress: progress,
	}
}

// Options returns the effective options
func (s *Splitter) Options() Options {
	return s.options
}

// Split decodes the sheet at input and writes one PNG per cell into the
// output directory. The directory is only created once the input decoded.
func (s *Splitter) Split(ctx context.Context, input string) (*Result, error) {
	img, err := tile.Open(input)
	if err != nil {
		return nil, err
	}

	geom, err := tile.NewGeometry(img.Bounds(), s.options.Grid)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(s.progress, "==Source: %s (%dx%d)\n", input, img.Bounds().Dx(), img.Bounds().Dy())
	fmt.Fprintf(s.progress, "==Grid: %s\n", geom.Grid)
	fmt.Fprintf(s.progress, "==Tile Size: %dx%d\n", geom.Width, geom.Height)

	if err := os.MkdirAll(s.options.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	result := &Result{
		Dir:      s.options.OutputDir,
		Files:    make([]string, 0, geom.Grid.Count()),
		Geometry: geom,
	}

	for _, cell := range geom.Cells() {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		t := tile.Crop(img, cell)
		path := filepath.Join(s.options.OutputDir, tile.FileName(result.Count))

		if err := tile.Save(t.Image, path); err != nil {
			return result, &TileError{Index: result.Count, Path: path, Err: err}
		}

		fmt.Fprintf(s.progress, "%s: %v\n", path, cell.Rect)
		result.Files = append(result.Files, path)
		result.Count++
	}

	return result, nil
}

// SplitImage crops every cell of img in memory, in row-major order
func (s *Splitter) SplitImage(img image.Image) (tile.Geometry, []tile.Tile, error) {
	geom, err := tile.NewGeometry(img.Bounds(), s.options.Grid)
	if err != nil {
		return tile.Geometry{}, nil, err
	}

	cells := geom.Cells()
	tiles := make([]tile.Tile, 0, len(cells))
	for _, cell := range cells {
		tiles = append(tiles, tile.Crop(img, cell))
	}

	return geom, tiles, nil
}
