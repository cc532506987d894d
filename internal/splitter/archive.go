package splitter

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/kiesman99/tilesplit/pkg/tile"
)

// WriteArchive writes tiles as a zip of tile_<index>.png entries
func WriteArchive(w io.Writer, tiles []tile.Tile) error {
	zw := zip.NewWriter(w)

	for _, t := range tiles {
		entry, err := zw.Create(tile.FileName(t.Index))
		if err != nil {
			zw.Close()
			return fmt.Errorf("create archive entry %d: %w", t.Index, err)
		}
		if err := tile.Encode(entry, t.Image); err != nil {
			zw.Close()
			return fmt.Errorf("encode tile %d: %w", t.Index, err)
		}
	}

	return zw.Close()
}
