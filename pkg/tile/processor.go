package tile

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // registers the WebP decoder
)

// Open decodes the image at path. Any format registered with the image
// package is accepted.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return img, nil
}

// Decode reads an image from r
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// DecodeConfig reads only the dimensions and color model from r
func DecodeConfig(r io.Reader) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("decode image header: %w", err)
	}
	return cfg, nil
}

// Crop copies cell out of img
func Crop(img image.Image, cell Cell) Tile {
	return Tile{
		Cell:  cell,
		Image: imaging.Crop(img, cell.Rect),
	}
}

// Encode writes img to w as PNG
func Encode(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

// EncodeBytes encodes img as PNG into memory
func EncodeBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes img to path as PNG regardless of the extension, creating or
// truncating the file
func Save(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Encode(file, img); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
