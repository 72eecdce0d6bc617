package export

import (
	"fmt"
	"os"

	"github.com/san-kum/intervalo/internal/raster"
)

// WritePNG saves the raster to path.
func WritePNG(path string, im *raster.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	if err := im.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("write png %s: %w", path, err)
	}
	return f.Close()
}
