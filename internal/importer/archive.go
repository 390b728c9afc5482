package importer

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Brunomperetti/catalogo-repuestos/internal/storage"
)

// ExtractImages unpacks an uploaded ZIP of product images into the
// tenant's product-image directory, overwriting same-named files.
// Directory structure inside the archive is flattened to base names.
// Returns the number of files written. The temporary archive copy is
// removed on every path.
func ExtractImages(layout *storage.Layout, slug string, upload io.Reader) (int, error) {
	tmp, err := os.CreateTemp("", "imagenes-*.zip")
	if err != nil {
		return 0, fmt.Errorf("crear archivo temporal: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, upload); err != nil {
		return 0, fmt.Errorf("guardar zip: %w", err)
	}

	zr, err := zip.OpenReader(tmp.Name())
	if err != nil {
		return 0, fmt.Errorf("abrir zip: %w", err)
	}
	defer zr.Close()

	dir := layout.ProductosDir(slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	extracted := 0
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(f.Name)
		// Entries like "__MACOSX/._foo.jpg" or traversal names are junk.
		if name == "" || name == "." || strings.HasPrefix(name, ".") || strings.Contains(name, "..") {
			continue
		}
		if err := extractFile(f, filepath.Join(dir, name)); err != nil {
			return extracted, fmt.Errorf("extraer %s: %w", f.Name, err)
		}
		extracted++
	}
	return extracted, nil
}

func extractFile(f *zip.File, dst string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
