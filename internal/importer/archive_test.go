package importer

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Brunomperetti/catalogo-repuestos/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string]string) *bytes.Reader {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestExtractImagesFlattensAndOverwrites(t *testing.T) {
	layout := storage.NewLayoutAt(t.TempDir())

	n, err := ExtractImages(layout, "demo", buildZip(t, map[string]string{
		"A1.jpg":            "uno",
		"fotos/B2.png":      "dos",
		"fotos/sub/C3.webp": "tres",
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	dir := layout.ProductosDir("demo")
	for _, name := range []string{"A1.jpg", "B2.png", "C3.webp"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	// Same-named entries overwrite existing files.
	n, err = ExtractImages(layout, "demo", buildZip(t, map[string]string{
		"A1.jpg": "uno-v2",
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	content, err := os.ReadFile(filepath.Join(dir, "A1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "uno-v2", string(content))
}

func TestExtractImagesSkipsJunkEntries(t *testing.T) {
	layout := storage.NewLayoutAt(t.TempDir())

	n, err := ExtractImages(layout, "demo", buildZip(t, map[string]string{
		"__MACOSX/._A1.jpg": "resource fork",
		".DS_Store":         "junk",
		"fotos/":            "",
		"B2.png":            "ok",
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	names, err := layout.ListImages("demo")
	require.NoError(t, err)
	assert.Equal(t, []string{"B2.png"}, names)
}

func TestExtractImagesRejectsInvalidArchive(t *testing.T) {
	layout := storage.NewLayoutAt(t.TempDir())

	_, err := ExtractImages(layout, "demo", bytes.NewReader([]byte("not a zip")))
	require.Error(t, err)

	names, err := layout.ListImages("demo")
	require.NoError(t, err)
	assert.Empty(t, names)
}
