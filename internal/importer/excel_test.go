package importer

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Brunomperetti/catalogo-repuestos/internal/model"
	"github.com/Brunomperetti/catalogo-repuestos/internal/storage"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createEmpresa(t *testing.T, db *gorm.DB, slug string) *model.Empresa {
	empresa := &model.Empresa{Nombre: "Empresa " + slug, Slug: slug}
	require.NoError(t, db.Create(empresa).Error)
	return empresa
}

// buildSheet produces an in-memory xlsx with the given header and rows.
func buildSheet(t *testing.T, header []string, rows [][]interface{}) io.Reader {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for r, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestImportExcelCreatesAndIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	layout := storage.NewLayoutAt(t.TempDir())
	empresa := createEmpresa(t, db, "demo")

	header := []string{"Codigo", "Descripcion", "Precio", "Categoria", "Marca", "Stock"}
	rows := [][]interface{}{
		{"VR-150", "Filtro de aire", 1500.50, "Filtros", "Mann", 10},
		{"VR-151", "Filtro de aceite", 980, "Filtros", "Mann", 4},
		{"XK-20", "Correa dentada", 3200, "Correas", "Gates", 0},
	}

	res, err := ImportExcel(db, layout, empresa, buildSheet(t, header, rows))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Nuevos)
	assert.Equal(t, 0, res.Actualizados)

	var count int64
	db.Model(&model.Producto{}).Where("empresa_id = ?", empresa.ID).Count(&count)
	assert.Equal(t, int64(3), count)

	var p model.Producto
	require.NoError(t, db.Where("codigo = ? AND empresa_id = ?", "VR-150", empresa.ID).First(&p).Error)
	assert.Equal(t, "Filtro de aire", p.Descripcion)
	assert.Equal(t, "Filtros", p.Categoria)
	assert.Equal(t, "Mann", p.Marca)
	assert.InDelta(t, 1500.50, p.Precio, 0.001)
	assert.Equal(t, 10, p.Stock)
	assert.True(t, p.Activo)

	// Re-importing the same sheet must not duplicate rows.
	res, err = ImportExcel(db, layout, empresa, buildSheet(t, header, rows))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Nuevos)
	assert.Equal(t, 3, res.Actualizados)

	db.Model(&model.Producto{}).Where("empresa_id = ?", empresa.ID).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestImportExcelMissingColumnAborts(t *testing.T) {
	db := setupTestDB(t)
	layout := storage.NewLayoutAt(t.TempDir())
	empresa := createEmpresa(t, db, "demo")

	header := []string{"Codigo", "Descripcion"} // precio missing
	rows := [][]interface{}{{"VR-150", "Filtro de aire"}}

	_, err := ImportExcel(db, layout, empresa, buildSheet(t, header, rows))
	require.Error(t, err)

	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "precio", missing.Column)

	var count int64
	db.Model(&model.Producto{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestImportExcelSkipsBlankCodes(t *testing.T) {
	db := setupTestDB(t)
	layout := storage.NewLayoutAt(t.TempDir())
	empresa := createEmpresa(t, db, "demo")

	header := []string{"codigo", "descripcion", "precio"}
	rows := [][]interface{}{
		{"", "Sin codigo", 100},
		{"   ", "Espacios", 100},
		{"A1", "Con codigo", 100},
	}

	res, err := ImportExcel(db, layout, empresa, buildSheet(t, header, rows))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Nuevos)
	assert.Equal(t, 0, res.Actualizados)
}

func TestImportExcelColumnAbsencePreservesValues(t *testing.T) {
	db := setupTestDB(t)
	layout := storage.NewLayoutAt(t.TempDir())
	empresa := createEmpresa(t, db, "demo")

	full := []string{"codigo", "descripcion", "precio", "categoria", "marca", "stock"}
	_, err := ImportExcel(db, layout, empresa, buildSheet(t, full, [][]interface{}{
		{"A1", "Widget", 10.0, "Cat", "Marca", 5},
	}))
	require.NoError(t, err)

	// Second sheet drops the optional columns entirely.
	partial := []string{"codigo", "descripcion", "precio"}
	res, err := ImportExcel(db, layout, empresa, buildSheet(t, partial, [][]interface{}{
		{"A1", "Widget v2", 12.0},
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Actualizados)

	var p model.Producto
	require.NoError(t, db.Where("codigo = ? AND empresa_id = ?", "A1", empresa.ID).First(&p).Error)
	assert.Equal(t, "Widget v2", p.Descripcion)
	assert.InDelta(t, 12.0, p.Precio, 0.001)
	assert.Equal(t, "Cat", p.Categoria, "absent categoria column must preserve prior value")
	assert.Equal(t, "Marca", p.Marca, "absent marca column must preserve prior value")
	assert.Equal(t, 5, p.Stock, "absent stock column must preserve prior value")
}

func TestImportExcelUnparseableStockKeepsPrior(t *testing.T) {
	db := setupTestDB(t)
	layout := storage.NewLayoutAt(t.TempDir())
	empresa := createEmpresa(t, db, "demo")

	header := []string{"codigo", "descripcion", "precio", "stock"}
	_, err := ImportExcel(db, layout, empresa, buildSheet(t, header, [][]interface{}{
		{"A1", "Widget", 10.0, 5},
	}))
	require.NoError(t, err)

	// Stock column present but unparseable: prior value is retained.
	res, err := ImportExcel(db, layout, empresa, buildSheet(t, header, [][]interface{}{
		{"A1", "Widget", 10.0, "muchos"},
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Actualizados)

	var p model.Producto
	require.NoError(t, db.Where("codigo = ?", "A1").First(&p).Error)
	assert.Equal(t, 5, p.Stock)
}

func TestImportExcelScopedToTenant(t *testing.T) {
	db := setupTestDB(t)
	layout := storage.NewLayoutAt(t.TempDir())
	empresaA := createEmpresa(t, db, "empresa-a")
	empresaB := createEmpresa(t, db, "empresa-b")

	header := []string{"codigo", "descripcion", "precio"}
	sheet := [][]interface{}{{"A1", "Widget", 10.0}}

	_, err := ImportExcel(db, layout, empresaA, buildSheet(t, header, sheet))
	require.NoError(t, err)

	// Same code imported into another tenant creates a separate row.
	res, err := ImportExcel(db, layout, empresaB, buildSheet(t, header, sheet))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Nuevos)

	// An update never moves a product across tenants.
	res, err = ImportExcel(db, layout, empresaB, buildSheet(t, header, [][]interface{}{
		{"A1", "Widget actualizado", 11.0},
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Actualizados)

	var p model.Producto
	require.NoError(t, db.Where("codigo = ? AND empresa_id = ?", "A1", empresaB.ID).First(&p).Error)
	assert.Equal(t, empresaB.ID, p.EmpresaID)
	assert.Equal(t, "Widget actualizado", p.Descripcion)

	p = model.Producto{}
	require.NoError(t, db.Where("codigo = ? AND empresa_id = ?", "A1", empresaA.ID).First(&p).Error)
	assert.Equal(t, "Widget", p.Descripcion, "other tenant's row must be untouched")
}

func TestImportExcelResolvesImageByConvention(t *testing.T) {
	db := setupTestDB(t)
	root := t.TempDir()
	layout := storage.NewLayoutAt(root)
	empresa := createEmpresa(t, db, "demo")

	dir := layout.ProductosDir(empresa.Slug)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A1.png"), []byte("png"), 0o644))

	header := []string{"codigo", "descripcion", "precio"}
	_, err := ImportExcel(db, layout, empresa, buildSheet(t, header, [][]interface{}{
		{"A1", "Con imagen", 10.0},
		{"B2", "Sin imagen", 20.0},
	}))
	require.NoError(t, err)

	var conImagen, sinImagen model.Producto
	require.NoError(t, db.Where("codigo = ?", "A1").First(&conImagen).Error)
	require.NoError(t, db.Where("codigo = ?", "B2").First(&sinImagen).Error)
	assert.Equal(t, "/static/empresas/demo/productos/A1.png", conImagen.ImagenURL)
	assert.Empty(t, sinImagen.ImagenURL)
}

func TestImportExcelRejectsGarbage(t *testing.T) {
	db := setupTestDB(t)
	layout := storage.NewLayoutAt(t.TempDir())
	empresa := createEmpresa(t, db, "demo")

	_, err := ImportExcel(db, layout, empresa, bytes.NewReader([]byte("not an xlsx")))
	require.Error(t, err)

	var count int64
	db.Model(&model.Producto{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

// The import creates every row behind a savepoint so a duplicate-key
// violation leaves the transaction usable and the row can be retried
// as an update. Exercise that sequence directly against the driver.
func TestRowCreateRecoversAfterConstraintViolation(t *testing.T) {
	db := setupTestDB(t)
	empresa := createEmpresa(t, db, "demo")

	err := db.Transaction(func(tx *gorm.DB) error {
		first := model.Producto{EmpresaID: empresa.ID, Codigo: "A1", Descripcion: "Filtro", Precio: 100, Activo: true}
		if err := tx.Create(&first).Error; err != nil {
			return err
		}

		if err := tx.SavePoint("fila").Error; err != nil {
			return err
		}
		dup := model.Producto{EmpresaID: empresa.ID, Codigo: "A1", Descripcion: "Duplicado", Precio: 110, Activo: true}
		require.Error(t, tx.Create(&dup).Error)
		if err := tx.RollbackTo("fila").Error; err != nil {
			return err
		}

		var existing model.Producto
		if err := tx.Where("codigo = ? AND empresa_id = ?", "A1", empresa.ID).First(&existing).Error; err != nil {
			return err
		}
		existing.Precio = 110
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}

		rest := model.Producto{EmpresaID: empresa.ID, Codigo: "B2", Descripcion: "Correa", Precio: 200, Activo: true}
		return tx.Create(&rest).Error
	})
	require.NoError(t, err)

	var count int64
	db.Model(&model.Producto{}).Where("empresa_id = ?", empresa.ID).Count(&count)
	assert.Equal(t, int64(2), count)

	var p model.Producto
	require.NoError(t, db.Where("codigo = ? AND empresa_id = ?", "A1", empresa.ID).First(&p).Error)
	assert.Equal(t, 110.0, p.Precio)
}
