// Package importer implements the bulk-load paths of the operator panel:
// spreadsheet reconciliation into product rows and ZIP extraction into a
// tenant's product-image directory.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Brunomperetti/catalogo-repuestos/internal/model"
	"github.com/Brunomperetti/catalogo-repuestos/internal/storage"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// requiredColumns must all be present in the sheet header or the import
// is rejected before touching any row.
var requiredColumns = []string{"codigo", "descripcion", "precio"}

// Result reports how many product rows an import created vs. updated.
type Result struct {
	Nuevos       int
	Actualizados int
}

// MissingColumnError reports a required spreadsheet column that is absent.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("falta columna obligatoria: %s", e.Column)
}

// field is the value of one named column in one row. Present is false
// when the sheet has no such column at all, which callers must treat
// differently from an empty cell.
type field struct {
	Present bool
	Raw     string
}

// Float parses the field as a price. ok is false when the field is
// absent, empty, or unparseable.
func (f field) Float() (float64, bool) {
	if !f.Present || f.Raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(f.Raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Int parses the field as a stock count. ok is false when the field is
// absent, empty, or unparseable.
func (f field) Int() (int, bool) {
	if !f.Present || f.Raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(f.Raw)
	if err != nil {
		// Sheets exported with numeric cells may render "12.0".
		fv, ferr := strconv.ParseFloat(f.Raw, 64)
		if ferr != nil {
			return 0, false
		}
		return int(fv), true
	}
	return v, true
}

// sheetReader resolves named columns against a normalized header row.
type sheetReader struct {
	cols map[string]int
}

func newSheetReader(header []string) *sheetReader {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			continue
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return &sheetReader{cols: cols}
}

func (s *sheetReader) has(name string) bool {
	_, ok := s.cols[name]
	return ok
}

// get returns the named field of a row. A column present in the header
// but beyond the end of a short row reads as an empty, present cell.
func (s *sheetReader) get(row []string, name string) field {
	idx, ok := s.cols[name]
	if !ok {
		return field{}
	}
	if idx >= len(row) {
		return field{Present: true}
	}
	return field{Present: true, Raw: strings.TrimSpace(row[idx])}
}

// ImportExcel reconciles a spreadsheet against the tenant's product rows.
// Rows are matched by (codigo, empresa). The whole import runs in one
// transaction: any failure rolls back every queued change.
func ImportExcel(db *gorm.DB, layout *storage.Layout, empresa *model.Empresa, r io.Reader) (Result, error) {
	var res Result

	f, err := excelize.OpenReader(r)
	if err != nil {
		return res, fmt.Errorf("abrir excel: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return res, fmt.Errorf("leer hoja %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return res, &MissingColumnError{Column: requiredColumns[0]}
	}

	reader := newSheetReader(rows[0])
	for _, col := range requiredColumns {
		if !reader.has(col) {
			return res, &MissingColumnError{Column: col}
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows[1:] {
			codigo := reader.get(row, "codigo").Raw
			if codigo == "" {
				continue
			}

			imagenURL := layout.FindProductImage(empresa.Slug, codigo)

			var existing model.Producto
			err := tx.Where("codigo = ? AND empresa_id = ?", codigo, empresa.ID).First(&existing).Error
			switch {
			case err == nil:
				applyRow(reader, row, &existing, imagenURL)
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				res.Actualizados++
			case errors.Is(err, gorm.ErrRecordNotFound):
				nuevo := newProducto(reader, row, empresa.ID, codigo, imagenURL)
				// The create runs behind a savepoint: on postgres a
				// constraint violation aborts the whole transaction
				// otherwise, and the retry below could never run.
				if err := tx.SavePoint("fila").Error; err != nil {
					return err
				}
				if createErr := tx.Create(&nuevo).Error; createErr != nil {
					// A concurrent import may have hit the (empresa, codigo)
					// uniqueness constraint first; treat that as an update.
					if err := tx.RollbackTo("fila").Error; err != nil {
						return err
					}
					ferr := tx.Where("codigo = ? AND empresa_id = ?", codigo, empresa.ID).First(&existing).Error
					if ferr != nil {
						return createErr
					}
					applyRow(reader, row, &existing, imagenURL)
					if err := tx.Save(&existing).Error; err != nil {
						return err
					}
					res.Actualizados++
					continue
				}
				res.Nuevos++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// applyRow overwrites an existing product with the row's values.
// Optional columns only overwrite when present in the sheet.
func applyRow(reader *sheetReader, row []string, p *model.Producto, imagenURL string) {
	if desc := reader.get(row, "descripcion"); desc.Raw != "" {
		p.Descripcion = desc.Raw
	}
	if cat := reader.get(row, "categoria"); cat.Present {
		p.Categoria = cat.Raw
	}
	if marca := reader.get(row, "marca"); marca.Present {
		p.Marca = marca.Raw
	}
	if precio, ok := reader.get(row, "precio").Float(); ok {
		p.Precio = precio
	}
	if stock, ok := reader.get(row, "stock").Int(); ok {
		p.Stock = stock
	}
	if imagenURL != "" {
		p.ImagenURL = imagenURL
	}
}

// newProducto builds a product from a row; absent optional columns
// default to zero values.
func newProducto(reader *sheetReader, row []string, empresaID uint, codigo, imagenURL string) model.Producto {
	precio, _ := reader.get(row, "precio").Float()
	stock, _ := reader.get(row, "stock").Int()
	return model.Producto{
		EmpresaID:   empresaID,
		Codigo:      codigo,
		Descripcion: reader.get(row, "descripcion").Raw,
		Categoria:   reader.get(row, "categoria").Raw,
		Marca:       reader.get(row, "marca").Raw,
		Precio:      precio,
		Stock:       stock,
		Activo:      true,
		ImagenURL:   imagenURL,
	}
}
