package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/Brunomperetti/catalogo-repuestos/internal/importer"
	"github.com/Brunomperetti/catalogo-repuestos/internal/model"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/database"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/logger"
	"github.com/Brunomperetti/catalogo-repuestos/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UploadExcel imports a product spreadsheet into the target tenant and
// reports new/updated counts back to the panel.
func UploadExcel(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	empresa, err := resolveTarget(c, db)
	if err != nil {
		log.Warn("Excel upload without target tenant", zap.Error(err))
		return redirectError(c, "No hay empresa activa")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return redirectError(c, "Falta el archivo Excel")
	}
	src, err := fh.Open()
	if err != nil {
		return redirectError(c, "Error al leer el archivo Excel")
	}
	defer src.Close()

	defer prometheus.TrackDBOperation("import_excel")(time.Now())
	res, err := importer.ImportExcel(db, layout, empresa, src)
	if err != nil {
		prometheus.RecordImport("excel", "error")

		var missing *importer.MissingColumnError
		if errors.As(err, &missing) {
			log.Warn("Excel import rejected",
				zap.Uint("empresa_id", empresa.ID),
				zap.String("missing_column", missing.Column))
			return redirectError(c, "Falta columna obligatoria: "+missing.Column)
		}

		log.Error("Excel import failed",
			zap.Uint("empresa_id", empresa.ID),
			zap.Error(err))
		return redirectError(c, "Error al procesar el Excel")
	}

	prometheus.RecordImport("excel", "ok")
	prometheus.RecordImportedRows("nuevos", res.Nuevos)
	prometheus.RecordImportedRows("actualizados", res.Actualizados)

	log.Info("Excel import finished",
		zap.Uint("empresa_id", empresa.ID),
		zap.Int("nuevos", res.Nuevos),
		zap.Int("actualizados", res.Actualizados))
	return redirectMsg(c, fmt.Sprintf(
		"Excel procesado con éxito. Nuevos: %d | Actualizados: %d", res.Nuevos, res.Actualizados))
}

// UploadZip extracts an archive of product images into the target
// tenant's image directory.
func UploadZip(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	empresa, err := resolveTarget(c, db)
	if err != nil {
		log.Warn("ZIP upload without target tenant", zap.Error(err))
		return redirectError(c, "No hay empresa activa")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return redirectError(c, "Falta el archivo ZIP")
	}
	src, err := fh.Open()
	if err != nil {
		return redirectError(c, "Error al leer el archivo ZIP")
	}
	defer src.Close()

	n, err := importer.ExtractImages(layout, empresa.Slug, src)
	if err != nil {
		prometheus.RecordImport("zip", "error")
		log.Error("ZIP extraction failed",
			zap.Uint("empresa_id", empresa.ID),
			zap.Error(err))
		return redirectError(c, "Error al procesar el ZIP de imágenes")
	}

	prometheus.RecordImport("zip", "ok")
	log.Info("ZIP extraction finished",
		zap.Uint("empresa_id", empresa.ID),
		zap.Int("extracted", n))
	return redirectMsg(c, fmt.Sprintf(
		"Imágenes cargadas correctamente (%d). Se usarán por código (ej: VR-150.jpg)", n))
}

// DeleteAllProducts removes every product of the target tenant. The
// scope is always a single tenant, never the whole table.
func DeleteAllProducts(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	empresa, err := resolveTarget(c, db)
	if err != nil {
		return redirectError(c, "No hay empresa activa")
	}

	defer prometheus.TrackDBOperation("delete_products")(time.Now())
	result := db.Where("empresa_id = ?", empresa.ID).Delete(&model.Producto{})
	if result.Error != nil {
		log.Error("Failed to delete products",
			zap.Uint("empresa_id", empresa.ID),
			zap.Error(result.Error))
		return redirectError(c, "Error al borrar los productos")
	}

	log.Info("Products deleted",
		zap.Uint("empresa_id", empresa.ID),
		zap.Int64("rows_affected", result.RowsAffected))
	return redirectMsg(c, fmt.Sprintf(
		"Se eliminaron %d productos de %s", result.RowsAffected, empresa.Nombre))
}
