package handler

import (
	"net/http"

	"github.com/Brunomperetti/catalogo-repuestos/internal/model"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/database"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// DebugEmpresas lists all tenants as JSON. Operational inspection only.
func DebugEmpresas(c echo.Context) error {
	var empresas []model.Empresa
	if err := database.GetDB().Order("id ASC").Find(&empresas).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error al listar empresas",
		})
	}
	return c.JSON(http.StatusOK, empresas)
}

// DebugImagenes lists the files in a tenant's product-image directory.
func DebugImagenes(c echo.Context) error {
	log := logger.FromContext(c)
	empresaSlug := c.Param("slug")

	var empresa model.Empresa
	if err := database.GetDB().Where("slug = ?", empresaSlug).First(&empresa).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Empresa no encontrada",
		})
	}

	imagenes, err := layout.ListImages(empresa.Slug)
	if err != nil {
		log.Error("Failed to list images", zap.String("slug", empresa.Slug), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error al listar imágenes",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"slug":     empresa.Slug,
		"imagenes": imagenes,
	})
}
