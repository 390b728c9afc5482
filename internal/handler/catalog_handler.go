package handler

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/Brunomperetti/catalogo-repuestos/internal/catalog"
	"github.com/Brunomperetti/catalogo-repuestos/internal/model"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/database"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/logger"
	"github.com/Brunomperetti/catalogo-repuestos/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Catalogo renders the public catalog page of a tenant, with search,
// category filter and sorting, plus the embedded JSON product list used
// by the client-side cart.
func Catalogo(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	empresaSlug := c.Param("slug")

	var empresa model.Empresa
	err := db.Where("slug = ?", empresaSlug).First(&empresa).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorPage(c, http.StatusNotFound, "Empresa no encontrada")
	}
	if err != nil {
		log.Error("Failed to load empresa", zap.String("slug", empresaSlug), zap.Error(err))
		return errorPage(c, http.StatusInternalServerError, "Error al cargar el catálogo")
	}

	params := catalog.Params{
		Q:         c.QueryParam("q"),
		Categoria: c.QueryParam("categoria"),
		Orden:     c.QueryParam("orden"),
	}

	defer prometheus.TrackDBOperation("catalog_query")(time.Now())
	productos, err := catalog.Search(db, empresa.ID, params)
	if err != nil {
		log.Error("Catalog query failed",
			zap.Uint("empresa_id", empresa.ID),
			zap.Error(err))
		return errorPage(c, http.StatusInternalServerError, "Error al cargar el catálogo")
	}
	catalog.ApplyPlaceholder(productos, placeholderURL)

	categorias, err := catalog.Categories(db, empresa.ID)
	if err != nil {
		log.Error("Category query failed",
			zap.Uint("empresa_id", empresa.ID),
			zap.Error(err))
		return errorPage(c, http.StatusInternalServerError, "Error al cargar el catálogo")
	}

	productosJSON, err := json.Marshal(productos)
	if err != nil {
		return errorPage(c, http.StatusInternalServerError, "Error al cargar el catálogo")
	}

	prometheus.RecordCatalogView(empresa.Slug)
	log.Info("Catalog rendered",
		zap.String("slug", empresa.Slug),
		zap.Int("count", len(productos)))

	return c.Render(http.StatusOK, "catalogo.html", map[string]interface{}{
		"Empresa":         empresa,
		"Productos":       productos,
		"ProductosJSON":   template.JS(productosJSON),
		"Categorias":      categorias,
		"CategoriaActual": params.Categoria,
		"Query":           params.Q,
		"Orden":           params.Orden,
	})
}
