package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Brunomperetti/catalogo-repuestos/internal/model"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/database"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminProductos renders the per-product edit list for a tenant. Unlike
// the public catalog it includes deactivated products.
func AdminProductos(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	empresa, err := resolveTarget(c, db)
	if err != nil {
		return errorPage(c, http.StatusNotFound, "Empresa no encontrada")
	}

	var productos []model.Producto
	if err := db.Where("empresa_id = ?", empresa.ID).Order("codigo ASC").Find(&productos).Error; err != nil {
		log.Error("Failed to list products for admin",
			zap.Uint("empresa_id", empresa.ID),
			zap.Error(err))
		return errorPage(c, http.StatusInternalServerError, "Error al cargar los productos")
	}

	return c.Render(http.StatusOK, "admin_productos.html", map[string]interface{}{
		"Empresa":   empresa,
		"Productos": productos,
		"Msg":       c.QueryParam("msg"),
		"Error":     c.QueryParam("error"),
	})
}

// AdminActualizarProducto applies an individual product edit:
// description, price, active flag and an optional replacement image.
func AdminActualizarProducto(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var producto model.Producto
	if err := db.First(&producto, c.Param("id")).Error; err != nil {
		return errorPage(c, http.StatusNotFound, "Producto no encontrado")
	}

	var empresa model.Empresa
	if err := db.First(&empresa, producto.EmpresaID).Error; err != nil {
		return errorPage(c, http.StatusNotFound, "Empresa no encontrada")
	}

	if descripcion := c.FormValue("descripcion"); descripcion != "" {
		producto.Descripcion = descripcion
	}
	if raw := c.FormValue("precio"); raw != "" {
		precio, err := strconv.ParseFloat(raw, 64)
		if err != nil || precio < 0 {
			return adminRedirectError(c, empresa.ID, "Precio inválido")
		}
		producto.Precio = precio
	}
	// Checkbox semantics: the field is only sent when checked.
	producto.Activo = c.FormValue("activo") == "true"

	if fh, err := c.FormFile("imagen"); err == nil && fh != nil {
		src, err := fh.Open()
		if err != nil {
			return adminRedirectError(c, empresa.ID, "Error al leer la imagen")
		}
		defer src.Close()

		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if ext == "" {
			ext = ".jpg"
		}
		imagenURL, err := layout.SaveProductImage(empresa.Slug, producto.Codigo, ext, src)
		if err != nil {
			log.Error("Failed to save product image",
				zap.Uint("producto_id", producto.ID),
				zap.Error(err))
			return adminRedirectError(c, empresa.ID, "Error al guardar la imagen")
		}
		producto.ImagenURL = imagenURL
	}

	if err := db.Save(&producto).Error; err != nil {
		log.Error("Failed to update product",
			zap.Uint("producto_id", producto.ID),
			zap.Error(err))
		return adminRedirectError(c, empresa.ID, "Error al actualizar el producto")
	}

	log.Info("Product updated from admin",
		zap.Uint("producto_id", producto.ID),
		zap.String("codigo", producto.Codigo))
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf(
		"/admin/productos?empresa_id=%d&msg=%s",
		empresa.ID, url.QueryEscape("Producto actualizado: "+producto.Codigo)))
}

func adminRedirectError(c echo.Context, empresaID uint, msg string) error {
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf(
		"/admin/productos?empresa_id=%d&error=%s", empresaID, url.QueryEscape(msg)))
}
