package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Brunomperetti/catalogo-repuestos/internal/model"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/database"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/logger"

	"github.com/gosimple/slug"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Panel renders the operator panel: tenant list, active selection and
// the upload forms.
func Panel(c echo.Context) error {
	log := logger.FromContext(c)

	var empresas []model.Empresa
	if err := database.GetDB().Order("created_at DESC, id DESC").Find(&empresas).Error; err != nil {
		log.Error("Failed to list empresas", zap.Error(err))
		return errorPage(c, http.StatusInternalServerError, "Error al cargar el panel")
	}

	var activaID uint
	if empresa, err := activeStore.Resolve(database.GetDB()); err == nil {
		activaID = empresa.ID
	}

	return c.Render(http.StatusOK, "panel.html", map[string]interface{}{
		"Empresas": empresas,
		"ActivaID": activaID,
		"Msg":      c.QueryParam("msg"),
		"Error":    c.QueryParam("error"),
	})
}

// CreateEmpresa creates a tenant from the panel form and prepares its
// image directory tree.
func CreateEmpresa(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	nombre := c.FormValue("nombre")
	if nombre == "" {
		return redirectError(c, "Falta el nombre de la empresa")
	}

	empresaSlug := c.FormValue("slug")
	if empresaSlug == "" {
		empresaSlug = slug.Make(nombre)
	} else {
		empresaSlug = slug.Make(empresaSlug)
	}
	if empresaSlug == "" {
		return redirectError(c, "Falta el slug de la empresa")
	}

	var count int64
	db.Model(&model.Empresa{}).Where("slug = ?", empresaSlug).Count(&count)
	if count > 0 {
		log.Warn("Duplicate slug on empresa create", zap.String("slug", empresaSlug))
		return redirectError(c, "Ya existe una empresa con el slug "+empresaSlug)
	}

	empresa := model.Empresa{
		Nombre:   nombre,
		Slug:     empresaSlug,
		Whatsapp: c.FormValue("whatsapp"),
	}
	if err := db.Create(&empresa).Error; err != nil {
		log.Error("Failed to create empresa", zap.String("slug", empresaSlug), zap.Error(err))
		return redirectError(c, "Error al crear la empresa")
	}

	if err := layout.CreateTenantDirs(empresa.Slug); err != nil {
		log.Error("Failed to create tenant dirs", zap.String("slug", empresa.Slug), zap.Error(err))
		return redirectError(c, "Empresa creada pero falló la carpeta de imágenes")
	}

	saveBranding(c, empresa.Slug)

	log.Info("Empresa created",
		zap.Uint("empresa_id", empresa.ID),
		zap.String("slug", empresa.Slug))
	return redirectMsg(c, "Empresa creada: "+empresa.Nombre)
}

// saveBranding stores the optional logo and banner uploads. Missing
// parts are not an error.
func saveBranding(c echo.Context, empresaSlug string) {
	log := logger.FromContext(c)

	if fh, err := c.FormFile("logo"); err == nil && fh != nil {
		if src, err := fh.Open(); err == nil {
			defer src.Close()
			if err := layout.SaveLogo(empresaSlug, src); err != nil {
				log.Warn("Failed to save logo", zap.String("slug", empresaSlug), zap.Error(err))
			}
		}
	}
	if fh, err := c.FormFile("banner"); err == nil && fh != nil {
		if src, err := fh.Open(); err == nil {
			defer src.Close()
			if err := layout.SaveBanner(empresaSlug, src); err != nil {
				log.Warn("Failed to save banner", zap.String("slug", empresaSlug), zap.Error(err))
			}
		}
	}
}

// ActivateBySlug sets the active tenant from a link in the panel.
func ActivateBySlug(c echo.Context) error {
	db := database.GetDB()

	var empresa model.Empresa
	err := db.Where("slug = ?", c.Param("slug")).First(&empresa).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorPage(c, http.StatusNotFound, "Empresa no encontrada")
	}
	if err != nil {
		return errorPage(c, http.StatusInternalServerError, "Error al activar la empresa")
	}

	activeStore.Set(empresa.ID)
	return redirectMsg(c, "Empresa activa: "+empresa.Nombre)
}

// ActivatePanel sets the active tenant from the panel form.
func ActivatePanel(c echo.Context) error {
	id, err := strconv.ParseUint(c.FormValue("empresa_id"), 10, 32)
	if err != nil {
		return redirectError(c, "Empresa no encontrada")
	}

	var empresa model.Empresa
	if err := database.GetDB().First(&empresa, uint(id)).Error; err != nil {
		return redirectError(c, "Empresa no encontrada")
	}

	activeStore.Set(empresa.ID)
	return redirectMsg(c, "Empresa activa: "+empresa.Nombre)
}

// PublishEmpresa toggles the catalog publication flag.
func PublishEmpresa(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var empresa model.Empresa
	if err := db.First(&empresa, c.Param("id")).Error; err != nil {
		return errorPage(c, http.StatusNotFound, "Empresa no encontrada")
	}

	empresa.Publicado = !empresa.Publicado
	if err := db.Save(&empresa).Error; err != nil {
		log.Error("Failed to toggle publicado", zap.Uint("empresa_id", empresa.ID), zap.Error(err))
		return redirectError(c, "Error al publicar la empresa")
	}

	if empresa.Publicado {
		return redirectMsg(c, "Catálogo publicado: "+empresa.Nombre)
	}
	return redirectMsg(c, "Catálogo despublicado: "+empresa.Nombre)
}

// DeleteEmpresa removes a tenant, its products and its image directory.
func DeleteEmpresa(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var empresa model.Empresa
	if err := db.First(&empresa, c.Param("id")).Error; err != nil {
		return errorPage(c, http.StatusNotFound, "Empresa no encontrada")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("empresa_id = ?", empresa.ID).Delete(&model.Producto{}).Error; err != nil {
			return err
		}
		return tx.Delete(&empresa).Error
	})
	if err != nil {
		log.Error("Failed to delete empresa",
			zap.Uint("empresa_id", empresa.ID),
			zap.Error(err))
		return redirectError(c, "Error al borrar la empresa")
	}

	if err := layout.RemoveTenantDir(empresa.Slug); err != nil {
		// The rows are gone; a leftover directory is only logged.
		log.Warn("Failed to remove tenant dir", zap.String("slug", empresa.Slug), zap.Error(err))
	}

	if activeStore.Selected() == empresa.ID {
		activeStore.Clear()
	}

	log.Info("Empresa deleted",
		zap.Uint("empresa_id", empresa.ID),
		zap.String("slug", empresa.Slug))
	return redirectMsg(c, "Empresa eliminada: "+empresa.Nombre)
}
