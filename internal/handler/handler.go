package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/Brunomperetti/catalogo-repuestos/internal/active"
	"github.com/Brunomperetti/catalogo-repuestos/internal/model"
	"github.com/Brunomperetti/catalogo-repuestos/internal/storage"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/config"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var (
	layout         *storage.Layout
	activeStore    = &active.Store{}
	placeholderURL string
)

// Init wires the handler package to the loaded configuration.
func Init(cfg *config.Config) {
	layout = storage.NewLayout(&cfg.Storage)
	placeholderURL = cfg.Storage.PlaceholderURL
}

// redirectMsg sends the operator back to the panel with a message.
func redirectMsg(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/?msg="+url.QueryEscape(msg))
}

// redirectError sends the operator back to the panel with an error message.
func redirectError(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/?error="+url.QueryEscape(msg))
}

// errorPage renders the minimal HTML error page.
func errorPage(c echo.Context, status int, message string) error {
	return c.Render(status, "error.html", map[string]interface{}{
		"Message": message,
	})
}

// resolveTarget determines which tenant an import action applies to: an
// explicit empresa_id form field wins, otherwise the active selection
// (falling back to the most recently created tenant).
func resolveTarget(c echo.Context, db *gorm.DB) (*model.Empresa, error) {
	if raw := c.FormValue("empresa_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, active.ErrNoTenant
		}
		var empresa model.Empresa
		if err := db.First(&empresa, uint(id)).Error; err != nil {
			return nil, active.ErrNoTenant
		}
		return &empresa, nil
	}
	return activeStore.Resolve(db)
}
