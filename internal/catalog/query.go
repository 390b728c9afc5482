// Package catalog implements the public catalog query: tenant-scoped
// product listing with free-text search, category filtering and sorting.
package catalog

import (
	"sort"
	"strings"

	"github.com/Brunomperetti/catalogo-repuestos/internal/model"

	"gorm.io/gorm"
)

// Params are the optional catalog filters from the query string.
type Params struct {
	Q         string // free-text, case-insensitive substring on descripcion
	Categoria string // exact match
	Orden     string // precio_asc | precio_desc | codigo | marca
}

// orderClauses maps the public orden values to SQL order expressions.
// Anything else leaves the database default ordering.
var orderClauses = map[string]string{
	"precio_asc":  "precio ASC",
	"precio_desc": "precio DESC",
	"codigo":      "codigo ASC",
	"marca":       "marca ASC",
}

// Search returns the tenant's active products matching the filters.
func Search(db *gorm.DB, empresaID uint, p Params) ([]model.Producto, error) {
	query := db.Where("empresa_id = ?", empresaID).Where("activo = ?", true)

	if p.Q != "" {
		// LOWER + LIKE instead of ILIKE keeps this portable across
		// postgres and the sqlite test driver.
		query = query.Where("LOWER(descripcion) LIKE ?", "%"+strings.ToLower(p.Q)+"%")
	}
	if p.Categoria != "" {
		query = query.Where("categoria = ?", p.Categoria)
	}
	if clause, ok := orderClauses[p.Orden]; ok {
		query = query.Order(clause)
	}

	var productos []model.Producto
	if err := query.Find(&productos).Error; err != nil {
		return nil, err
	}
	return productos, nil
}

// Categories returns the tenant's distinct non-empty categories, sorted.
func Categories(db *gorm.DB, empresaID uint) ([]string, error) {
	var raw []string
	err := db.Model(&model.Producto{}).
		Where("empresa_id = ?", empresaID).
		Distinct().
		Pluck("categoria", &raw).Error
	if err != nil {
		return nil, err
	}

	categorias := raw[:0]
	for _, c := range raw {
		if c != "" {
			categorias = append(categorias, c)
		}
	}
	sort.Strings(categorias)
	return categorias, nil
}

// ApplyPlaceholder substitutes the shared placeholder URL for products
// without a stored image reference, in place.
func ApplyPlaceholder(productos []model.Producto, placeholderURL string) {
	for i := range productos {
		if productos[i].ImagenURL == "" {
			productos[i].ImagenURL = placeholderURL
		}
	}
}
