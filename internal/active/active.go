// Package active holds the operator's current tenant selection for bulk
// import actions. The selection is process-wide, guarded by a lock, and
// only a convenience: import routes accept an explicit empresa_id that
// takes precedence over it.
package active

import (
	"errors"
	"sync"

	"github.com/Brunomperetti/catalogo-repuestos/internal/model"

	"gorm.io/gorm"
)

// ErrNoTenant is returned when no tenant is selected and none exists to
// fall back on.
var ErrNoTenant = errors.New("no hay empresa activa")

// Store is a lock-guarded active-tenant selection.
type Store struct {
	mu sync.RWMutex
	id uint
}

// Set records an explicit tenant selection.
func (s *Store) Set(id uint) {
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
}

// Clear drops the current selection.
func (s *Store) Clear() {
	s.mu.Lock()
	s.id = 0
	s.mu.Unlock()
}

// Selected returns the currently selected tenant id, or 0 when none is set.
func (s *Store) Selected() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Resolve returns the tenant targeted by import actions: the explicit
// selection when one is set and still exists, otherwise the most
// recently created tenant.
func (s *Store) Resolve(db *gorm.DB) (*model.Empresa, error) {
	id := s.Selected()

	var empresa model.Empresa
	if id != 0 {
		if err := db.First(&empresa, id).Error; err == nil {
			return &empresa, nil
		}
		// Selected tenant was deleted since; fall through to the default.
	}

	err := db.Order("created_at DESC, id DESC").First(&empresa).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoTenant
	}
	if err != nil {
		return nil, err
	}
	return &empresa, nil
}
