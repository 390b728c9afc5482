// Package storage maps tenant slugs to their on-disk image layout:
//
//	<static-root>/empresas/<slug>/logo.png
//	<static-root>/empresas/<slug>/banner.jpg
//	<static-root>/empresas/<slug>/productos/<codigo>.<ext>
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/Brunomperetti/catalogo-repuestos/pkg/config"
)

// ImageExtensions is the probe order used when resolving a product image
// by code.
var ImageExtensions = []string{".jpg", ".png", ".jpeg", ".webp"}

// Layout resolves tenant directories and performs the file side effects
// associated with tenant and product lifecycle.
type Layout struct {
	root       string // on-disk empresas root
	publicBase string // URL prefix for the same tree
}

// NewLayout builds a Layout from storage configuration.
func NewLayout(cfg *config.StorageConfig) *Layout {
	return &Layout{
		root:       cfg.EmpresasDir(),
		publicBase: "/static/empresas",
	}
}

// NewLayoutAt builds a Layout rooted at an explicit directory. Used by tests.
func NewLayoutAt(root string) *Layout {
	return &Layout{root: root, publicBase: "/static/empresas"}
}

// TenantDir returns the on-disk directory for a tenant.
func (l *Layout) TenantDir(slug string) string {
	return filepath.Join(l.root, slug)
}

// ProductosDir returns the on-disk product-image directory for a tenant.
func (l *Layout) ProductosDir(slug string) string {
	return filepath.Join(l.root, slug, "productos")
}

// CreateTenantDirs creates the directory tree for a new tenant.
func (l *Layout) CreateTenantDirs(slug string) error {
	if err := os.MkdirAll(l.ProductosDir(slug), 0o755); err != nil {
		return fmt.Errorf("create tenant dirs for %q: %w", slug, err)
	}
	return nil
}

// RemoveTenantDir deletes a tenant's whole image tree.
func (l *Layout) RemoveTenantDir(slug string) error {
	return os.RemoveAll(l.TenantDir(slug))
}

// SaveLogo stores the tenant logo under its conventional name.
func (l *Layout) SaveLogo(slug string, r io.Reader) error {
	return l.saveFile(filepath.Join(l.TenantDir(slug), "logo.png"), r)
}

// SaveBanner stores the tenant banner under its conventional name.
func (l *Layout) SaveBanner(slug string, r io.Reader) error {
	return l.saveFile(filepath.Join(l.TenantDir(slug), "banner.jpg"), r)
}

// SaveProductImage stores an image for a product code and returns its
// public URL. ext must include the leading dot.
func (l *Layout) SaveProductImage(slug, codigo, ext string, r io.Reader) (string, error) {
	name := codigo + ext
	if err := os.MkdirAll(l.ProductosDir(slug), 0o755); err != nil {
		return "", err
	}
	if err := l.saveFile(filepath.Join(l.ProductosDir(slug), name), r); err != nil {
		return "", err
	}
	return l.productURL(slug, name), nil
}

// FindProductImage probes the tenant's product-image directory for
// <codigo>.<ext> in the conventional extension order and returns the
// public URL of the first hit, or "" when no image exists.
func (l *Layout) FindProductImage(slug, codigo string) string {
	dir := l.ProductosDir(slug)
	for _, ext := range ImageExtensions {
		name := codigo + ext
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return l.productURL(slug, name)
		}
	}
	return ""
}

// ListImages returns the sorted file names in the tenant's product-image
// directory. A missing directory yields an empty list.
func (l *Layout) ListImages(slug string) ([]string, error) {
	entries, err := os.ReadDir(l.ProductosDir(slug))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (l *Layout) productURL(slug, name string) string {
	return path.Join(l.publicBase, slug, "productos", name)
}

func (l *Layout) saveFile(dst string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
