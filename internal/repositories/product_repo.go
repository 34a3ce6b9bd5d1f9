package repositories

import (
	"errors"

	"atlas/internal/models"
)

// ErrNotFound is returned by repositories when the requested record
// does not exist. Callers detect it with errors.Is.
var ErrNotFound = errors.New("record not found")

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(product *models.Product) error
	FindByID(id string) (*models.Product, error)
	// FindByOwner returns every product owned by userID, newest first.
	FindByOwner(userID string) ([]models.Product, error)
	Update(product *models.Product) error
	Delete(id string) error
}
