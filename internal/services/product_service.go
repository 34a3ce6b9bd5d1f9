package services

import (
	"errors"
	"fmt"
	"strings"

	"atlas/internal/models"
	"atlas/internal/repositories"
	"atlas/pkg/imagehost"

	"github.com/go-playground/validator/v10"
)

// ProductService handles business logic related to products: input
// validation, ownership enforcement, image upload orchestration and
// persistence.
type ProductService struct {
	repo     repositories.ProductRepository
	uploader ImageUploader
	validate *validator.Validate
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, uploader ImageUploader) *ProductService {
	return &ProductService{
		repo:     repo,
		uploader: uploader,
		validate: validator.New(),
	}
}

// CreateProductInput carries the fields for a new product. ImageFile is
// optional; when nil the product is created without an image.
type CreateProductInput struct {
	Name        string
	SKU         string
	Category    string
	Quantity    int
	Price       float64
	Description string
	ImageFile   *UploadFile
}

// UpdateProductInput carries a partial update. Nil fields keep their
// current stored value. SKU is not updatable.
type UpdateProductInput struct {
	Name        *string
	Category    *string
	Quantity    *int
	Price       *float64
	Description *string
	ImageFile   *UploadFile
}

// CreateProduct validates the input, uploads the image when one was
// supplied and persists a new product owned by userID. Nothing is
// persisted when validation or the upload fails.
func (s *ProductService) CreateProduct(userID string, input CreateProductInput) (*models.Product, error) {
	product := &models.Product{
		UserID:      userID,
		Name:        input.Name,
		SKU:         input.SKU,
		Category:    input.Category,
		Quantity:    input.Quantity,
		Price:       input.Price,
		Description: input.Description,
	}

	if err := s.validateProduct(product); err != nil {
		return nil, err
	}

	if input.ImageFile != nil {
		image, err := s.uploadImage(input.ImageFile)
		if err != nil {
			return nil, err
		}
		product.Image = *image
	}

	if err := s.repo.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// GetProducts returns every product owned by userID, most recent first.
// An empty inventory yields an empty slice, not an error.
func (s *ProductService) GetProducts(userID string) ([]models.Product, error) {
	products, err := s.repo.FindByOwner(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetProduct returns a single product after verifying ownership.
func (s *ProductService) GetProduct(userID, productID string) (*models.Product, error) {
	return s.findOwned(userID, productID)
}

// UpdateProduct applies a partial update to an owned product. Fields not
// present in the input keep their stored values; a new image fully
// replaces the stored one, and without a new image the stored image is
// left untouched.
func (s *ProductService) UpdateProduct(userID, productID string, input UpdateProductInput) (*models.Product, error) {
	product, err := s.findOwned(userID, productID)
	if err != nil {
		return nil, err
	}

	mergeProduct(product, input)

	if input.ImageFile != nil {
		image, err := s.uploadImage(input.ImageFile)
		if err != nil {
			return nil, err
		}
		product.Image = *image
	}

	if err := s.validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteProduct permanently removes an owned product.
func (s *ProductService) DeleteProduct(userID, productID string) error {
	if _, err := s.findOwned(userID, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(productID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// findOwned looks the product up first and only then compares owners, so
// a missing product and a foreign product fail differently.
func (s *ProductService) findOwned(userID, productID string) (*models.Product, error) {
	product, err := s.repo.FindByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product %s: %w", productID, err)
	}
	if product.UserID != userID {
		return nil, fmt.Errorf("%w: user not authorized", ErrNotAuthorized)
	}
	return product, nil
}

// mergeProduct copies the provided fields onto the stored product.
func mergeProduct(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
}

// uploadImage sends the file to the image host and assembles the full
// image record stored on the product.
func (s *ProductService) uploadImage(file *UploadFile) (*models.Image, error) {
	secureURL, err := s.uploader.Upload(file.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: image could not be uploaded: %v", ErrUpload, err)
	}
	return &models.Image{
		FileName: file.OriginalName,
		FilePath: secureURL,
		FileType: file.MimeType,
		FileSize: imagehost.FileSizeFormatter(file.Size, 2),
	}, nil
}

// validateProduct enforces the required-field rules. Zero quantity or
// price counts as missing, matching the client contract.
func (s *ProductService) validateProduct(product *models.Product) error {
	err := s.validate.Struct(product)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			fields = append(fields, e.Field())
		}
		return fmt.Errorf("%w: please fill in all the fields (%s)", ErrValidation, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
