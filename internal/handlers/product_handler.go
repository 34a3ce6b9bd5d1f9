package handlers

import (
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strconv"

	"atlas/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service   *services.ProductService
	uploadDir string
}

// NewProductHandler creates a new ProductHandler. Incoming image files
// are staged under uploadDir before being pushed to the image host.
func NewProductHandler(service *services.ProductService, uploadDir string) *ProductHandler {
	return &ProductHandler{
		service:   service,
		uploadDir: uploadDir,
	}
}

// RegisterRoutes registers the product routes with the Fiber app. All
// routes require an authenticated user.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleCreateProduct creates a product from a (multipart) form,
// optionally carrying an image file under the "image" field.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "User not authenticated",
		})
	}

	input := services.CreateProductInput{
		Name:        c.FormValue("name"),
		SKU:         c.FormValue("sku"),
		Category:    c.FormValue("category"),
		Description: c.FormValue("description"),
	}

	if v := c.FormValue("quantity"); v != "" {
		quantity, err := strconv.Atoi(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Quantity must be a number",
			})
		}
		input.Quantity = quantity
	}
	if v := c.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Price must be a number",
			})
		}
		input.Price = price
	}

	imageFile, err := h.receiveImage(c)
	if err != nil {
		log.Printf("Error receiving image file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not store uploaded file",
		})
	}
	input.ImageFile = imageFile

	product, err := h.service.CreateProduct(userID, input)
	if err != nil {
		log.Printf("Error creating product for user %s: %v", userID, err)
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleGetProducts lists the caller's products, newest first.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "User not authenticated",
		})
	}

	products, err := h.service.GetProducts(userID)
	if err != nil {
		log.Printf("Error listing products for user %s: %v", userID, err)
		return errorResponse(c, err)
	}
	return c.JSON(products)
}

// HandleGetProduct returns a single owned product.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "User not authenticated",
		})
	}

	product, err := h.service.GetProduct(userID, c.Params("id"))
	if err != nil {
		log.Printf("Error getting product %s: %v", c.Params("id"), err)
		return errorResponse(c, err)
	}
	return c.JSON(product)
}

// HandleUpdateProduct applies a partial update. Only fields present in
// the form are changed; a new "image" file replaces the stored image.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "User not authenticated",
		})
	}

	input := services.UpdateProductInput{
		Name:        formValue(c, "name"),
		Category:    formValue(c, "category"),
		Description: formValue(c, "description"),
	}

	if v := formValue(c, "quantity"); v != nil {
		quantity, err := strconv.Atoi(*v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Quantity must be a number",
			})
		}
		input.Quantity = &quantity
	}
	if v := formValue(c, "price"); v != nil {
		price, err := strconv.ParseFloat(*v, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Price must be a number",
			})
		}
		input.Price = &price
	}

	imageFile, err := h.receiveImage(c)
	if err != nil {
		log.Printf("Error receiving image file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not store uploaded file",
		})
	}
	input.ImageFile = imageFile

	product, err := h.service.UpdateProduct(userID, c.Params("id"), input)
	if err != nil {
		log.Printf("Error updating product %s: %v", c.Params("id"), err)
		return errorResponse(c, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct permanently deletes an owned product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "User not authenticated",
		})
	}

	if err := h.service.DeleteProduct(userID, c.Params("id")); err != nil {
		log.Printf("Error deleting product %s: %v", c.Params("id"), err)
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted!",
	})
}

// receiveImage saves an uploaded "image" form file to the staging
// directory. Returns nil when the request carries no image file.
func (h *ProductHandler) receiveImage(c *fiber.Ctx) (*services.UploadFile, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, nil // no file attached
	}
	return h.saveUpload(c, fileHeader)
}

func (h *ProductHandler) saveUpload(c *fiber.Ctx, fileHeader *multipart.FileHeader) (*services.UploadFile, error) {
	localName := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(fileHeader.Filename))
	localPath := filepath.Join(h.uploadDir, localName)
	if err := c.SaveFile(fileHeader, localPath); err != nil {
		return nil, fmt.Errorf("failed to save uploaded file: %w", err)
	}
	return &services.UploadFile{
		Path:         localPath,
		OriginalName: fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
	}, nil
}
