package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"testing"

	"atlas/internal/handlers"
	"atlas/internal/middleware"
	"atlas/internal/models"
	"atlas/internal/repositories"
	"atlas/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubUploader stands in for the image host.
type stubUploader struct {
	url string
	err error
}

func (s stubUploader) Upload(localPath string) (string, error) {
	return s.url, s.err
}

// recordingPublisher captures relayed contact messages.
type recordingPublisher struct {
	bodies [][]byte
}

func (r *recordingPublisher) Publish(exchange, routingKey string, body []byte) error {
	r.bodies = append(r.bodies, body)
	return nil
}

// setupApp builds a Fiber app on an in-memory SQLite database with all
// handlers, services and the auth middleware wired in.
func setupApp(t *testing.T, uploader services.ImageUploader) (*fiber.App, *recordingPublisher) {
	t.Helper()

	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// A uniquely named shared-cache DB keeps every pooled connection on
	// the same schema while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}))

	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	productService := services.NewProductService(productRepo, uploader)
	authService := services.NewAuthService(userRepo, jwtSecret)
	publisher := &recordingPublisher{}
	contactService := services.NewContactService(userRepo, publisher)

	productHandler := handlers.NewProductHandler(productService, t.TempDir())
	authHandler := handlers.NewAuthHandler(authService)
	contactHandler := handlers.NewContactHandler(contactService)

	app := fiber.New()
	api := app.Group("/api")
	authHandler.RegisterRoutes(api)

	protected := api.Group("", middleware.AuthRequired(authService))
	authHandler.RegisterProtectedRoutes(protected)
	productHandler.RegisterRoutes(protected)
	contactHandler.RegisterRoutes(protected)

	return app, publisher
}

func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

// registerAndLogin creates a user and returns a valid Bearer token.
func registerAndLogin(t *testing.T, app *fiber.App, name, email string) string {
	t.Helper()

	body, _ := json.Marshal(fiber.Map{"name": name, "email": email, "password": "secret123"})
	req, _ := http.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body, _ = json.Marshal(fiber.Map{"email": email, "password": "secret123"})
	req, _ = http.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var loginResp struct {
		Token string `json:"token"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	assert.NotEmpty(t, loginResp.Token)
	return loginResp.Token
}

// productForm builds a multipart form request for product create/update.
func productForm(t *testing.T, method, url, token string, fields map[string]string, imageName string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		assert.NoError(t, writer.WriteField(k, v))
	}
	if imageName != "" {
		part, err := writer.CreateFormFile("image", imageName)
		assert.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())

	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decodeProduct(t *testing.T, resp *http.Response) models.Product {
	t.Helper()
	var product models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&product))
	return product
}

var penFields = map[string]string{
	"name":        "Pen",
	"category":    "Office",
	"quantity":    "10",
	"price":       "1.5",
	"description": "Blue pen",
}

func TestProductRoutes_RequireAuthentication(t *testing.T) {
	app, _ := setupApp(t, stubUploader{})

	req, _ := http.NewRequest(http.MethodGet, "/api/products/", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodGet, "/api/products/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateProduct_WithoutImage(t *testing.T) {
	app, _ := setupApp(t, stubUploader{})
	token := registerAndLogin(t, app, "Jamie", "jamie@example.com")

	resp, err := app.Test(productForm(t, http.MethodPost, "/api/products/", token, penFields, ""))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	product := decodeProduct(t, resp)
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, "Pen", product.Name)
	assert.Equal(t, 10, product.Quantity)
	assert.Equal(t, 1.5, product.Price)
	assert.True(t, product.Image.IsZero())
}

func TestCreateProduct_WithImage(t *testing.T) {
	app, _ := setupApp(t, stubUploader{url: "https://img.example.com/pen.png"})
	token := registerAndLogin(t, app, "Jamie", "jamie@example.com")

	resp, err := app.Test(productForm(t, http.MethodPost, "/api/products/", token, penFields, "pen.png"))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	product := decodeProduct(t, resp)
	assert.Equal(t, "pen.png", product.Image.FileName)
	assert.Equal(t, "https://img.example.com/pen.png", product.Image.FilePath)
	assert.NotEmpty(t, product.Image.FileSize)
}

func TestCreateProduct_UploadFailure(t *testing.T) {
	app, _ := setupApp(t, stubUploader{err: fmt.Errorf("host unavailable")})
	token := registerAndLogin(t, app, "Jamie", "jamie@example.com")

	resp, err := app.Test(productForm(t, http.MethodPost, "/api/products/", token, penFields, "pen.png"))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	// Nothing may have been persisted
	req, _ := http.NewRequest(http.MethodGet, "/api/products/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	assert.NoError(t, err)
	var products []models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Empty(t, products)
}

func TestCreateProduct_MissingFields(t *testing.T) {
	app, _ := setupApp(t, stubUploader{})
	token := registerAndLogin(t, app, "Jamie", "jamie@example.com")

	fields := map[string]string{"name": "Pen", "category": "Office"}
	resp, err := app.Test(productForm(t, http.MethodPost, "/api/products/", token, fields, ""))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListProducts_ScopedToOwner(t *testing.T) {
	app, _ := setupApp(t, stubUploader{})
	tokenA := registerAndLogin(t, app, "Jamie", "jamie@example.com")
	tokenB := registerAndLogin(t, app, "Riley", "riley@example.com")

	resp, err := app.Test(productForm(t, http.MethodPost, "/api/products/", tokenA, penFields, ""))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Owner sees the product
	req, _ := http.NewRequest(http.MethodGet, "/api/products/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenA)
	resp, err = app.Test(req)
	assert.NoError(t, err)
	var mine []models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&mine))
	assert.Len(t, mine, 1)

	// Everyone else sees an empty list
	req, _ = http.NewRequest(http.MethodGet, "/api/products/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenB)
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var theirs []models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&theirs))
	assert.Empty(t, theirs)
}

func TestGetProduct_StatusMapping(t *testing.T) {
	app, _ := setupApp(t, stubUploader{})
	tokenA := registerAndLogin(t, app, "Jamie", "jamie@example.com")
	tokenB := registerAndLogin(t, app, "Riley", "riley@example.com")

	resp, err := app.Test(productForm(t, http.MethodPost, "/api/products/", tokenA, penFields, ""))
	assert.NoError(t, err)
	created := decodeProduct(t, resp)

	// Unknown id -> 404
	req, _ := http.NewRequest(http.MethodGet, "/api/products/"+uuid.New().String(), nil)
	req.Header.Set("Authorization", "Bearer "+tokenA)
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Foreign owner -> 401
	req, _ = http.NewRequest(http.MethodGet, "/api/products/"+created.ID, nil)
	req.Header.Set("Authorization", "Bearer "+tokenB)
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Owner -> 200
	req, _ = http.NewRequest(http.MethodGet, "/api/products/"+created.ID, nil)
	req.Header.Set("Authorization", "Bearer "+tokenA)
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUpdateProduct_PartialFormPreservesOtherFields(t *testing.T) {
	app, _ := setupApp(t, stubUploader{url: "https://img.example.com/pen.png"})
	token := registerAndLogin(t, app, "Jamie", "jamie@example.com")

	resp, err := app.Test(productForm(t, http.MethodPost, "/api/products/", token, penFields, "pen.png"))
	assert.NoError(t, err)
	created := decodeProduct(t, resp)
	assert.False(t, created.Image.IsZero())

	resp, err = app.Test(productForm(t, http.MethodPatch, "/api/products/"+created.ID, token,
		map[string]string{"price": "2.0"}, ""))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	updated := decodeProduct(t, resp)
	assert.Equal(t, 2.0, updated.Price)
	assert.Equal(t, "Pen", updated.Name)
	assert.Equal(t, "Blue pen", updated.Description)
	// Image untouched when no replacement file is sent
	assert.Equal(t, created.Image, updated.Image)
}

func TestDeleteProduct_ThenGetIsNotFound(t *testing.T) {
	app, _ := setupApp(t, stubUploader{})
	token := registerAndLogin(t, app, "Jamie", "jamie@example.com")

	resp, err := app.Test(productForm(t, http.MethodPost, "/api/products/", token, penFields, ""))
	assert.NoError(t, err)
	created := decodeProduct(t, resp)

	req, _ := http.NewRequest(http.MethodDelete, "/api/products/"+created.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodGet, "/api/products/"+created.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestContactUs_RelaysMessage(t *testing.T) {
	app, publisher := setupApp(t, stubUploader{})
	token := registerAndLogin(t, app, "Jamie", "jamie@example.com")

	body, _ := json.Marshal(fiber.Map{"subject": "Help", "message": "Scanner is down"})
	req, _ := http.NewRequest(http.MethodPost, "/api/contactus", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Len(t, publisher.bodies, 1)
	var msg models.ContactMessage
	assert.NoError(t, json.Unmarshal(publisher.bodies[0], &msg))
	assert.Equal(t, "Help", msg.Subject)
	assert.Equal(t, "jamie@example.com", msg.SenderEmail)
}

func TestContactUs_MissingSubject(t *testing.T) {
	app, publisher := setupApp(t, stubUploader{})
	token := registerAndLogin(t, app, "Jamie", "jamie@example.com")

	body, _ := json.Marshal(fiber.Map{"message": "no subject"})
	req, _ := http.NewRequest(http.MethodPost, "/api/contactus", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, publisher.bodies)
}

func TestUserProfile_GetAndUpdate(t *testing.T) {
	app, _ := setupApp(t, stubUploader{})
	token := registerAndLogin(t, app, "Jamie", "jamie@example.com")

	req, _ := http.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var user models.User
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "jamie@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.DefaultUserPhone, user.Phone)

	body, _ := json.Marshal(fiber.Map{"bio": "Inventory manager"})
	req, _ = http.NewRequest(http.MethodPatch, "/api/users/me", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "Inventory manager", user.Bio)
	assert.Equal(t, "Jamie", user.Name)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	app, _ := setupApp(t, stubUploader{})
	registerAndLogin(t, app, "Jamie", "jamie@example.com")

	body, _ := json.Marshal(fiber.Map{"name": "Clone", "email": "jamie@example.com", "password": "secret123"})
	req, _ := http.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
