package handlers

import (
	"log"

	"backoffice/internal/apperr"
	"backoffice/internal/models"
	"backoffice/internal/services"
	"backoffice/pkg/upload"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.CatalogService
	uploads  *upload.Storage
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.CatalogService, uploads *upload.Storage) *ProductHandler {
	return &ProductHandler{
		service:  service,
		uploads:  uploads,
		validate: validator.New(),
	}
}

// RegisterPublicRoutes registers the catalog read routes.
func (h *ProductHandler) RegisterPublicRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

// RegisterStaffRoutes registers the catalog write routes.
func (h *ProductHandler) RegisterStaffRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
	productRoutes.Post("/:id/image", h.HandleUploadImage)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new catalog entry.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing create product request body: %v", err)
		return respondError(c, apperr.BadRequest("invalid request body"))
	}
	if err := h.validate.Struct(product); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		e := validationErrors[0]
		return respondError(c, apperr.BadRequest("field '%s' failed on the '%s' rule", e.Field(), e.Tag()))
	}

	if err := h.service.CreateProduct(c.UserContext(), &product); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct updates an existing catalog entry. Submitting a null
// price marks the product as not sellable.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing update product request body: %v", err)
		return respondError(c, apperr.BadRequest("invalid request body"))
	}
	product.ID = c.Params("id")
	if err := h.validate.Struct(product); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		e := validationErrors[0]
		return respondError(c, apperr.BadRequest("field '%s' failed on the '%s' rule", e.Field(), e.Tag()))
	}

	if err := h.service.UpdateProduct(c.UserContext(), &product); err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a catalog entry.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// HandleUploadImage stores a product image and attaches its path to the
// product.
func (h *ProductHandler) HandleUploadImage(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return respondError(c, apperr.BadRequest("image file is required"))
	}
	path, err := h.uploads.Save(fileHeader)
	if err != nil {
		return respondError(c, err)
	}

	product.Image = path
	if err := h.service.UpdateProduct(c.UserContext(), product); err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}
