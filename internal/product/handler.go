package product

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/easi-backend/internal/logger"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.getProducts)
	app.Get("/api/v1/product/category", h.getCategories)
	app.Get("/api/v1/product/:id<[0-9]+>", h.getProduct)
}

// getProducts returns the catalog, optionally filtered with ?category=.
func (h *Handler) getProducts(c *fiber.Ctx) error {
	var (
		products []Product
		err      error
	)
	if cat := c.Query("category"); cat != "" {
		products, err = h.service.ListByCategory(c.UserContext(), cat)
	} else {
		products, err = h.service.List(c.UserContext())
	}
	if err != nil {
		return logger.InternalError(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	p, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		}
		return logger.InternalError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	items, err := h.service.Categories(c.UserContext())
	if err != nil {
		return logger.InternalError(c, err)
	}
	return c.JSON(items)
}
