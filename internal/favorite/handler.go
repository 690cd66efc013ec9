package favorite

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/easi-backend/internal/logger"
	"github.com/wichananm65/easi-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/favorites", h.getFavorites)
	app.Post("/api/v1/favorites", h.addFavorite)
	app.Delete("/api/v1/favorites", h.removeFavorite)
}

type favoriteRequest struct {
	ProductID int `json:"productId"`
}

func (h *Handler) addFavorite(c *fiber.Ctx) error {
	payload := new(favoriteRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	ids, err := h.service.Add(c.UserContext(), userID, payload.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"productId": payload.ProductID, "favoriteProductIds": ids})
}

func (h *Handler) removeFavorite(c *fiber.Ctx) error {
	payload := new(favoriteRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	ids, err := h.service.Remove(c.UserContext(), userID, payload.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"productId": payload.ProductID, "favoriteProductIds": ids})
}

func (h *Handler) getFavorites(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	items, err := h.service.List(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	case errors.Is(err, ErrUnknownProduct):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrAlreadyFavorite):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrNotFavorite):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	return logger.InternalError(c, err)
}
