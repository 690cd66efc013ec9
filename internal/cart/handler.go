package cart

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/easi-backend/internal/logger"
	"github.com/wichananm65/easi-backend/internal/pricing"
	"github.com/wichananm65/easi-backend/internal/product"
	"github.com/wichananm65/easi-backend/internal/user"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Get("/api/v1/cart/summary", h.getSummary)
	app.Post("/api/v1/cart", h.addToCart)
	app.Patch("/api/v1/cart", h.updateQuantity)
	app.Delete("/api/v1/cart/:productId<[0-9]+>", h.removeFromCart)
	app.Delete("/api/v1/cart", h.clearCart)
}

type cartRequest struct {
	ProductID int `json:"productID"`
	Quantity  int `json:"quantity"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	state, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(state)
}

func (h *Handler) getSummary(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	tier := pricing.Tier(c.Query("tier", string(pricing.TierStandard)))
	if tier != pricing.TierStandard && tier != pricing.TierExpress {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "tier must be standard or express"})
	}
	summary, err := h.service.Summary(c.UserContext(), userID, tier)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// addToCart adds to the existing quantity. A negative quantity decrements
// and removes the line once it reaches zero.
func (h *Handler) addToCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(cartRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productID"})
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}

	state, err := h.service.AddItem(c.UserContext(), userID, payload.ProductID, payload.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(state)
}

// updateQuantity sets an absolute quantity; zero or less removes the line.
func (h *Handler) updateQuantity(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(cartRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productID"})
	}

	state, err := h.service.UpdateQuantity(c.UserContext(), userID, payload.ProductID, payload.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(state)
}

func (h *Handler) removeFromCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}

	state, err := h.service.RemoveItem(c.UserContext(), userID, productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(state)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := h.service.Clear(c.UserContext(), userID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func writeError(c *fiber.Ctx, err error) error {
	var stockErr *StockExceededError
	switch {
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": stockErr.Message, "productID": stockErr.ProductID})
	case errors.Is(err, product.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	case errors.Is(err, ErrNotFound), errors.Is(err, user.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	default:
		return logger.InternalError(c, err)
	}
}
