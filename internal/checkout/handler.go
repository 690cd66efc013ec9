package checkout

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/easi-backend/internal/address"
	"github.com/wichananm65/easi-backend/internal/cart"
	"github.com/wichananm65/easi-backend/internal/logger"
	"github.com/wichananm65/easi-backend/internal/order"
	"github.com/wichananm65/easi-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/checkout", h.getCheckout)
	app.Put("/api/v1/checkout/address", h.setAddress)
	app.Put("/api/v1/checkout/delivery", h.setDelivery)
	app.Put("/api/v1/checkout/payment", h.setPayment)
	app.Put("/api/v1/checkout/notes", h.setNotes)
	app.Post("/api/v1/checkout/step", h.goToStep)
	app.Post("/api/v1/checkout/place-order", h.placeOrder)
	app.Delete("/api/v1/checkout", h.reset)
}

type addressRequest struct {
	AddressID int `json:"addressId"`
}

type paymentRequest struct {
	Method PaymentMethod `json:"method"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type stepRequest struct {
	Step Step `json:"step"`
}

func (h *Handler) getCheckout(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	v, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) setAddress(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(addressRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.AddressID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid addressId"})
	}

	v, err := h.service.SetAddress(c.UserContext(), userID, payload.AddressID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) setDelivery(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(order.DeliverySlot)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	v, err := h.service.SetDeliverySlot(c.UserContext(), userID, *payload)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) setPayment(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(paymentRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	v, err := h.service.SetPaymentMethod(c.UserContext(), userID, payload.Method)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) setNotes(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(notesRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	v, err := h.service.SetNotes(c.UserContext(), userID, payload.Notes)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) goToStep(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(stepRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	v, err := h.service.GoTo(c.UserContext(), userID, payload.Step)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) placeOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	confirmation, err := h.service.PlaceOrder(c.UserContext(), userID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(confirmation)
}

func (h *Handler) reset(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := h.service.Reset(c.UserContext(), userID); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	var stock *cart.StockExceededError
	switch {
	case errors.As(err, &stock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": stock.Message, "productID": stock.ProductID})
	case errors.Is(err, ErrCheckoutIncomplete), errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrOrderLimitExceeded), errors.Is(err, ErrExpressUnavailable):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrStepLocked), errors.Is(err, ErrOrderInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrUnknownStep), errors.Is(err, ErrInvalidSlot), errors.Is(err, ErrInvalidPaymentMethod):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, user.ErrAccessDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "access denied"})
	case errors.Is(err, address.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "address not found"})
	case errors.Is(err, order.ErrOrderSubmissionFailed):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "Failed to place order, please try again"})
	default:
		return logger.InternalError(c, err)
	}
}
