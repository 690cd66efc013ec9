package address

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
	app.Get("/api/v1/address", h.getAddresses)
	app.Post("/api/v1/address", h.addAddress)
	app.Patch("/api/v1/address", h.updateAddress)
	app.Delete("/api/v1/address", h.deleteAddress)
}

type addressRequest struct {
	AddressID   int    `json:"addressId"`
	AddressName string `json:"addressName"`
	AddressDesc string `json:"addressDesc"`
	PostalCode  string `json:"postalCode"`
	Phone       string `json:"phone"`
}

func (r addressRequest) toAddress(userID int) Address {
	return Address{
		AddressID:   r.AddressID,
		UserID:      userID,
		AddressName: r.AddressName,
		AddressDesc: r.AddressDesc,
		PostalCode:  r.PostalCode,
		Phone:       r.Phone,
	}
}

func (h *Handler) getAddresses(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	addrs, err := h.service.GetAddresses(c.UserContext(), userID)
	if err != nil {
		return logger.InternalError(c, err)
	}
	return c.JSON(addrs)
}

func (h *Handler) addAddress(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(addressRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	addr, err := h.service.AddAddress(c.UserContext(), payload.toAddress(userID))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(addr)
}

func (h *Handler) updateAddress(c *fiber.Ctx) error {
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

	addr, err := h.service.UpdateAddress(c.UserContext(), payload.toAddress(userID))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(addr)
}

func (h *Handler) deleteAddress(c *fiber.Ctx) error {
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

	if err := h.service.DeleteAddress(c.UserContext(), userID, payload.AddressID); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "address not found"})
	case errors.Is(err, ErrAddressRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return logger.InternalError(c, err)
	}
}
