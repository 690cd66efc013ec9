package rewards

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

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/rewards", h.getCatalog)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/rewards/points", h.getPoints)
	app.Get("/api/v1/rewards/vouchers", h.getVouchers)
	app.Post("/api/v1/rewards/redemptions", h.startRedemption)
	app.Get("/api/v1/rewards/redemptions/current", h.getRedemption)
	app.Post("/api/v1/rewards/redemptions/confirm", h.confirmRedemption)
	app.Post("/api/v1/rewards/redemptions/details", h.submitDetails)
	app.Delete("/api/v1/rewards/redemptions/current", h.cancelRedemption)
}

func (h *Handler) getCatalog(c *fiber.Ctx) error {
	rewards, err := h.service.Catalog(c.UserContext())
	if err != nil {
		return logger.InternalError(c, err)
	}
	return c.JSON(rewards)
}

func (h *Handler) getPoints(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	points, err := h.service.Points(c.UserContext(), userID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{"points": points})
}

func (h *Handler) getVouchers(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	vouchers, err := h.service.Vouchers(c.UserContext(), userID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(vouchers)
}

type startRequest struct {
	RewardID int `json:"rewardId"`
}

func (h *Handler) startRedemption(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(startRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	r, err := h.service.Start(c.UserContext(), userID, payload.RewardID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (h *Handler) getRedemption(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	r, err := h.service.Current(userID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(r)
}

func (h *Handler) confirmRedemption(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	r, err := h.service.Confirm(c.UserContext(), userID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(r)
}

type detailsRequest struct {
	DeliveryMethod DeliveryMethod `json:"deliveryMethod"`
}

func (h *Handler) submitDetails(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(detailsRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	r, err := h.service.SubmitDetails(c.UserContext(), userID, payload.DeliveryMethod)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(r)
}

func (h *Handler) cancelRedemption(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := h.service.Cancel(userID); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrRewardNotFound), errors.Is(err, ErrNoRedemption):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrInsufficientPoints):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrRedemptionInProgress), errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotCancellable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrInvalidDeliveryMethod):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return logger.InternalError(c, err)
	}
}
