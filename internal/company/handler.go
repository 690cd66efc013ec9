package company

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
	app.Get("/api/v1/company", h.getCompany)
	app.Get("/api/v1/company/credit", h.getCredit)
	app.Get("/api/v1/company/credit/payment-preview", h.getPaymentPreview)
	app.Post("/api/v1/company/credit/repay", h.repay)
}

func (h *Handler) getCompany(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	company, err := h.service.ForMember(c.UserContext(), userID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(company)
}

func (h *Handler) getCredit(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	summary, err := h.service.Credit(c.UserContext(), userID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(summary)
}

func (h *Handler) getPaymentPreview(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	method := PaymentMethod(c.Query("method", string(PayBankTransfer)))
	preview, err := h.service.PaymentPreview(c.UserContext(), userID, method)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(preview)
}

type repayRequest struct {
	Method  PaymentMethod `json:"method"`
	Version *int          `json:"version,omitempty"`
}

func (h *Handler) repay(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(repayRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	result, err := h.service.RepayFull(c.UserContext(), userID, payload.Method, payload.Version)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(result)
}

func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, user.ErrAccessDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "access denied"})
	case errors.Is(err, ErrNotFound), errors.Is(err, user.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrUnknownPaymentMethod):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrVersionConflict), errors.Is(err, ErrRepaymentInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrProfileUpdateFailed):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": ErrProfileUpdateFailed.Error()})
	default:
		return logger.InternalError(c, err)
	}
}
