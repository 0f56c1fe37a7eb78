package entity

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// GenericServerMessage is returned to clients for any unclassified failure.
// Internal detail stays in the logs.
const GenericServerMessage = "oops, something went wrong, please try again later"

// Handler exposes the registration endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a registration HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type initiateRequest struct {
	MSISDN string `json:"msisdn"`
}

type confirmRequest struct {
	MSISDN   string `json:"msisdn"`
	Code     string `json:"code"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type confirmResponse struct {
	EID string `json:"eid"`
}

// Initiate handles the first registration phase: code delivery to the phone number.
func (h *Handler) Initiate(c *fiber.Ctx) error {
	var req initiateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Initiate(c.UserContext(), req.MSISDN); err != nil {
		return h.mapError(err)
	}

	return c.Status(http.StatusAccepted).JSON(fiber.Map{})
}

// Confirm handles the second phase: code check and entity creation.
func (h *Handler) Confirm(c *fiber.Ctx) error {
	var req confirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	e, err := h.service.Confirm(c.UserContext(), Registration{
		MSISDN:   req.MSISDN,
		Code:     req.Code,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return h.mapError(err)
	}

	h.logger.Info("entity registered", slog.String("eid", e.EID), slog.String("username", e.Username))

	return c.Status(http.StatusOK).JSON(confirmResponse{EID: e.EID})
}

// mapError converts the registration error taxonomy into HTTP errors.
// Conflicts and validation failures keep their messages; everything else is
// logged in full and replaced with a generic message.
func (h *Handler) mapError(err error) error {
	var missing *MissingFieldError
	switch {
	case errors.As(err, &missing):
		return fiber.NewError(http.StatusBadRequest, missing.Error())
	case errors.Is(err, ErrMSISDNTaken), errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrDuplicate):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrIncorrectCode):
		return fiber.NewError(http.StatusUnauthorized, ErrIncorrectCode.Error())
	default:
		h.logger.Error("registration failed", slog.Any("error", err))
		return fiber.NewError(http.StatusInternalServerError, GenericServerMessage)
	}
}
