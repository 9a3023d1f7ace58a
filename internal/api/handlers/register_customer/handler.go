package register_customer

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/customers"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/customers/models"
)

const (
	msgInvalidRequestBody = "Invalid request body"
	msgUserExists         = "User already exists"
)

type Handler struct {
	service CustomerService
	logger  Logger
}

func NewHandler(service CustomerService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/customers
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /customers - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	customer, err := h.service.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, customers.ErrInvalidInput):
			h.logger.Warn("POST /customers - Invalid input: %v", err)
			handlers.RespondBadRequest(w, validationMessage(err))

		case errors.Is(err, customers.ErrEmailTaken):
			h.logger.Warn("POST /customers - Email already registered")
			handlers.RespondConflict(w, msgUserExists)

		default:
			h.logger.Error("POST /customers - Failed to register customer: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /customers - Customer registered successfully: customer_id=%s", customer.ID)
	handlers.RespondJSON(w, http.StatusCreated, &RegisterCustomerResponse{
		Success:  true,
		Customer: customer,
	})
}

// validationMessage текст ответа для ошибки валидации
func validationMessage(err error) string {
	switch {
	case errors.Is(err, customers.ErrMissingFields):
		return "Missing required fields"
	case errors.Is(err, customers.ErrInvalidEmail):
		return "Invalid email format"
	case errors.Is(err, customers.ErrInvalidPhone):
		return "Invalid phone number format"
	default:
		return "Invalid customer data"
	}
}
