package register_customer

import (
	"github.com/m04kA/SMC-SpaBookingService/internal/service/customers/models"
)

// RegisterCustomerResponse HTTP response model
type RegisterCustomerResponse struct {
	Success  bool                     `json:"success"`
	Customer *models.CustomerResponse `json:"customer"`
}
