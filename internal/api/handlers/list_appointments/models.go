package list_appointments

import (
	"net/url"

	"github.com/m04kA/SMC-SpaBookingService/internal/service/bookings/models"
)

// ToServiceRequest формирует фильтр из query параметров
// Отсутствующий параметр означает отсутствие фильтра
func ToServiceRequest(query url.Values) *models.ListAppointmentsRequest {
	return &models.ListAppointmentsRequest{
		Date:       optional(query, "date"),
		ServiceID:  optional(query, "serviceId"),
		CustomerID: optional(query, "customerId"),
		Status:     optional(query, "status"),
	}
}

func optional(query url.Values, key string) *string {
	if !query.Has(key) {
		return nil
	}
	v := query.Get(key)
	return &v
}
