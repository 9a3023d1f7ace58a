package get_schedule

import (
	"net/http"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

type Handler struct {
	schedule domain.SlotSchedule
	logger   Logger
}

func NewHandler(schedule domain.SlotSchedule, logger Logger) *Handler {
	return &Handler{
		schedule: schedule,
		logger:   logger,
	}
}

// Handle GET /api/v1/schedule
// Публичный endpoint, сетка одинакова для всех услуг
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	response, err := FromDomainSchedule(h.schedule)
	if err != nil {
		h.logger.Error("GET /schedule - Invalid slot schedule: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /schedule - Schedule retrieved successfully: slots_count=%d", len(response.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
