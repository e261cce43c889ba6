package planner

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/itinera-ai/itinera/internal/api"
	"github.com/itinera-ai/itinera/internal/types"
)

// Handler exposes the itinerary synthesis endpoint.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

type planRequestBody struct {
	RequestText string `json:"request_text"`
}

// PlanItinerary handles POST /itineraries. Invalid request text is the only
// failure surfaced to the caller; every pipeline-internal failure comes back
// as a normal itinerary with a fallback provenance tag.
func (h *Handler) PlanItinerary(w http.ResponseWriter, r *http.Request) {
	var body planRequestBody
	if err := api.DecodeJSONBody(w, r, &body); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	itinerary, err := h.service.PlanDay(r.Context(), types.PlanRequest{RequestText: body.RequestText})
	if errors.Is(err, ErrRequestTooShort) {
		api.ErrorResponse(w, r, http.StatusBadRequest, "request text is too short to plan a day")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Itinerary synthesis failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to plan itinerary")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success":   true,
		"itinerary": itinerary,
	})
}
