package catalog

import (
	"log/slog"
	"net/http"

	"github.com/itinera-ai/itinera/internal/api"
	"github.com/itinera-ai/itinera/internal/types"
)

// Handler exposes read-only catalog endpoints.
type Handler struct {
	logger *slog.Logger
	repo   Repository
}

func NewHandler(repo Repository, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, repo: repo}
}

func (h *Handler) ListAttractions(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	var (
		attractions []types.Attraction
		err         error
	)
	if category != "" {
		attractions, err = h.repo.GetAttractionsByCategory(r.Context(), types.AttractionCategory(category))
	} else {
		attractions, err = h.repo.GetAttractions(r.Context())
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list attractions", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to list attractions")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success":     true,
		"attractions": attractions,
	})
}
