package api

import (
	"net/http"

	"github.com/cvelasquez/eduplay-api/internal/api/shared"
	"github.com/cvelasquez/eduplay-api/internal/service"
)

// AchievementHandler handles achievement API requests.
type AchievementHandler struct {
	achievementService service.AchievementService
}

// NewAchievementHandler creates a new AchievementHandler with the given dependencies.
func NewAchievementHandler(achievementService service.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

// ListAchievements handles GET /children/{id}/achievements, returning the
// child's achievements filtered by visibility rules.
func (h *AchievementHandler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	userID, childID, ok := handleUserIDAndPathUUID(w, r, "id", nil)
	if !ok {
		return
	}

	views, err := h.achievementService.ListForChild(r.Context(), userID, childID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list achievements")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, views)
}

// AcknowledgeCelebration handles
// POST /children/{id}/achievements/{achievementID}/celebration, clearing a
// pending earn celebration once the client has shown it.
func (h *AchievementHandler) AcknowledgeCelebration(w http.ResponseWriter, r *http.Request) {
	userID, childID, ok := handleUserIDAndPathUUID(w, r, "id", nil)
	if !ok {
		return
	}

	achievementID, err := getPathUUID(r, "achievementID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	state, err := h.achievementService.AcknowledgeCelebration(r.Context(), userID, childID, achievementID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to acknowledge celebration")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, state)
}
