package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/cvelasquez/eduplay-api/internal/api/shared"
	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/domain/progress"
	"github.com/cvelasquez/eduplay-api/internal/platform/logger"
	"github.com/cvelasquez/eduplay-api/internal/service"
)

// ProgressHandler handles activity progress API requests.
type ProgressHandler struct {
	progressService    service.ProgressService
	achievementService service.AchievementService
	validator          *validator.Validate
}

// NewProgressHandler creates a new ProgressHandler with the given dependencies.
func NewProgressHandler(
	progressService service.ProgressService,
	achievementService service.AchievementService,
) *ProgressHandler {
	return &ProgressHandler{
		progressService:    progressService,
		achievementService: achievementService,
		validator:          validator.New(),
	}
}

// RecordAttempt handles POST /children/{id}/activities/{activityID}/attempts.
// After the attempt is folded in, achievements are re-evaluated so the
// response can carry anything newly earned for the celebration screen.
func (h *ProgressHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	userID, childID, ok := handleUserIDAndPathUUID(w, r, "id", nil)
	if !ok {
		return
	}

	activityID, err := getPathUUID(r, "activityID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req RecordAttemptRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.progressService.RecordAttempt(r.Context(), userID, childID, activityID, service.AttemptInput{
		TotalQuestions: req.TotalQuestions,
		Difficulty:     domain.DifficultyLevel(req.Difficulty),
		Attempt: progress.Attempt{
			QuestionsAnswered: req.QuestionsAnswered,
			CorrectAnswers:    req.CorrectAnswers,
			TimeSpentSeconds:  req.TimeSpentSeconds,
			HintsUsed:         req.HintsUsed,
		},
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record attempt")
		return
	}

	// A failed evaluation must not lose the recorded attempt; the next
	// attempt re-derives the same snapshot and earns then.
	var newlyEarned []*service.AchievementView
	snap, err := h.achievementService.BuildSnapshot(r.Context(), childID)
	if err == nil {
		newlyEarned, err = h.achievementService.EvaluateForChild(r.Context(), userID, childID, snap)
	}
	if err != nil {
		log.Error("achievement evaluation failed after attempt",
			"error", err,
			"child_id", childID,
			"activity_id", activityID)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RecordAttemptResponse{
		Record:                 result.Record,
		CrownChallengeEligible: result.CrownChallengeEligible,
		NeedsAdditionalSupport: result.NeedsAdditionalSupport,
		NewlyEarned:            newlyEarned,
	})
}

// ListProgress handles GET /children/{id}/progress.
func (h *ProgressHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	userID, childID, ok := handleUserIDAndPathUUID(w, r, "id", nil)
	if !ok {
		return
	}

	records, err := h.progressService.ListForChild(r.Context(), userID, childID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list progress")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, records)
}
