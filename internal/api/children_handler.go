package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/cvelasquez/eduplay-api/internal/api/shared"
	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/service"
)

// ChildrenHandler handles child profile API requests.
type ChildrenHandler struct {
	familyService service.FamilyService
	validator     *validator.Validate
}

// NewChildrenHandler creates a new ChildrenHandler with the given dependencies.
func NewChildrenHandler(familyService service.FamilyService) *ChildrenHandler {
	return &ChildrenHandler{
		familyService: familyService,
		validator:     validator.New(),
	}
}

// CreateChild handles POST /children, adding a profile under the
// authenticated parent's account.
func (h *ChildrenHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req CreateChildRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	child, err := h.familyService.CreateChild(r.Context(), userID, req.Name, req.AgeYears)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create child profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, child)
}

// GetChild handles GET /children/{id}.
func (h *ChildrenHandler) GetChild(w http.ResponseWriter, r *http.Request) {
	userID, childID, ok := handleUserIDAndPathUUID(w, r, "id", nil)
	if !ok {
		return
	}

	child, err := h.familyService.GetChild(r.Context(), userID, childID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get child profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, child)
}

// ListChildren handles GET /children.
func (h *ChildrenHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	children, err := h.familyService.ListChildren(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list child profiles")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, children)
}
