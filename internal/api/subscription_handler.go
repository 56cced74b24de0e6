package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/cvelasquez/eduplay-api/internal/api/shared"
	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/domain/entitlement"
	"github.com/cvelasquez/eduplay-api/internal/service"
)

// SubscriptionHandler handles subscription lifecycle API requests. Upgrade,
// renew, payment-failure, and restore are driven by payment provider
// callbacks relayed through the client.
type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	validator           *validator.Validate
}

// NewSubscriptionHandler creates a new SubscriptionHandler with the given dependencies.
func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		validator:           validator.New(),
	}
}

// Get handles GET /subscription, returning the account's subscription and
// its current entitlements.
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	sub, ent, err := h.subscriptionService.Get(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get subscription")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubscriptionResponse{
		Subscription: sub,
		Entitlements: ent,
	})
}

// Upgrade handles POST /subscription/upgrade.
func (h *SubscriptionHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req UpgradeSubscriptionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	sub, err := h.subscriptionService.Upgrade(r.Context(), userID, entitlement.PlanUpgrade{
		PlanID:        req.PlanID,
		PriceCents:    req.PriceCents,
		Currency:      req.Currency,
		BillingCycle:  domain.BillingCycle(req.BillingCycle),
		Provider:      req.Provider,
		ExternalRef:   req.ExternalRef,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to upgrade subscription")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubscriptionResponse{Subscription: sub})
}

// Renew handles POST /subscription/renew.
func (h *SubscriptionHandler) Renew(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req RenewSubscriptionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	sub, err := h.subscriptionService.Renew(r.Context(), userID, req.TransactionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to renew subscription")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubscriptionResponse{Subscription: sub})
}

// Cancel handles POST /subscription/cancel.
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req CancelSubscriptionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	sub, err := h.subscriptionService.Cancel(r.Context(), userID, req.Reason, req.Immediate)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to cancel subscription")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubscriptionResponse{Subscription: sub})
}

// PaymentFailure handles POST /subscription/payment-failed.
func (h *SubscriptionHandler) PaymentFailure(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req PaymentFailureRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	sub, err := h.subscriptionService.HandlePaymentFailure(r.Context(), userID, req.GraceDays)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record payment failure")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubscriptionResponse{Subscription: sub})
}

// Restore handles POST /subscription/restore.
func (h *SubscriptionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req RestoreSubscriptionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	sub, err := h.subscriptionService.Restore(r.Context(), userID, req.TransactionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to restore subscription")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubscriptionResponse{Subscription: sub})
}
