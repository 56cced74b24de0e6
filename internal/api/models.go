package api

import (
	"github.com/google/uuid"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/service"
)

// Common request/response structures

// RegisterRequest defines the payload for the parent registration endpoint.
type RegisterRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
	Password    string `json:"password"     validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated parent account
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CreateChildRequest defines the payload for adding a child profile.
type CreateChildRequest struct {
	Name     string `json:"name"      validate:"required,min=1,max=100"`
	AgeYears int    `json:"age_years" validate:"required,gte=2,lte=12"`
}

// UpgradeSubscriptionRequest carries the billing details from the payment
// provider for a move to a paid plan.
type UpgradeSubscriptionRequest struct {
	PlanID        string `json:"plan_id"        validate:"required"`
	PriceCents    int    `json:"price_cents"    validate:"required,gt=0"`
	Currency      string `json:"currency"       validate:"required,len=3"`
	BillingCycle  string `json:"billing_cycle"  validate:"required,oneof=monthly yearly"`
	Provider      string `json:"provider"       validate:"required"`
	ExternalRef   string `json:"external_ref"`
	TransactionID string `json:"transaction_id" validate:"required"`
}

// RenewSubscriptionRequest defines the payload for a billing-cycle renewal.
type RenewSubscriptionRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
}

// CancelSubscriptionRequest defines the payload for a cancellation.
// Immediate ends access now; otherwise access runs to the period end.
type CancelSubscriptionRequest struct {
	Reason    string `json:"reason"    validate:"max=500"`
	Immediate bool   `json:"immediate"`
}

// PaymentFailureRequest reports a failed renewal charge. GraceDays of zero
// selects the default grace window.
type PaymentFailureRequest struct {
	GraceDays int `json:"grace_days" validate:"gte=0,lte=30"`
}

// RestoreSubscriptionRequest defines the payload for restoring access after
// a successful payment retry.
type RestoreSubscriptionRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
}

// SubscriptionResponse pairs the raw subscription record with the
// entitlements derived from it.
type SubscriptionResponse struct {
	Subscription *domain.Subscription  `json:"subscription"`
	Entitlements *service.Entitlements `json:"entitlements,omitempty"`
}

// RecordAttemptRequest defines the payload for reporting a play-through of
// an activity. TotalQuestions and Difficulty describe the activity itself
// and only matter on the first attempt.
type RecordAttemptRequest struct {
	TotalQuestions    int    `json:"total_questions"    validate:"required,gt=0"`
	Difficulty        string `json:"difficulty"         validate:"omitempty,oneof=easy medium hard"`
	QuestionsAnswered int    `json:"questions_answered" validate:"gte=0"`
	CorrectAnswers    int    `json:"correct_answers"    validate:"gte=0"`
	TimeSpentSeconds  int    `json:"time_spent_seconds" validate:"gte=0"`
	HintsUsed         int    `json:"hints_used"         validate:"gte=0"`
}

// RecordAttemptResponse returns the updated record, the engine's derived
// signals, and any achievements the attempt newly earned.
type RecordAttemptResponse struct {
	Record                 *domain.ActivityProgress   `json:"record"`
	CrownChallengeEligible bool                       `json:"crown_challenge_eligible"`
	NeedsAdditionalSupport bool                       `json:"needs_additional_support"`
	NewlyEarned            []*service.AchievementView `json:"newly_earned,omitempty"`
}
