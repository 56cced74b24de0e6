package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus represents the stored lifecycle state of a subscription.
// Expiry is a computed read over these states plus the record's timestamps,
// never a stored status of its own.
type SubscriptionStatus string

// Possible subscription status values
const (
	SubscriptionStatusTrial         SubscriptionStatus = "trial"
	SubscriptionStatusActive        SubscriptionStatus = "active"
	SubscriptionStatusPaymentFailed SubscriptionStatus = "payment_failed"
	SubscriptionStatusCancelled     SubscriptionStatus = "cancelled"
)

// BillingCycle represents how often a paid plan renews.
type BillingCycle string

// Possible billing cycle values
const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// Well-known plan identifiers
const (
	PlanFree           = "free"
	PlanPremiumMonthly = "premium_monthly"
	PlanPremiumYearly  = "premium_yearly"
)

// Common validation errors for Subscription
var (
	ErrEmptySubscriptionID        = errors.New("subscription ID cannot be empty")
	ErrEmptySubscriptionAccountID = errors.New("subscription account ID cannot be empty")
	ErrEmptyPlanID                = errors.New("subscription plan ID cannot be empty")
	ErrInvalidSubscriptionStatus  = errors.New("invalid subscription status")
	ErrInvalidBillingCycle        = errors.New("invalid billing cycle")
	ErrNegativePrice              = errors.New("subscription price cannot be negative")
	ErrInvalidCurrency            = errors.New("currency must be a 3-letter code")
)

// Subscription is the single billing record of a parent account. Exactly one
// non-deleted record exists per account. All lifecycle mutations go through
// the entitlement engine's named transitions; fields are never assigned
// directly outside of it.
type Subscription struct {
	ID        uuid.UUID          `json:"id"`
	AccountID uuid.UUID          `json:"account_id"`
	PlanID    string             `json:"plan_id"`
	Status    SubscriptionStatus `json:"status"`

	StartedAt        time.Time  `json:"started_at"`
	TrialEndsAt      time.Time  `json:"trial_ends_at"`
	CurrentPeriodEnd time.Time  `json:"current_period_end"`
	GracePeriodEnd   *time.Time `json:"grace_period_end,omitempty"`

	PriceCents   int          `json:"price_cents"`
	Currency     string       `json:"currency"`
	BillingCycle BillingCycle `json:"billing_cycle"`

	PaymentProvider   string     `json:"payment_provider"`
	ExternalRef       string     `json:"external_ref"`
	LastTransactionID string     `json:"last_transaction_id"`
	LastPaymentAt     *time.Time `json:"last_payment_at,omitempty"`

	AutoRenew  bool `json:"auto_renew"`
	RetryCount int  `json:"retry_count"`

	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`

	NeedsSync bool       `json:"needs_sync"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	AuditFields
}

// Validate checks if the Subscription has valid data.
// Returns an error if any field fails validation.
func (s *Subscription) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySubscriptionID
	}

	if s.AccountID == uuid.Nil {
		return ErrEmptySubscriptionAccountID
	}

	if s.PlanID == "" {
		return ErrEmptyPlanID
	}

	if !isValidSubscriptionStatus(s.Status) {
		return ErrInvalidSubscriptionStatus
	}

	if !isValidBillingCycle(s.BillingCycle) {
		return ErrInvalidBillingCycle
	}

	if s.PriceCents < 0 {
		return ErrNegativePrice
	}

	if len(s.Currency) != 3 {
		return ErrInvalidCurrency
	}

	return nil
}

// IsDeleted reports whether the record has been soft-deleted.
func (s *Subscription) IsDeleted() bool {
	return s.DeletedAt != nil
}

// isValidSubscriptionStatus checks if the given status is a valid SubscriptionStatus.
func isValidSubscriptionStatus(status SubscriptionStatus) bool {
	switch status {
	case SubscriptionStatusTrial, SubscriptionStatusActive,
		SubscriptionStatusPaymentFailed, SubscriptionStatusCancelled:
		return true
	default:
		return false
	}
}

// isValidBillingCycle checks if the given cycle is a valid BillingCycle.
func isValidBillingCycle(cycle BillingCycle) bool {
	switch cycle {
	case BillingCycleMonthly, BillingCycleYearly:
		return true
	default:
		return false
	}
}
