package entitlement

import (
	"errors"
	"fmt"
	"time"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrNilSubscription = errors.New("subscription cannot be nil")
	ErrEmptyAccountID  = errors.New("account ID cannot be empty")
	ErrEmptyPlan       = errors.New("upgrade plan ID cannot be empty")

	// ErrInvalidTransition is returned when a lifecycle transition is
	// requested from a state it is not defined for (for example Renew on a
	// trial record). Callers that want no-op semantics can test for it with
	// errors.Is.
	ErrInvalidTransition = errors.New("invalid subscription transition")
)

// UnlimitedDailyActivities is the sentinel returned by DailyActivityLimit
// when no limit applies.
const UnlimitedDailyActivities = -1

// PlanUpgrade carries the billing collaborator's details for a premium
// upgrade. The engine never talks to a payment provider itself; it only
// records the identifiers the provider supplied.
type PlanUpgrade struct {
	PlanID        string
	PriceCents    int
	Currency      string
	BillingCycle  domain.BillingCycle
	Provider      string
	ExternalRef   string
	TransactionID string
}

// Service defines the subscription state machine and the entitlement reads
// derived from it. All operations take an explicit clock value and return new
// subscription instances rather than mutating their input.
//
// IsActive is the single premium-access authority: no other component may
// inline its own date comparison against subscription timestamps.
type Service interface {
	// NewTrial creates the initial trial subscription for an account.
	NewTrial(accountID uuid.UUID, now time.Time) (*domain.Subscription, error)

	// UpgradeToPremium moves a trial (or previously cancelled) record to
	// Active on the given paid plan, starting a fresh billing period.
	UpgradeToPremium(
		sub *domain.Subscription,
		upgrade PlanUpgrade,
		now time.Time,
	) (*domain.Subscription, error)

	// Renew extends an Active subscription by one additional billing cycle
	// and clears any payment-failure bookkeeping.
	Renew(sub *domain.Subscription, transactionID string, now time.Time) (*domain.Subscription, error)

	// Cancel ends an Active subscription. When immediate, the record becomes
	// Cancelled with the period closed at now; otherwise auto-renew is
	// switched off and the record stays Active until the period lapses.
	Cancel(
		sub *domain.Subscription,
		reason string,
		immediate bool,
		now time.Time,
	) (*domain.Subscription, error)

	// HandlePaymentFailure moves an Active subscription to PaymentFailed,
	// increments the retry counter, and opens a grace window of graceDays
	// (the configured default when graceDays <= 0).
	HandlePaymentFailure(
		sub *domain.Subscription,
		graceDays int,
		now time.Time,
	) (*domain.Subscription, error)

	// RestoreSubscription returns a PaymentFailed subscription to Active,
	// resetting the retry counter and grace window.
	RestoreSubscription(
		sub *domain.Subscription,
		transactionID string,
		now time.Time,
	) (*domain.Subscription, error)

	// IsActive reports whether the subscription currently grants premium
	// access: Active within its period, Trial within its trial window, or
	// PaymentFailed within its grace window.
	IsActive(sub *domain.Subscription, now time.Time) bool

	// IsExpired reports whether the record's current state has lapsed. This
	// is a computed read, never a stored transition.
	IsExpired(sub *domain.Subscription, now time.Time) bool

	// DailyActivityLimit returns UnlimitedDailyActivities while premium
	// access is held, and the free-tier limit otherwise.
	DailyActivityLimit(sub *domain.Subscription, now time.Time) int

	// CrownChallengesAvailable reports whether crown challenges are unlocked.
	CrownChallengesAvailable(sub *domain.Subscription, now time.Time) bool

	// RenewalReminderDue reports whether an Active, auto-renewing
	// subscription is within windowDays of its period end.
	RenewalReminderDue(sub *domain.Subscription, windowDays int, now time.Time) bool

	// DaysUntilExpiry returns whole days until the record's current state
	// lapses, rounded up. Zero for a missing or already-lapsed record.
	DaysUntilExpiry(sub *domain.Subscription, now time.Time) int
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new entitlement service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new entitlement service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// NewTrial implements Service.NewTrial.
func (s *defaultService) NewTrial(accountID uuid.UUID, now time.Time) (*domain.Subscription, error) {
	if accountID == uuid.Nil {
		return nil, ErrEmptyAccountID
	}

	sub := newTrialSubscription(accountID, now, s.params)

	if err := sub.Validate(); err != nil {
		return nil, err
	}

	return sub, nil
}

// UpgradeToPremium implements Service.UpgradeToPremium.
func (s *defaultService) UpgradeToPremium(
	sub *domain.Subscription,
	upgrade PlanUpgrade,
	now time.Time,
) (*domain.Subscription, error) {
	if sub == nil {
		return nil, ErrNilSubscription
	}

	if upgrade.PlanID == "" {
		return nil, ErrEmptyPlan
	}

	if sub.Status != domain.SubscriptionStatusTrial &&
		sub.Status != domain.SubscriptionStatusCancelled {
		return nil, fmt.Errorf("%w: upgrade requires trial or cancelled status, got %q",
			ErrInvalidTransition, sub.Status)
	}

	next := applyUpgrade(sub, upgrade, now)

	if err := next.Validate(); err != nil {
		return nil, err
	}

	return next, nil
}

// Renew implements Service.Renew.
func (s *defaultService) Renew(
	sub *domain.Subscription,
	transactionID string,
	now time.Time,
) (*domain.Subscription, error) {
	if sub == nil {
		return nil, ErrNilSubscription
	}

	if sub.Status != domain.SubscriptionStatusActive {
		return nil, fmt.Errorf("%w: renew requires active status, got %q",
			ErrInvalidTransition, sub.Status)
	}

	return applyRenewal(sub, transactionID, now), nil
}

// Cancel implements Service.Cancel.
func (s *defaultService) Cancel(
	sub *domain.Subscription,
	reason string,
	immediate bool,
	now time.Time,
) (*domain.Subscription, error) {
	if sub == nil {
		return nil, ErrNilSubscription
	}

	if sub.Status != domain.SubscriptionStatusActive {
		return nil, fmt.Errorf("%w: cancel requires active status, got %q",
			ErrInvalidTransition, sub.Status)
	}

	return applyCancellation(sub, reason, immediate, now), nil
}

// HandlePaymentFailure implements Service.HandlePaymentFailure.
func (s *defaultService) HandlePaymentFailure(
	sub *domain.Subscription,
	graceDays int,
	now time.Time,
) (*domain.Subscription, error) {
	if sub == nil {
		return nil, ErrNilSubscription
	}

	if sub.Status != domain.SubscriptionStatusActive {
		return nil, fmt.Errorf("%w: payment failure requires active status, got %q",
			ErrInvalidTransition, sub.Status)
	}

	if graceDays <= 0 {
		graceDays = s.params.DefaultGraceDays
	}

	return applyPaymentFailure(sub, graceDays, now), nil
}

// RestoreSubscription implements Service.RestoreSubscription.
func (s *defaultService) RestoreSubscription(
	sub *domain.Subscription,
	transactionID string,
	now time.Time,
) (*domain.Subscription, error) {
	if sub == nil {
		return nil, ErrNilSubscription
	}

	if sub.Status != domain.SubscriptionStatusPaymentFailed {
		return nil, fmt.Errorf("%w: restore requires payment_failed status, got %q",
			ErrInvalidTransition, sub.Status)
	}

	return applyRestore(sub, transactionID, now), nil
}

// IsActive implements Service.IsActive.
func (s *defaultService) IsActive(sub *domain.Subscription, now time.Time) bool {
	if sub == nil || sub.IsDeleted() {
		return false
	}

	switch sub.Status {
	case domain.SubscriptionStatusActive:
		return !now.After(sub.CurrentPeriodEnd)
	case domain.SubscriptionStatusTrial:
		return !now.After(sub.TrialEndsAt)
	case domain.SubscriptionStatusPaymentFailed:
		return !now.After(effectiveGraceEnd(sub, s.params.DefaultGraceDays))
	default:
		return false
	}
}

// IsExpired implements Service.IsExpired.
func (s *defaultService) IsExpired(sub *domain.Subscription, now time.Time) bool {
	if sub == nil {
		return false
	}

	switch sub.Status {
	case domain.SubscriptionStatusTrial:
		return now.After(sub.TrialEndsAt)
	case domain.SubscriptionStatusActive:
		return now.After(sub.CurrentPeriodEnd)
	case domain.SubscriptionStatusPaymentFailed:
		return now.After(effectiveGraceEnd(sub, s.params.DefaultGraceDays))
	case domain.SubscriptionStatusCancelled:
		return sub.CancelledAt != nil && now.After(sub.CurrentPeriodEnd)
	default:
		return false
	}
}

// DailyActivityLimit implements Service.DailyActivityLimit.
func (s *defaultService) DailyActivityLimit(sub *domain.Subscription, now time.Time) int {
	if s.IsActive(sub, now) {
		return UnlimitedDailyActivities
	}
	return s.params.FreeDailyActivityLimit
}

// CrownChallengesAvailable implements Service.CrownChallengesAvailable.
func (s *defaultService) CrownChallengesAvailable(sub *domain.Subscription, now time.Time) bool {
	return s.IsActive(sub, now)
}

// RenewalReminderDue implements Service.RenewalReminderDue.
func (s *defaultService) RenewalReminderDue(
	sub *domain.Subscription,
	windowDays int,
	now time.Time,
) bool {
	if sub == nil || sub.Status != domain.SubscriptionStatusActive || !sub.AutoRenew {
		return false
	}

	if now.After(sub.CurrentPeriodEnd) {
		return false
	}

	windowStart := sub.CurrentPeriodEnd.AddDate(0, 0, -windowDays)
	return !now.Before(windowStart)
}

// DaysUntilExpiry implements Service.DaysUntilExpiry.
func (s *defaultService) DaysUntilExpiry(sub *domain.Subscription, now time.Time) int {
	if sub == nil {
		return 0
	}

	var until time.Time
	switch sub.Status {
	case domain.SubscriptionStatusTrial:
		until = sub.TrialEndsAt
	case domain.SubscriptionStatusActive, domain.SubscriptionStatusCancelled:
		until = sub.CurrentPeriodEnd
	case domain.SubscriptionStatusPaymentFailed:
		until = effectiveGraceEnd(sub, s.params.DefaultGraceDays)
	default:
		return 0
	}

	remaining := until.Sub(now)
	if remaining <= 0 {
		return 0
	}

	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}
