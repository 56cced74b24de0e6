package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/domain/entitlement"
	"github.com/cvelasquez/eduplay-api/internal/store"
	"github.com/google/uuid"
)

// Entitlements is the read-side summary of what a subscription currently
// grants. It is derived entirely by the entitlement engine; handlers return
// it instead of letting clients re-derive access from raw timestamps.
type Entitlements struct {
	Status                   domain.SubscriptionStatus `json:"status"`
	IsActive                 bool                      `json:"is_active"`
	IsExpired                bool                      `json:"is_expired"`
	DailyActivityLimit       int                       `json:"daily_activity_limit"`
	CrownChallengesAvailable bool                      `json:"crown_challenges_available"`
	DaysUntilExpiry          int                       `json:"days_until_expiry"`
}

// SubscriptionService coordinates the subscription lifecycle: every mutation
// locks the account's live record, applies one engine transition, and writes
// the result back in the same transaction.
type SubscriptionService interface {
	// StartTrial creates the account's initial trial subscription.
	// Returns store.ErrSubscriptionExists if the account already has one.
	StartTrial(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error)

	// Get returns the account's live subscription and its current
	// entitlements.
	Get(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, *Entitlements, error)

	// Upgrade moves the subscription to a paid plan with the billing
	// details supplied by the payment provider.
	Upgrade(ctx context.Context, accountID uuid.UUID, upgrade entitlement.PlanUpgrade) (*domain.Subscription, error)

	// Renew extends the subscription by one billing cycle.
	Renew(ctx context.Context, accountID uuid.UUID, transactionID string) (*domain.Subscription, error)

	// Cancel ends the subscription, immediately or at period end.
	Cancel(ctx context.Context, accountID uuid.UUID, reason string, immediate bool) (*domain.Subscription, error)

	// HandlePaymentFailure records a failed renewal and opens the grace
	// window. graceDays <= 0 selects the configured default.
	HandlePaymentFailure(ctx context.Context, accountID uuid.UUID, graceDays int) (*domain.Subscription, error)

	// Restore returns a payment-failed subscription to active after a
	// successful retry.
	Restore(ctx context.Context, accountID uuid.UUID, transactionID string) (*domain.Subscription, error)
}

// subscriptionServiceImpl implements the SubscriptionService interface
type subscriptionServiceImpl struct {
	db       *sql.DB
	subStore store.SubscriptionStore
	engine   entitlement.Service
	logger   *slog.Logger
	timeFn   func() time.Time
}

// NewSubscriptionService creates a new SubscriptionService.
// It returns an error if any of the required dependencies are nil.
func NewSubscriptionService(
	db *sql.DB,
	subStore store.SubscriptionStore,
	engine entitlement.Service,
	logger *slog.Logger,
) (SubscriptionService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if subStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "subStore cannot be nil"}
	}
	if engine == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "engine cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &subscriptionServiceImpl{
		db:       db,
		subStore: subStore,
		engine:   engine,
		logger:   logger.With("component", "subscription_service"),
		timeFn:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// StartTrial implements SubscriptionService.StartTrial.
func (s *subscriptionServiceImpl) StartTrial(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error) {
	now := s.timeFn()

	sub, err := s.engine.NewTrial(accountID, now)
	if err != nil {
		s.logger.Error("failed to build trial subscription",
			"error", err,
			"account_id", accountID)
		return nil, &ServiceError{Operation: "start_trial", Message: "failed to build trial subscription", Err: err}
	}

	if err := s.subStore.Create(ctx, sub); err != nil {
		s.logger.Error("failed to save trial subscription",
			"error", err,
			"account_id", accountID)
		return nil, err
	}

	s.logger.Info("trial subscription started",
		"subscription_id", sub.ID,
		"account_id", accountID,
		"trial_ends_at", sub.TrialEndsAt)
	return sub, nil
}

// Get implements SubscriptionService.Get.
func (s *subscriptionServiceImpl) Get(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, *Entitlements, error) {
	sub, err := s.subStore.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	now := s.timeFn()
	ent := &Entitlements{
		Status:                   sub.Status,
		IsActive:                 s.engine.IsActive(sub, now),
		IsExpired:                s.engine.IsExpired(sub, now),
		DailyActivityLimit:       s.engine.DailyActivityLimit(sub, now),
		CrownChallengesAvailable: s.engine.CrownChallengesAvailable(sub, now),
		DaysUntilExpiry:          s.engine.DaysUntilExpiry(sub, now),
	}

	return sub, ent, nil
}

// Upgrade implements SubscriptionService.Upgrade.
func (s *subscriptionServiceImpl) Upgrade(
	ctx context.Context,
	accountID uuid.UUID,
	upgrade entitlement.PlanUpgrade,
) (*domain.Subscription, error) {
	return s.transition(ctx, accountID, "upgrade", func(sub *domain.Subscription, now time.Time) (*domain.Subscription, error) {
		return s.engine.UpgradeToPremium(sub, upgrade, now)
	})
}

// Renew implements SubscriptionService.Renew.
func (s *subscriptionServiceImpl) Renew(ctx context.Context, accountID uuid.UUID, transactionID string) (*domain.Subscription, error) {
	return s.transition(ctx, accountID, "renew", func(sub *domain.Subscription, now time.Time) (*domain.Subscription, error) {
		return s.engine.Renew(sub, transactionID, now)
	})
}

// Cancel implements SubscriptionService.Cancel.
func (s *subscriptionServiceImpl) Cancel(
	ctx context.Context,
	accountID uuid.UUID,
	reason string,
	immediate bool,
) (*domain.Subscription, error) {
	return s.transition(ctx, accountID, "cancel", func(sub *domain.Subscription, now time.Time) (*domain.Subscription, error) {
		return s.engine.Cancel(sub, reason, immediate, now)
	})
}

// HandlePaymentFailure implements SubscriptionService.HandlePaymentFailure.
func (s *subscriptionServiceImpl) HandlePaymentFailure(
	ctx context.Context,
	accountID uuid.UUID,
	graceDays int,
) (*domain.Subscription, error) {
	return s.transition(ctx, accountID, "payment_failure", func(sub *domain.Subscription, now time.Time) (*domain.Subscription, error) {
		return s.engine.HandlePaymentFailure(sub, graceDays, now)
	})
}

// Restore implements SubscriptionService.Restore.
func (s *subscriptionServiceImpl) Restore(ctx context.Context, accountID uuid.UUID, transactionID string) (*domain.Subscription, error) {
	return s.transition(ctx, accountID, "restore", func(sub *domain.Subscription, now time.Time) (*domain.Subscription, error) {
		return s.engine.RestoreSubscription(sub, transactionID, now)
	})
}

// transition runs one engine transition against the account's live record
// under a row lock, so concurrent lifecycle calls serialize instead of
// clobbering each other.
func (s *subscriptionServiceImpl) transition(
	ctx context.Context,
	accountID uuid.UUID,
	operation string,
	apply func(sub *domain.Subscription, now time.Time) (*domain.Subscription, error),
) (*domain.Subscription, error) {
	var result *domain.Subscription

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.subStore.WithTx(tx)

		sub, err := txStore.GetForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		next, err := apply(sub, s.timeFn())
		if err != nil {
			return err
		}

		if err := txStore.Update(ctx, next); err != nil {
			return err
		}

		result = next
		return nil
	})

	if err != nil {
		s.logger.Warn("subscription transition failed",
			"error", err,
			"operation", operation,
			"account_id", accountID)
		return nil, err
	}

	s.logger.Info("subscription transition applied",
		"operation", operation,
		"account_id", accountID,
		"subscription_id", result.ID,
		"status", result.Status)
	return result, nil
}
