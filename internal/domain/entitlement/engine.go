package entitlement

import (
	"time"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/google/uuid"
)

// newTrialSubscription builds the initial trial record for an account. The
// trial window is params.TrialDays from creation; the record carries the free
// plan until an upgrade replaces it.
func newTrialSubscription(accountID uuid.UUID, now time.Time, params *Params) *domain.Subscription {
	return &domain.Subscription{
		ID:           uuid.New(),
		AccountID:    accountID,
		PlanID:       domain.PlanFree,
		Status:       domain.SubscriptionStatusTrial,
		StartedAt:    now,
		TrialEndsAt:  now.AddDate(0, 0, params.TrialDays),
		Currency:     "USD",
		BillingCycle: domain.BillingCycleMonthly,
		NeedsSync:    true,
		AuditFields:  domain.NewAuditFields(now),
	}
}

// applyUpgrade returns a copy of sub moved to Active on the upgraded plan,
// with a fresh billing period starting at now.
func applyUpgrade(sub *domain.Subscription, upgrade PlanUpgrade, now time.Time) *domain.Subscription {
	next := clone(sub)

	next.Status = domain.SubscriptionStatusActive
	next.PlanID = upgrade.PlanID
	next.PriceCents = upgrade.PriceCents
	if upgrade.Currency != "" {
		next.Currency = upgrade.Currency
	}
	next.BillingCycle = upgrade.BillingCycle
	next.PaymentProvider = upgrade.Provider
	next.ExternalRef = upgrade.ExternalRef
	next.LastTransactionID = upgrade.TransactionID

	paidAt := now
	next.LastPaymentAt = &paidAt
	next.CurrentPeriodEnd = addBillingCycle(now, upgrade.BillingCycle)

	next.AutoRenew = true
	next.RetryCount = 0
	next.GracePeriodEnd = nil
	next.CancelledAt = nil
	next.CancellationReason = ""

	markChanged(next, now)
	return next
}

// applyRenewal returns a copy of sub with its period extended by one
// additional billing cycle and payment-failure bookkeeping cleared.
func applyRenewal(sub *domain.Subscription, transactionID string, now time.Time) *domain.Subscription {
	next := clone(sub)

	next.CurrentPeriodEnd = addBillingCycle(sub.CurrentPeriodEnd, sub.BillingCycle)
	next.LastTransactionID = transactionID
	paidAt := now
	next.LastPaymentAt = &paidAt
	next.RetryCount = 0
	next.GracePeriodEnd = nil

	markChanged(next, now)
	return next
}

// applyCancellation returns a copy of sub with the cancellation recorded.
// Immediate cancellations close the period at now and move the status to
// Cancelled; deferred ones only switch auto-renew off, leaving the record
// Active until the period lapses.
func applyCancellation(
	sub *domain.Subscription,
	reason string,
	immediate bool,
	now time.Time,
) *domain.Subscription {
	next := clone(sub)

	cancelledAt := now
	next.CancelledAt = &cancelledAt
	next.CancellationReason = reason
	next.AutoRenew = false

	if immediate {
		next.Status = domain.SubscriptionStatusCancelled
		next.CurrentPeriodEnd = now
	}

	markChanged(next, now)
	return next
}

// applyPaymentFailure returns a copy of sub moved to PaymentFailed with the
// retry counter incremented and a grace window of graceDays opened at now.
func applyPaymentFailure(sub *domain.Subscription, graceDays int, now time.Time) *domain.Subscription {
	next := clone(sub)

	next.Status = domain.SubscriptionStatusPaymentFailed
	next.RetryCount = sub.RetryCount + 1
	graceEnd := now.AddDate(0, 0, graceDays)
	next.GracePeriodEnd = &graceEnd

	markChanged(next, now)
	return next
}

// applyRestore returns a copy of sub moved back to Active with retry count
// and grace window reset.
func applyRestore(sub *domain.Subscription, transactionID string, now time.Time) *domain.Subscription {
	next := clone(sub)

	next.Status = domain.SubscriptionStatusActive
	next.RetryCount = 0
	next.GracePeriodEnd = nil
	next.LastTransactionID = transactionID
	paidAt := now
	next.LastPaymentAt = &paidAt

	markChanged(next, now)
	return next
}

// addBillingCycle advances a timestamp by one billing cycle.
func addBillingCycle(from time.Time, cycle domain.BillingCycle) time.Time {
	if cycle == domain.BillingCycleYearly {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}

// effectiveGraceEnd returns the end of the grace window for a PaymentFailed
// record: the stored grace end when present, otherwise the period end plus
// the default grace days.
func effectiveGraceEnd(sub *domain.Subscription, defaultGraceDays int) time.Time {
	if sub.GracePeriodEnd != nil {
		return *sub.GracePeriodEnd
	}
	return sub.CurrentPeriodEnd.AddDate(0, 0, defaultGraceDays)
}

// markChanged stamps the audit fields and flags the record for the (future)
// sync mechanism.
func markChanged(sub *domain.Subscription, now time.Time) {
	sub.NeedsSync = true
	sub.Touch(now)
}

// clone returns a field-by-field copy of sub with its own copies of the
// optional timestamps, so transitions never alias the caller's record.
func clone(sub *domain.Subscription) *domain.Subscription {
	next := *sub

	next.GracePeriodEnd = copyTime(sub.GracePeriodEnd)
	next.LastPaymentAt = copyTime(sub.LastPaymentAt)
	next.CancelledAt = copyTime(sub.CancelledAt)
	next.DeletedAt = copyTime(sub.DeletedAt)

	return &next
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
