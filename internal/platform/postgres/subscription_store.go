package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/platform/logger"
	"github.com/cvelasquez/eduplay-api/internal/store"
	"github.com/google/uuid"
)

// subscriptionColumns is the column list shared by every subscription query.
// Keep it in sync with scanSubscription.
const subscriptionColumns = `id, account_id, plan_id, status,
	started_at, trial_ends_at, current_period_end, grace_period_end,
	price_cents, currency, billing_cycle,
	payment_provider, external_ref, last_transaction_id, last_payment_at,
	auto_renew, retry_count, cancelled_at, cancellation_reason,
	needs_sync, deleted_at, created_at, updated_at`

// PostgresSubscriptionStore implements the store.SubscriptionStore interface
// using a PostgreSQL database as the storage backend. A partial unique index
// on (account_id) WHERE deleted_at IS NULL enforces the one-live-record
// invariant at the schema level.
type PostgresSubscriptionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSubscriptionStore creates a new PostgreSQL implementation of
// the SubscriptionStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSubscriptionStore(db store.DBTX, logger *slog.Logger) *PostgresSubscriptionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSubscriptionStore{
		db:     db,
		logger: logger.With(slog.String("component", "subscription_store")),
	}
}

// Ensure PostgresSubscriptionStore implements store.SubscriptionStore interface
var _ store.SubscriptionStore = (*PostgresSubscriptionStore)(nil)

// Create implements store.SubscriptionStore.Create
// Returns store.ErrSubscriptionExists if the account already has a live
// record, and store.ErrInvalidEntity if the account doesn't exist.
func (s *PostgresSubscriptionStore) Create(ctx context.Context, sub *domain.Subscription) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := sub.Validate(); err != nil {
		log.Warn("subscription validation failed during create",
			slog.String("error", err.Error()),
			slog.String("subscription_id", sub.ID.String()))
		return err
	}

	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		sub.ID,
		sub.AccountID,
		sub.PlanID,
		sub.Status,
		sub.StartedAt,
		sub.TrialEndsAt,
		sub.CurrentPeriodEnd,
		sub.GracePeriodEnd,
		sub.PriceCents,
		sub.Currency,
		sub.BillingCycle,
		sub.PaymentProvider,
		sub.ExternalRef,
		sub.LastTransactionID,
		sub.LastPaymentAt,
		sub.AutoRenew,
		sub.RetryCount,
		sub.CancelledAt,
		sub.CancellationReason,
		sub.NeedsSync,
		sub.DeletedAt,
		sub.CreatedAt,
		sub.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("account already has a live subscription",
				slog.String("account_id", sub.AccountID.String()))
			return fmt.Errorf("%w: %v", store.ErrSubscriptionExists, err)
		}
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during subscription creation",
				slog.String("account_id", sub.AccountID.String()))
			return fmt.Errorf("%w: account with ID %s not found",
				store.ErrInvalidEntity, sub.AccountID)
		}

		log.Error("failed to create subscription",
			slog.String("error", err.Error()),
			slog.String("subscription_id", sub.ID.String()))
		return MapError(err)
	}

	log.Info("subscription created successfully",
		slog.String("subscription_id", sub.ID.String()),
		slog.String("account_id", sub.AccountID.String()),
		slog.String("status", string(sub.Status)))
	return nil
}

// GetByAccountID implements store.SubscriptionStore.GetByAccountID
// Returns store.ErrSubscriptionNotFound if the account has no live record.
func (s *PostgresSubscriptionStore) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error) {
	return s.getByAccount(ctx, accountID, false)
}

// GetForUpdate implements store.SubscriptionStore.GetForUpdate
// It locks the row with SELECT FOR UPDATE; callers must hold a transaction.
// Returns store.ErrSubscriptionNotFound if the account has no live record.
func (s *PostgresSubscriptionStore) GetForUpdate(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error) {
	return s.getByAccount(ctx, accountID, true)
}

func (s *PostgresSubscriptionStore) getByAccount(ctx context.Context, accountID uuid.UUID, forUpdate bool) (*domain.Subscription, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE account_id = $1 AND deleted_at IS NULL
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	sub, err := scanSubscription(s.db.QueryRowContext(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("subscription not found",
				slog.String("account_id", accountID.String()))
			return nil, store.ErrSubscriptionNotFound
		}
		log.Error("failed to get subscription by account",
			slog.String("error", err.Error()),
			slog.String("account_id", accountID.String()))
		return nil, MapError(err)
	}

	return sub, nil
}

// Update implements store.SubscriptionStore.Update
// Returns store.ErrSubscriptionNotFound if the record does not exist.
func (s *PostgresSubscriptionStore) Update(ctx context.Context, sub *domain.Subscription) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := sub.Validate(); err != nil {
		log.Warn("subscription validation failed during update",
			slog.String("error", err.Error()),
			slog.String("subscription_id", sub.ID.String()))
		return err
	}

	sub.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE subscriptions
		SET plan_id = $1, status = $2,
			started_at = $3, trial_ends_at = $4, current_period_end = $5, grace_period_end = $6,
			price_cents = $7, currency = $8, billing_cycle = $9,
			payment_provider = $10, external_ref = $11, last_transaction_id = $12, last_payment_at = $13,
			auto_renew = $14, retry_count = $15, cancelled_at = $16, cancellation_reason = $17,
			needs_sync = $18, deleted_at = $19, updated_at = $20
		WHERE id = $21
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		sub.PlanID,
		sub.Status,
		sub.StartedAt,
		sub.TrialEndsAt,
		sub.CurrentPeriodEnd,
		sub.GracePeriodEnd,
		sub.PriceCents,
		sub.Currency,
		sub.BillingCycle,
		sub.PaymentProvider,
		sub.ExternalRef,
		sub.LastTransactionID,
		sub.LastPaymentAt,
		sub.AutoRenew,
		sub.RetryCount,
		sub.CancelledAt,
		sub.CancellationReason,
		sub.NeedsSync,
		sub.DeletedAt,
		sub.UpdatedAt,
		sub.ID,
	)

	if err != nil {
		log.Error("failed to update subscription",
			slog.String("error", err.Error()),
			slog.String("subscription_id", sub.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrSubscriptionNotFound); err != nil {
		log.Debug("subscription not found for update",
			slog.String("subscription_id", sub.ID.String()))
		return err
	}

	log.Info("subscription updated successfully",
		slog.String("subscription_id", sub.ID.String()),
		slog.String("status", string(sub.Status)))
	return nil
}

// WithTx implements store.SubscriptionStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresSubscriptionStore) WithTx(tx *sql.Tx) store.SubscriptionStore {
	return &PostgresSubscriptionStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanSubscription.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSubscription reads one subscription row in subscriptionColumns order.
func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var sub domain.Subscription
	var status, cycle string

	err := row.Scan(
		&sub.ID,
		&sub.AccountID,
		&sub.PlanID,
		&status,
		&sub.StartedAt,
		&sub.TrialEndsAt,
		&sub.CurrentPeriodEnd,
		&sub.GracePeriodEnd,
		&sub.PriceCents,
		&sub.Currency,
		&cycle,
		&sub.PaymentProvider,
		&sub.ExternalRef,
		&sub.LastTransactionID,
		&sub.LastPaymentAt,
		&sub.AutoRenew,
		&sub.RetryCount,
		&sub.CancelledAt,
		&sub.CancellationReason,
		&sub.NeedsSync,
		&sub.DeletedAt,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.Status = domain.SubscriptionStatus(status)
	sub.BillingCycle = domain.BillingCycle(cycle)
	return &sub, nil
}
