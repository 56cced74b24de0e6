//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/domain/entitlement"
	"github.com/cvelasquez/eduplay-api/internal/store"
)

// openTestDB connects to the database named by EDUPLAY_TEST_DB_URL and runs
// the embedded migrations. Tests are skipped when the variable is unset so a
// plain `go test ./...` stays hermetic.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("EDUPLAY_TEST_DB_URL")
	if url == "" {
		t.Skip("EDUPLAY_TEST_DB_URL not set; skipping database integration test")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, RunMigrations(ctx, db))

	return db
}

// createTestAccount inserts a parent account to satisfy the subscription
// foreign key.
func createTestAccount(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()

	users := NewPostgresUserStore(db, slog.Default(), 4)
	email := fmt.Sprintf("it-%s@example.com", uuid.NewString()[:8])

	user, err := domain.NewUser(email, "Integration Parent", "longenoughpassword", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), user))

	return user.ID
}

func TestSubscriptionStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	subs := NewPostgresSubscriptionStore(db, slog.Default())
	engine := entitlement.NewDefaultService()
	now := time.Now().UTC().Truncate(time.Microsecond)

	accountID := createTestAccount(t, db)

	trial, err := engine.NewTrial(accountID, now)
	require.NoError(t, err)
	require.NoError(t, subs.Create(ctx, trial))

	t.Run("round trips the trial record", func(t *testing.T) {
		got, err := subs.GetByAccountID(ctx, accountID)
		require.NoError(t, err)

		assert.Equal(t, trial.ID, got.ID)
		assert.Equal(t, domain.SubscriptionStatusTrial, got.Status)
		assert.WithinDuration(t, trial.TrialEndsAt, got.TrialEndsAt, time.Millisecond)
		assert.True(t, got.NeedsSync)
	})

	t.Run("enforces one live record per account", func(t *testing.T) {
		dup, err := engine.NewTrial(accountID, now)
		require.NoError(t, err)

		err = subs.Create(ctx, dup)
		assert.ErrorIs(t, err, store.ErrSubscriptionExists)
	})

	t.Run("persists an engine transition", func(t *testing.T) {
		upgraded, err := engine.UpgradeToPremium(trial, entitlement.PlanUpgrade{
			PlanID:        domain.PlanPremiumMonthly,
			PriceCents:    499,
			Currency:      "USD",
			BillingCycle:  domain.BillingCycleMonthly,
			Provider:      "google_play",
			TransactionID: "it-txn-1",
		}, now)
		require.NoError(t, err)
		require.NoError(t, subs.Update(ctx, upgraded))

		got, err := subs.GetByAccountID(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionStatusActive, got.Status)
		assert.Equal(t, domain.PlanPremiumMonthly, got.PlanID)
		assert.Equal(t, 499, got.PriceCents)
		require.NotNil(t, got.LastPaymentAt)
	})

	t.Run("locks the row inside a transaction", func(t *testing.T) {
		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			txStore := subs.WithTx(tx)

			locked, err := txStore.GetForUpdate(ctx, accountID)
			if err != nil {
				return err
			}

			next, err := engine.Cancel(locked, "integration test", true, time.Now().UTC())
			if err != nil {
				return err
			}
			return txStore.Update(ctx, next)
		})
		require.NoError(t, err)

		got, err := subs.GetByAccountID(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionStatusCancelled, got.Status)
	})

	t.Run("missing account maps to the sentinel", func(t *testing.T) {
		_, err := subs.GetByAccountID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrSubscriptionNotFound)
	})
}
