package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/domain/achievement"
	"github.com/cvelasquez/eduplay-api/internal/domain/entitlement"
	"github.com/cvelasquez/eduplay-api/internal/service"
)

// MockFamilyService implements service.FamilyService for handler tests.
type MockFamilyService struct {
	CreateChildFn  func(ctx context.Context, parentID uuid.UUID, name string, ageYears int) (*domain.Child, error)
	GetChildFn     func(ctx context.Context, parentID, childID uuid.UUID) (*domain.Child, error)
	ListChildrenFn func(ctx context.Context, parentID uuid.UUID) ([]*domain.Child, error)
}

func (m *MockFamilyService) CreateChild(ctx context.Context, parentID uuid.UUID, name string, ageYears int) (*domain.Child, error) {
	return m.CreateChildFn(ctx, parentID, name, ageYears)
}

func (m *MockFamilyService) GetChild(ctx context.Context, parentID, childID uuid.UUID) (*domain.Child, error) {
	return m.GetChildFn(ctx, parentID, childID)
}

func (m *MockFamilyService) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.Child, error) {
	return m.ListChildrenFn(ctx, parentID)
}

// MockSubscriptionService implements service.SubscriptionService for handler tests.
type MockSubscriptionService struct {
	StartTrialFn           func(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error)
	GetFn                  func(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, *service.Entitlements, error)
	UpgradeFn              func(ctx context.Context, accountID uuid.UUID, upgrade entitlement.PlanUpgrade) (*domain.Subscription, error)
	RenewFn                func(ctx context.Context, accountID uuid.UUID, transactionID string) (*domain.Subscription, error)
	CancelFn               func(ctx context.Context, accountID uuid.UUID, reason string, immediate bool) (*domain.Subscription, error)
	HandlePaymentFailureFn func(ctx context.Context, accountID uuid.UUID, graceDays int) (*domain.Subscription, error)
	RestoreFn              func(ctx context.Context, accountID uuid.UUID, transactionID string) (*domain.Subscription, error)

	// StartTrialCallCount tracks registrations that reached trial creation
	StartTrialCallCount int
}

func (m *MockSubscriptionService) StartTrial(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error) {
	m.StartTrialCallCount++
	if m.StartTrialFn != nil {
		return m.StartTrialFn(ctx, accountID)
	}
	return &domain.Subscription{AccountID: accountID, Status: domain.SubscriptionStatusTrial}, nil
}

func (m *MockSubscriptionService) Get(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, *service.Entitlements, error) {
	return m.GetFn(ctx, accountID)
}

func (m *MockSubscriptionService) Upgrade(ctx context.Context, accountID uuid.UUID, upgrade entitlement.PlanUpgrade) (*domain.Subscription, error) {
	return m.UpgradeFn(ctx, accountID, upgrade)
}

func (m *MockSubscriptionService) Renew(ctx context.Context, accountID uuid.UUID, transactionID string) (*domain.Subscription, error) {
	return m.RenewFn(ctx, accountID, transactionID)
}

func (m *MockSubscriptionService) Cancel(ctx context.Context, accountID uuid.UUID, reason string, immediate bool) (*domain.Subscription, error) {
	return m.CancelFn(ctx, accountID, reason, immediate)
}

func (m *MockSubscriptionService) HandlePaymentFailure(ctx context.Context, accountID uuid.UUID, graceDays int) (*domain.Subscription, error) {
	return m.HandlePaymentFailureFn(ctx, accountID, graceDays)
}

func (m *MockSubscriptionService) Restore(ctx context.Context, accountID uuid.UUID, transactionID string) (*domain.Subscription, error) {
	return m.RestoreFn(ctx, accountID, transactionID)
}

// MockProgressService implements service.ProgressService for handler tests.
type MockProgressService struct {
	RecordAttemptFn func(ctx context.Context, parentID, childID, activityID uuid.UUID, input service.AttemptInput) (*service.AttemptResult, error)
	ListForChildFn  func(ctx context.Context, parentID, childID uuid.UUID) ([]*domain.ActivityProgress, error)
}

func (m *MockProgressService) RecordAttempt(ctx context.Context, parentID, childID, activityID uuid.UUID, input service.AttemptInput) (*service.AttemptResult, error) {
	return m.RecordAttemptFn(ctx, parentID, childID, activityID, input)
}

func (m *MockProgressService) ListForChild(ctx context.Context, parentID, childID uuid.UUID) ([]*domain.ActivityProgress, error) {
	return m.ListForChildFn(ctx, parentID, childID)
}

// MockAchievementService implements service.AchievementService for handler tests.
type MockAchievementService struct {
	BuildSnapshotFn          func(ctx context.Context, childID uuid.UUID) (achievement.Snapshot, error)
	EvaluateForChildFn       func(ctx context.Context, parentID, childID uuid.UUID, snap achievement.Snapshot) ([]*service.AchievementView, error)
	ListForChildFn           func(ctx context.Context, parentID, childID uuid.UUID) ([]*service.AchievementView, error)
	AcknowledgeCelebrationFn func(ctx context.Context, parentID, childID, achievementID uuid.UUID) (*domain.ChildAchievement, error)
}

func (m *MockAchievementService) BuildSnapshot(ctx context.Context, childID uuid.UUID) (achievement.Snapshot, error) {
	if m.BuildSnapshotFn != nil {
		return m.BuildSnapshotFn(ctx, childID)
	}
	return achievement.Snapshot{}, nil
}

func (m *MockAchievementService) EvaluateForChild(ctx context.Context, parentID, childID uuid.UUID, snap achievement.Snapshot) ([]*service.AchievementView, error) {
	if m.EvaluateForChildFn != nil {
		return m.EvaluateForChildFn(ctx, parentID, childID, snap)
	}
	return nil, nil
}

func (m *MockAchievementService) ListForChild(ctx context.Context, parentID, childID uuid.UUID) ([]*service.AchievementView, error) {
	return m.ListForChildFn(ctx, parentID, childID)
}

func (m *MockAchievementService) AcknowledgeCelebration(ctx context.Context, parentID, childID, achievementID uuid.UUID) (*domain.ChildAchievement, error) {
	return m.AcknowledgeCelebrationFn(ctx, parentID, childID, achievementID)
}
