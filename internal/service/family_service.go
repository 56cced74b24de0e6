package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cvelasquez/eduplay-api/internal/domain"
	"github.com/cvelasquez/eduplay-api/internal/store"
	"github.com/google/uuid"
)

// FamilyService manages child profiles under a parent account and enforces
// that callers only ever touch their own children.
type FamilyService interface {
	// CreateChild adds a child profile under the parent's account.
	CreateChild(ctx context.Context, parentID uuid.UUID, name string, ageYears int) (*domain.Child, error)

	// GetChild retrieves one of the caller's child profiles.
	// Returns ErrNotOwned when the profile belongs to another account.
	GetChild(ctx context.Context, parentID, childID uuid.UUID) (*domain.Child, error)

	// ListChildren retrieves all child profiles under the parent's account.
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.Child, error)
}

// familyServiceImpl implements the FamilyService interface
type familyServiceImpl struct {
	childStore store.ChildStore
	logger     *slog.Logger
	timeFn     func() time.Time
}

// NewFamilyService creates a new FamilyService.
// It returns an error if any of the required dependencies are nil.
func NewFamilyService(childStore store.ChildStore, logger *slog.Logger) (FamilyService, error) {
	if childStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "childStore cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &familyServiceImpl{
		childStore: childStore,
		logger:     logger.With("component", "family_service"),
		timeFn:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// CreateChild implements FamilyService.CreateChild.
func (s *familyServiceImpl) CreateChild(
	ctx context.Context,
	parentID uuid.UUID,
	name string,
	ageYears int,
) (*domain.Child, error) {
	child, err := domain.NewChild(parentID, name, ageYears, s.timeFn())
	if err != nil {
		s.logger.Warn("invalid child profile",
			"error", err,
			"parent_id", parentID)
		return nil, err
	}

	if err := s.childStore.Create(ctx, child); err != nil {
		s.logger.Error("failed to save child profile",
			"error", err,
			"parent_id", parentID)
		return nil, err
	}

	s.logger.Info("child profile created",
		"child_id", child.ID,
		"parent_id", parentID)
	return child, nil
}

// GetChild implements FamilyService.GetChild.
func (s *familyServiceImpl) GetChild(ctx context.Context, parentID, childID uuid.UUID) (*domain.Child, error) {
	child, err := s.childStore.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}

	if child.ParentID != parentID {
		s.logger.Warn("child profile access denied",
			"child_id", childID,
			"parent_id", parentID)
		return nil, ErrNotOwned
	}

	return child, nil
}

// ListChildren implements FamilyService.ListChildren.
func (s *familyServiceImpl) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.Child, error) {
	children, err := s.childStore.ListByParent(ctx, parentID)
	if err != nil {
		s.logger.Error("failed to list child profiles",
			"error", err,
			"parent_id", parentID)
		return nil, err
	}

	return children, nil
}
