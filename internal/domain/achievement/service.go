package achievement

import (
	"errors"
	"time"

	"github.com/cvelasquez/eduplay-api/internal/domain"
)

// Common errors
var (
	ErrNilDefinition = errors.New("achievement definition cannot be nil")
	ErrNilState      = errors.New("child achievement state cannot be nil")

	// ErrAlreadyEarned is returned by EarnAchievement when a non-repeatable
	// achievement has already been earned. UpdateProgress swallows it; only
	// direct earn calls see it.
	ErrAlreadyEarned = errors.New("achievement already earned")
)

// Service defines the achievement engine: criteria evaluation over
// caller-supplied snapshots, the progress update protocol, earning,
// visibility, and the celebration handshake. All operations take an explicit
// clock value and return new state instances rather than mutating their
// input.
type Service interface {
	// EvaluateCriteria checks the definition's criteria payload against the
	// snapshot. A malformed payload evaluates to "not satisfied" with zero
	// progress; it never returns an error, so a content-authoring mistake
	// cannot block a learning flow.
	EvaluateCriteria(def *domain.Achievement, snap Snapshot) Evaluation

	// UpdateProgress runs the progress update protocol: store the new
	// numbers, derive the percentage (a zero target yields zero), refresh
	// the in-progress flag, latch the started timestamp on first nonzero
	// progress, and earn the achievement when the percentage reaches 100.
	// Repeated calls at the boundary earn at most once unless the
	// definition is repeatable.
	UpdateProgress(
		def *domain.Achievement,
		state *domain.ChildAchievement,
		current, target int,
		now time.Time,
	) (*domain.ChildAchievement, error)

	// ApplySnapshot evaluates the definition against the snapshot and folds
	// the result through UpdateProgress.
	ApplySnapshot(
		def *domain.Achievement,
		state *domain.ChildAchievement,
		snap Snapshot,
		now time.Time,
	) (*domain.ChildAchievement, error)

	// EarnAchievement marks the achievement earned with the given bonus
	// multiplier and context, resets the celebration flag, and recomputes
	// the points award from base points, bonus, and rarity. Returns
	// ErrAlreadyEarned for an already-earned, non-repeatable definition.
	EarnAchievement(
		def *domain.Achievement,
		state *domain.ChildAchievement,
		bonusMultiplier float64,
		context string,
		now time.Time,
	) (*domain.ChildAchievement, error)

	// IsVisibleToChild reports whether the achievement may be surfaced to
	// the child: earned, or not hidden, or hidden with progress past the
	// reveal threshold. Crown-only achievements are never surfaced to
	// children whose advanced flag is false.
	IsVisibleToChild(
		def *domain.Achievement,
		state *domain.ChildAchievement,
		childIsAdvanced bool,
	) bool

	// ShouldShowCelebration reports whether an earn celebration is pending:
	// earned and not yet acknowledged.
	ShouldShowCelebration(state *domain.ChildAchievement) bool

	// MarkCelebrationShown acknowledges the pending celebration. It is the
	// only way to clear it; the presentation collaborator calls it exactly
	// once per earn event.
	MarkCelebrationShown(
		state *domain.ChildAchievement,
		now time.Time,
	) (*domain.ChildAchievement, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new achievement service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new achievement service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// EvaluateCriteria implements Service.EvaluateCriteria.
func (s *defaultService) EvaluateCriteria(def *domain.Achievement, snap Snapshot) Evaluation {
	if def == nil {
		return Evaluation{}
	}

	criteria, err := ParseCriteria(def.Type, def.Criteria)
	if err != nil {
		// Authoring errors degrade to "not satisfied".
		return Evaluation{}
	}

	return evaluate(criteria, snap)
}

// UpdateProgress implements Service.UpdateProgress.
func (s *defaultService) UpdateProgress(
	def *domain.Achievement,
	state *domain.ChildAchievement,
	current, target int,
	now time.Time,
) (*domain.ChildAchievement, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}
	if state == nil {
		return nil, ErrNilState
	}

	next := applyProgress(state, current, target, now)

	if next.ProgressPercent >= 100 && (!next.IsEarned || def.IsRepeatable) {
		earned, err := s.EarnAchievement(def, next, next.BonusMultiplier, "", now)
		if err != nil {
			return nil, err
		}
		next = earned
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}

	return next, nil
}

// ApplySnapshot implements Service.ApplySnapshot.
func (s *defaultService) ApplySnapshot(
	def *domain.Achievement,
	state *domain.ChildAchievement,
	snap Snapshot,
	now time.Time,
) (*domain.ChildAchievement, error) {
	eval := s.EvaluateCriteria(def, snap)
	return s.UpdateProgress(def, state, eval.Current, eval.Target, now)
}

// EarnAchievement implements Service.EarnAchievement.
func (s *defaultService) EarnAchievement(
	def *domain.Achievement,
	state *domain.ChildAchievement,
	bonusMultiplier float64,
	context string,
	now time.Time,
) (*domain.ChildAchievement, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}
	if state == nil {
		return nil, ErrNilState
	}

	if state.IsEarned && !def.IsRepeatable {
		return nil, ErrAlreadyEarned
	}

	if bonusMultiplier <= 0 {
		bonusMultiplier = 1.0
	}

	next := applyEarn(state, def, bonusMultiplier, context, now, s.params)

	if err := next.Validate(); err != nil {
		return nil, err
	}

	return next, nil
}

// IsVisibleToChild implements Service.IsVisibleToChild.
func (s *defaultService) IsVisibleToChild(
	def *domain.Achievement,
	state *domain.ChildAchievement,
	childIsAdvanced bool,
) bool {
	if def == nil {
		return false
	}

	if def.IsCrownOnly && !childIsAdvanced {
		return false
	}

	if state != nil && state.IsEarned {
		return true
	}

	if !def.IsHidden {
		return true
	}

	return state != nil && state.ProgressPercent >= s.params.HiddenRevealPercent
}

// ShouldShowCelebration implements Service.ShouldShowCelebration.
func (s *defaultService) ShouldShowCelebration(state *domain.ChildAchievement) bool {
	return state != nil && state.IsEarned && !state.CelebrationShown
}

// MarkCelebrationShown implements Service.MarkCelebrationShown.
func (s *defaultService) MarkCelebrationShown(
	state *domain.ChildAchievement,
	now time.Time,
) (*domain.ChildAchievement, error) {
	if state == nil {
		return nil, ErrNilState
	}

	next := cloneState(state)
	next.CelebrationShown = true
	next.NeedsSync = true
	next.Touch(now)

	return next, nil
}
