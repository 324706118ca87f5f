package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"movie-night-backend/apperrors"
	"movie-night-backend/data_access"
	"movie-night-backend/logger"
	"movie-night-backend/models"
)

// PhaseService owns the group phase state machine. Every pool and ranking
// mutation goes through its phase gate before touching state.
type PhaseService struct {
	groups data_access.GroupRepository
	log    *logger.Logger
	now    func() time.Time
}

func NewPhaseService(groups data_access.GroupRepository, log *logger.Logger) *PhaseService {
	return &PhaseService{
		groups: groups,
		log:    log.With("service", "phase"),
		now:    time.Now,
	}
}

// AdvancePhase moves the group to the next phase. Only the creator may
// advance, and RESULTS is terminal.
func (s *PhaseService) AdvancePhase(ctx context.Context, groupID, requesterID primitive.ObjectID) (*models.Group, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if group.CreatorID != requesterID {
		return nil, apperrors.NewForbidden("phase.not_creator", "only the group creator may advance the phase")
	}

	next, ok := group.Phase.Next()
	if !ok {
		return nil, apperrors.NewConflict("phase.terminal", "group is already in the %s phase, which has no further transition", group.Phase)
	}

	startedAt := s.now()
	advanced, err := s.groups.AdvancePhase(ctx, groupID, group.Phase, next, startedAt)
	if err != nil {
		return nil, apperrors.NewInternal("phase.advance_failed", "failed to advance phase", err)
	}
	if !advanced {
		// Lost a race against another advance on the same group.
		return nil, apperrors.NewConflict("phase.stale", "group is no longer in the %s phase", group.Phase)
	}

	s.log.Info("phase advanced", "group_id", groupID.Hex(), "from", group.Phase, "to", next)

	group.Phase = next
	group.PhaseStartTime = &startedAt
	return group, nil
}

// SetPoolPhaseDuration configures the POOL phase timer. Creator-only; any
// positive number of seconds is accepted.
func (s *PhaseService) SetPoolPhaseDuration(ctx context.Context, groupID, requesterID primitive.ObjectID, seconds int64) error {
	return s.setDuration(ctx, groupID, requesterID, &seconds, nil)
}

// SetVotingPhaseDuration configures the VOTING phase timer.
func (s *PhaseService) SetVotingPhaseDuration(ctx context.Context, groupID, requesterID primitive.ObjectID, seconds int64) error {
	return s.setDuration(ctx, groupID, requesterID, nil, &seconds)
}

func (s *PhaseService) setDuration(ctx context.Context, groupID, requesterID primitive.ObjectID, poolSeconds, votingSeconds *int64) error {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}

	if group.CreatorID != requesterID {
		return apperrors.NewForbidden("phase.not_creator", "only the group creator may change phase timers")
	}
	if (poolSeconds != nil && *poolSeconds <= 0) || (votingSeconds != nil && *votingSeconds <= 0) {
		return apperrors.NewConflict("phase.bad_duration", "phase duration must be a positive number of seconds")
	}

	if err := s.groups.UpdatePhaseDurations(ctx, groupID, poolSeconds, votingSeconds); err != nil {
		return apperrors.NewInternal("phase.update_durations_failed", "failed to update phase durations", err)
	}
	return nil
}

// RemainingTime returns the advisory number of seconds left in the current
// phase: max(0, duration - elapsed). It returns 0 when the phase has never
// been started or has no configured duration. It never forces a
// transition; phase changes stay explicit creator actions.
func (s *PhaseService) RemainingTime(ctx context.Context, groupID primitive.ObjectID) (*models.TimerResponse, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	response := &models.TimerResponse{Phase: group.Phase}

	var duration int64
	switch group.Phase {
	case models.PhasePool:
		duration = group.PoolPhaseDurationSeconds
	case models.PhaseVoting:
		duration = group.VotingPhaseDurationSeconds
	default:
		return response, nil
	}

	if group.PhaseStartTime == nil || duration <= 0 {
		return response, nil
	}

	elapsed := int64(s.now().Sub(*group.PhaseStartTime).Seconds())
	remaining := duration - elapsed
	if remaining < 0 {
		remaining = 0
	}
	response.SecondsRemaining = remaining
	return response, nil
}

// RequirePhase loads the group and verifies it is in the wanted phase,
// returning a phase-specific Conflict otherwise. Pool and ranking
// mutations call this before writing anything.
func (s *PhaseService) RequirePhase(ctx context.Context, groupID primitive.ObjectID, phase models.Phase) (*models.Group, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Phase != phase {
		return nil, apperrors.NewConflict("phase.wrong_phase", "action requires the %s phase, but the group is in the %s phase", phase, group.Phase)
	}
	return group, nil
}

func (s *PhaseService) loadGroup(ctx context.Context, groupID primitive.ObjectID) (*models.Group, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewInternal("group.load_failed", "failed to load group", err)
	}
	if group == nil {
		return nil, apperrors.NewNotFound("group.not_found", "group %s does not exist", groupID.Hex())
	}
	return group, nil
}
