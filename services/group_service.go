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

// GroupService is the membership directory: group creation, invitations
// and member resolution. The phase machine and ranking engine consume it
// read-only through the group document.
type GroupService struct {
	groups      data_access.GroupRepository
	users       data_access.UserRepository
	invitations data_access.InvitationRepository
	log         *logger.Logger
	now         func() time.Time

	defaultPoolSeconds   int64
	defaultVotingSeconds int64
}

func NewGroupService(
	groups data_access.GroupRepository,
	users data_access.UserRepository,
	invitations data_access.InvitationRepository,
	defaultPoolSeconds, defaultVotingSeconds int64,
	log *logger.Logger,
) *GroupService {
	return &GroupService{
		groups:               groups,
		users:                users,
		invitations:          invitations,
		log:                  log.With("service", "group"),
		now:                  time.Now,
		defaultPoolSeconds:   defaultPoolSeconds,
		defaultVotingSeconds: defaultVotingSeconds,
	}
}

// CreateGroup starts a new group in the POOL phase with an empty pool. The
// creator is always a member.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID primitive.ObjectID, name string) (*models.Group, error) {
	creator, err := s.users.FindByID(ctx, creatorID)
	if err != nil {
		return nil, apperrors.NewInternal("user.load_failed", "failed to resolve user", err)
	}
	if creator == nil {
		return nil, apperrors.NewNotFound("user.not_found", "user %s does not exist", creatorID.Hex())
	}

	now := s.now()
	group := &models.Group{
		Name:                       name,
		CreatorID:                  creatorID,
		MemberIDs:                  []primitive.ObjectID{creatorID},
		Phase:                      models.PhasePool,
		PoolPhaseDurationSeconds:   s.defaultPoolSeconds,
		VotingPhaseDurationSeconds: s.defaultVotingSeconds,
		Pool: models.CandidatePool{
			Movies:      []models.PoolEntry{},
			LastUpdated: now,
		},
		CreatedAt: now,
	}

	if err := s.groups.Create(ctx, group); err != nil {
		return nil, apperrors.NewInternal("group.create_failed", "failed to create group", err)
	}

	s.log.Info("group created", "group_id", group.ID.Hex(), "creator_id", creatorID.Hex())
	return group, nil
}

// GetGroup returns the group to one of its members.
func (s *GroupService) GetGroup(ctx context.Context, groupID, requesterID primitive.ObjectID) (*models.Group, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(requesterID) {
		return nil, apperrors.NewForbidden("group.not_member", "user %s is not a member of this group", requesterID.Hex())
	}
	return group, nil
}

// InviteUser creates a pending invitation. Any member may invite; inviting
// a current member or re-inviting someone with a pending invitation is a
// conflict.
func (s *GroupService) InviteUser(ctx context.Context, groupID, inviterID, inviteeID primitive.ObjectID) (*models.GroupInvitation, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(inviterID) {
		return nil, apperrors.NewForbidden("group.not_member", "user %s is not a member of this group", inviterID.Hex())
	}

	invitee, err := s.users.FindByID(ctx, inviteeID)
	if err != nil {
		return nil, apperrors.NewInternal("user.load_failed", "failed to resolve user", err)
	}
	if invitee == nil {
		return nil, apperrors.NewNotFound("user.not_found", "user %s does not exist", inviteeID.Hex())
	}

	if group.IsMember(inviteeID) {
		return nil, apperrors.NewConflict("invitation.already_member", "user %s is already a member of this group", inviteeID.Hex())
	}
	pending, err := s.invitations.HasPending(ctx, groupID, inviteeID)
	if err != nil {
		return nil, apperrors.NewInternal("invitation.load_failed", "failed to check invitations", err)
	}
	if pending {
		return nil, apperrors.NewConflict("invitation.already_invited", "user %s already has a pending invitation to this group", inviteeID.Hex())
	}

	invitation := &models.GroupInvitation{
		GroupID:   groupID,
		InviterID: inviterID,
		InviteeID: inviteeID,
		Status:    models.InvitationPending,
		CreatedAt: s.now(),
	}
	if err := s.invitations.Create(ctx, invitation); err != nil {
		return nil, apperrors.NewInternal("invitation.create_failed", "failed to create invitation", err)
	}

	s.log.Info("invitation created", "group_id", groupID.Hex(), "invitee_id", inviteeID.Hex())
	return invitation, nil
}

// RespondToInvitation accepts or rejects a pending invitation. Only the
// invitee may respond, and only once.
func (s *GroupService) RespondToInvitation(ctx context.Context, invitationID, userID primitive.ObjectID, accept bool) error {
	invitation, err := s.invitations.FindByID(ctx, invitationID)
	if err != nil {
		return apperrors.NewInternal("invitation.load_failed", "failed to load invitation", err)
	}
	if invitation == nil {
		return apperrors.NewNotFound("invitation.not_found", "invitation %s does not exist", invitationID.Hex())
	}
	if invitation.InviteeID != userID {
		return apperrors.NewForbidden("invitation.not_invitee", "only the invited user may respond to this invitation")
	}
	if invitation.Status != models.InvitationPending {
		return apperrors.NewConflict("invitation.already_responded", "invitation %s has already been responded to", invitationID.Hex())
	}

	status := models.InvitationRejected
	if accept {
		status = models.InvitationAccepted
	}
	responded, err := s.invitations.MarkResponded(ctx, invitationID, status, s.now())
	if err != nil {
		return apperrors.NewInternal("invitation.update_failed", "failed to update invitation", err)
	}
	if !responded {
		return apperrors.NewConflict("invitation.already_responded", "invitation %s has already been responded to", invitationID.Hex())
	}

	if accept {
		if err := s.groups.AddMember(ctx, invitation.GroupID, userID); err != nil {
			return apperrors.NewInternal("group.add_member_failed", "failed to add member to group", err)
		}
	}

	s.log.Info("invitation responded", "invitation_id", invitationID.Hex(), "accepted", accept)
	return nil
}

// ListInvitations returns the caller's pending invitations.
func (s *GroupService) ListInvitations(ctx context.Context, userID primitive.ObjectID) ([]models.GroupInvitation, error) {
	invitations, err := s.invitations.FindPendingByInvitee(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternal("invitation.load_failed", "failed to load invitations", err)
	}
	if invitations == nil {
		invitations = []models.GroupInvitation{}
	}
	return invitations, nil
}

// LeaveGroup removes the caller from the member set. The creator cannot
// leave; pool contributions of a leaving member stay in the pool.
func (s *GroupService) LeaveGroup(ctx context.Context, groupID, userID primitive.ObjectID) error {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.IsMember(userID) {
		return apperrors.NewForbidden("group.not_member", "user %s is not a member of this group", userID.Hex())
	}
	if group.CreatorID == userID {
		return apperrors.NewConflict("group.creator_cannot_leave", "the group creator cannot leave the group")
	}

	if err := s.groups.RemoveMember(ctx, groupID, userID); err != nil {
		return apperrors.NewInternal("group.remove_member_failed", "failed to remove member from group", err)
	}

	s.log.Info("member left group", "group_id", groupID.Hex(), "user_id", userID.Hex())
	return nil
}

func (s *GroupService) loadGroup(ctx context.Context, groupID primitive.ObjectID) (*models.Group, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewInternal("group.load_failed", "failed to load group", err)
	}
	if group == nil {
		return nil, apperrors.NewNotFound("group.not_found", "group %s does not exist", groupID.Hex())
	}
	return group, nil
}
