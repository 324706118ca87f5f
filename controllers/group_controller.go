package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"movie-night-backend/models"
	"movie-night-backend/services"
)

type GroupController struct {
	groupService *services.GroupService
	phaseService *services.PhaseService
}

func NewGroupController(groupService *services.GroupService, phaseService *services.PhaseService) *GroupController {
	return &GroupController{
		groupService: groupService,
		phaseService: phaseService,
	}
}

func (c *GroupController) CreateGroup(ctx *gin.Context) {
	userID, ok := requestUserID(ctx)
	if !ok {
		return
	}

	var req models.CreateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}

	group, err := c.groupService.CreateGroup(ctx.Request.Context(), userID, req.Name)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, group)
}

func (c *GroupController) GetGroup(ctx *gin.Context) {
	userID, ok := requestUserID(ctx)
	if !ok {
		return
	}
	groupID, ok := pathObjectID(ctx, "groupId")
	if !ok {
		return
	}

	group, err := c.groupService.GetGroup(ctx.Request.Context(), groupID, userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, group)
}

func (c *GroupController) InviteUser(ctx *gin.Context) {
	userID, ok := requestUserID(ctx)
	if !ok {
		return
	}
	groupID, ok := pathObjectID(ctx, "groupId")
	if !ok {
		return
	}

	var req models.InviteUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}
	inviteeID, err := primitive.ObjectIDFromHex(req.InviteeID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid invitee_id"})
		return
	}

	invitation, err := c.groupService.InviteUser(ctx.Request.Context(), groupID, userID, inviteeID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, invitation)
}

func (c *GroupController) RespondToInvitation(ctx *gin.Context) {
	userID, ok := requestUserID(ctx)
	if !ok {
		return
	}
	invitationID, ok := pathObjectID(ctx, "invitationId")
	if !ok {
		return
	}

	var req models.RespondInvitationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}

	if err := c.groupService.RespondToInvitation(ctx.Request.Context(), invitationID, userID, *req.Accept); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "invitation updated"})
}

func (c *GroupController) ListInvitations(ctx *gin.Context) {
	userID, ok := requestUserID(ctx)
	if !ok {
		return
	}

	invitations, err := c.groupService.ListInvitations(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, invitations)
}

func (c *GroupController) LeaveGroup(ctx *gin.Context) {
	userID, ok := requestUserID(ctx)
	if !ok {
		return
	}
	groupID, ok := pathObjectID(ctx, "groupId")
	if !ok {
		return
	}

	if err := c.groupService.LeaveGroup(ctx.Request.Context(), groupID, userID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "left group"})
}

func (c *GroupController) AdvancePhase(ctx *gin.Context) {
	userID, ok := requestUserID(ctx)
	if !ok {
		return
	}
	groupID, ok := pathObjectID(ctx, "groupId")
	if !ok {
		return
	}

	group, err := c.phaseService.AdvancePhase(ctx.Request.Context(), groupID, userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, group)
}

func (c *GroupController) UpdateTimers(ctx *gin.Context) {
	userID, ok := requestUserID(ctx)
	if !ok {
		return
	}
	groupID, ok := pathObjectID(ctx, "groupId")
	if !ok {
		return
	}

	var req models.UpdateTimersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}
	if req.PoolPhaseDurationSeconds == nil && req.VotingPhaseDurationSeconds == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "at least one duration is required"})
		return
	}

	reqCtx := ctx.Request.Context()
	if req.PoolPhaseDurationSeconds != nil {
		if err := c.phaseService.SetPoolPhaseDuration(reqCtx, groupID, userID, *req.PoolPhaseDurationSeconds); err != nil {
			respondError(ctx, err)
			return
		}
	}
	if req.VotingPhaseDurationSeconds != nil {
		if err := c.phaseService.SetVotingPhaseDuration(reqCtx, groupID, userID, *req.VotingPhaseDurationSeconds); err != nil {
			respondError(ctx, err)
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "timers updated"})
}

func (c *GroupController) GetRemainingTime(ctx *gin.Context) {
	groupID, ok := pathObjectID(ctx, "groupId")
	if !ok {
		return
	}

	timer, err := c.phaseService.RemainingTime(ctx.Request.Context(), groupID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, timer)
}
