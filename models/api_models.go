package models

type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type InviteUserRequest struct {
	InviteeID string `json:"invitee_id" binding:"required"`
}

type RespondInvitationRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

type UpdateTimersRequest struct {
	PoolPhaseDurationSeconds   *int64 `json:"pool_phase_duration_seconds" binding:"omitempty,gt=0"`
	VotingPhaseDurationSeconds *int64 `json:"voting_phase_duration_seconds" binding:"omitempty,gt=0"`
}

type TimerResponse struct {
	Phase            Phase `json:"phase"`
	SecondsRemaining int64 `json:"seconds_remaining"`
}

type AddPoolMovieRequest struct {
	MovieID string `json:"movie_id" binding:"required"`
}

type RankingEntryRequest struct {
	MovieID string `json:"movie_id" binding:"required"`
	Rank    int    `json:"rank" binding:"required"`
}

type SubmitRankingsRequest struct {
	Rankings []RankingEntryRequest `json:"rankings" binding:"required,dive"`
}
