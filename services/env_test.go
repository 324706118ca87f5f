package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"movie-night-backend/logger"
	"movie-night-backend/models"
)

const (
	testDefaultPoolSeconds   = 3600
	testDefaultVotingSeconds = 1800
)

// testEnv wires all services over the in-memory fakes with a controllable
// clock.
type testEnv struct {
	groups      *fakeGroupRepo
	movies      *fakeMovieRepo
	users       *fakeUserRepo
	rankings    *fakeRankingRepo
	invitations *fakeInvitationRepo

	phaseService   *PhaseService
	poolService    *PoolService
	rankingService *RankingService
	groupService   *GroupService

	now time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		groups:      newFakeGroupRepo(),
		movies:      newFakeMovieRepo(),
		users:       newFakeUserRepo(),
		rankings:    newFakeRankingRepo(),
		invitations: newFakeInvitationRepo(),
		now:         time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC),
	}

	log := logger.NewNop()
	clock := func() time.Time { return env.now }

	env.phaseService = NewPhaseService(env.groups, log)
	env.phaseService.now = clock

	env.poolService = NewPoolService(env.phaseService, env.groups, env.movies, log)
	env.poolService.now = clock

	env.rankingService = NewRankingService(env.phaseService, env.groups, env.movies, env.users, env.rankings, log)
	env.rankingService.now = clock

	env.groupService = NewGroupService(env.groups, env.users, env.invitations, testDefaultPoolSeconds, testDefaultVotingSeconds, log)
	env.groupService.now = clock

	return env
}

func (env *testEnv) advanceClock(d time.Duration) {
	env.now = env.now.Add(d)
}

// newGroup stores a group with the given creator and members directly in
// the fake repository.
func (env *testEnv) newGroup(creatorID primitive.ObjectID, phase models.Phase, memberIDs ...primitive.ObjectID) *models.Group {
	members := append([]primitive.ObjectID{creatorID}, memberIDs...)
	group := &models.Group{
		Name:                       "movie night",
		CreatorID:                  creatorID,
		MemberIDs:                  members,
		Phase:                      phase,
		PoolPhaseDurationSeconds:   testDefaultPoolSeconds,
		VotingPhaseDurationSeconds: testDefaultVotingSeconds,
		Pool: models.CandidatePool{
			Movies:      []models.PoolEntry{},
			LastUpdated: env.now,
		},
		CreatedAt: env.now,
	}
	_ = env.groups.Create(context.Background(), group)
	return group
}

// addToPool puts a movie directly into the group's pool, bypassing the
// phase gate, for test setup.
func (env *testEnv) addToPool(groupID, movieID, userID primitive.ObjectID) {
	env.groups.mu.Lock()
	defer env.groups.mu.Unlock()
	group := env.groups.groups[groupID]
	group.Pool.Movies = append(group.Pool.Movies, models.PoolEntry{
		MovieID: movieID,
		AddedBy: userID,
		AddedAt: env.now,
	})
	group.Pool.LastUpdated = env.now
}
