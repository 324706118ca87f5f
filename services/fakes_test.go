package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"movie-night-backend/data_access"
	"movie-night-backend/models"
)

// In-memory repository fakes implementing the same conditional-update
// contracts as the mongo implementations.

type fakeGroupRepo struct {
	mu     sync.Mutex
	groups map[primitive.ObjectID]*models.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[primitive.ObjectID]*models.Group)}
}

func cloneGroup(group *models.Group) *models.Group {
	clone := *group
	clone.MemberIDs = append([]primitive.ObjectID(nil), group.MemberIDs...)
	clone.Pool.Movies = append([]models.PoolEntry(nil), group.Pool.Movies...)
	return &clone
}

func (r *fakeGroupRepo) Create(ctx context.Context, group *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	r.groups[group.ID] = cloneGroup(group)
	return nil
}

func (r *fakeGroupRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[id]
	if !ok {
		return nil, nil
	}
	return cloneGroup(group), nil
}

func (r *fakeGroupRepo) FindIDsByPhase(ctx context.Context, phase models.Phase) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []primitive.ObjectID
	for id, group := range r.groups {
		if group.Phase == phase {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeGroupRepo) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[groupID]
	if !ok {
		return nil
	}
	if !group.IsMember(userID) {
		group.MemberIDs = append(group.MemberIDs, userID)
	}
	return nil
}

func (r *fakeGroupRepo) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[groupID]
	if !ok {
		return nil
	}
	members := group.MemberIDs[:0]
	for _, id := range group.MemberIDs {
		if id != userID {
			members = append(members, id)
		}
	}
	group.MemberIDs = members
	return nil
}

func (r *fakeGroupRepo) AdvancePhase(ctx context.Context, groupID primitive.ObjectID, from, to models.Phase, startedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[groupID]
	if !ok || group.Phase != from {
		return false, nil
	}
	group.Phase = to
	start := startedAt
	group.PhaseStartTime = &start
	return true, nil
}

func (r *fakeGroupRepo) UpdatePhaseDurations(ctx context.Context, groupID primitive.ObjectID, poolSeconds, votingSeconds *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[groupID]
	if !ok {
		return nil
	}
	if poolSeconds != nil {
		group.PoolPhaseDurationSeconds = *poolSeconds
	}
	if votingSeconds != nil {
		group.VotingPhaseDurationSeconds = *votingSeconds
	}
	return nil
}

func (r *fakeGroupRepo) AddPoolMovie(ctx context.Context, groupID primitive.ObjectID, entry models.PoolEntry, maxPerUser int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[groupID]
	if !ok || group.Phase != models.PhasePool {
		return false, nil
	}
	if group.Pool.Entry(entry.MovieID) != nil {
		return false, nil
	}
	if group.Pool.ContributionCount(entry.AddedBy) >= maxPerUser {
		return false, nil
	}
	group.Pool.Movies = append(group.Pool.Movies, entry)
	group.Pool.LastUpdated = entry.AddedAt
	return true, nil
}

func (r *fakeGroupRepo) RemovePoolMovie(ctx context.Context, groupID, movieID, contributorID primitive.ObjectID, removedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[groupID]
	if !ok || group.Phase != models.PhasePool {
		return false, nil
	}
	entry := group.Pool.Entry(movieID)
	if entry == nil || entry.AddedBy != contributorID {
		return false, nil
	}
	movies := group.Pool.Movies[:0]
	for _, m := range group.Pool.Movies {
		if m.MovieID != movieID {
			movies = append(movies, m)
		}
	}
	group.Pool.Movies = movies
	group.Pool.LastUpdated = removedAt
	return true, nil
}

// contendedGroupRepo slips a competing mutation in between a service's
// precondition reads and its conditional update. Each hook fires once.
type contendedGroupRepo struct {
	data_access.GroupRepository
	beforeAddPoolMovie func()
	beforeAdvancePhase func()
}

func (r *contendedGroupRepo) AddPoolMovie(ctx context.Context, groupID primitive.ObjectID, entry models.PoolEntry, maxPerUser int) (bool, error) {
	if hook := r.beforeAddPoolMovie; hook != nil {
		r.beforeAddPoolMovie = nil
		hook()
	}
	return r.GroupRepository.AddPoolMovie(ctx, groupID, entry, maxPerUser)
}

func (r *contendedGroupRepo) AdvancePhase(ctx context.Context, groupID primitive.ObjectID, from, to models.Phase, startedAt time.Time) (bool, error) {
	if hook := r.beforeAdvancePhase; hook != nil {
		r.beforeAdvancePhase = nil
		hook()
	}
	return r.GroupRepository.AdvancePhase(ctx, groupID, from, to, startedAt)
}

type fakeMovieRepo struct {
	mu     sync.Mutex
	movies map[primitive.ObjectID]models.Movie
}

func newFakeMovieRepo() *fakeMovieRepo {
	return &fakeMovieRepo{movies: make(map[primitive.ObjectID]models.Movie)}
}

func (r *fakeMovieRepo) add(title string, rating *float64) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	r.movies[id] = models.Movie{ID: id, Title: title, Rating: rating}
	return id
}

func (r *fakeMovieRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	movie, ok := r.movies[id]
	if !ok {
		return nil, nil
	}
	return &movie, nil
}

func (r *fakeMovieRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ordered := make([]models.Movie, 0, len(ids))
	for _, id := range ids {
		if movie, ok := r.movies[id]; ok {
			ordered = append(ordered, movie)
		}
	}
	return ordered, nil
}

func (r *fakeMovieRepo) InsertMany(ctx context.Context, movies []models.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, movie := range movies {
		if movie.ID.IsZero() {
			movie.ID = primitive.NewObjectID()
		}
		r.movies[movie.ID] = movie
	}
	return nil
}

func (r *fakeMovieRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.movies)), nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]models.User)}
}

func (r *fakeUserRepo) add(username string) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	r.users[id] = models.User{ID: id, Username: username}
	return id
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

type fakeRankingRepo struct {
	mu          sync.Mutex
	submissions []models.RankingSubmission
	logs        []models.SubmissionLog
	results     []models.RankingResult
}

func newFakeRankingRepo() *fakeRankingRepo {
	return &fakeRankingRepo{}
}

func (r *fakeRankingRepo) ReplaceSubmissions(ctx context.Context, groupID, userID primitive.ObjectID, rows []models.RankingSubmission, logEntry models.SubmissionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.submissions[:0]
	for _, row := range r.submissions {
		if row.GroupID != groupID || row.UserID != userID {
			kept = append(kept, row)
		}
	}
	r.submissions = append(kept, rows...)
	r.logs = append(r.logs, logEntry)
	return nil
}

func (r *fakeRankingRepo) FindByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.RankingSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []models.RankingSubmission
	for _, row := range r.submissions {
		if row.GroupID == groupID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *fakeRankingRepo) FindByUserAndGroup(ctx context.Context, groupID, userID primitive.ObjectID) ([]models.RankingSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []models.RankingSubmission
	for _, row := range r.submissions {
		if row.GroupID == groupID && row.UserID == userID {
			rows = append(rows, row)
		}
	}
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j-1].Rank > rows[j].Rank; j-- {
			rows[j-1], rows[j] = rows[j], rows[j-1]
		}
	}
	return rows, nil
}

func (r *fakeRankingRepo) CountDistinctSubmitters(ctx context.Context, groupID primitive.ObjectID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[primitive.ObjectID]bool)
	for _, row := range r.submissions {
		if row.GroupID == groupID {
			seen[row.UserID] = true
		}
	}
	return len(seen), nil
}

func (r *fakeRankingRepo) InsertResult(ctx context.Context, result *models.RankingResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result.ID.IsZero() {
		result.ID = primitive.NewObjectID()
	}
	r.results = append(r.results, *result)
	return nil
}

func (r *fakeRankingRepo) LatestResult(ctx context.Context, groupID primitive.ObjectID) (*models.RankingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.RankingResult
	for i := range r.results {
		result := r.results[i]
		if result.GroupID != groupID {
			continue
		}
		if latest == nil || result.ComputedAt.After(latest.ComputedAt) {
			latest = &result
		}
	}
	if latest == nil {
		return nil, nil
	}
	clone := *latest
	return &clone, nil
}

type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations map[primitive.ObjectID]models.GroupInvitation
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: make(map[primitive.ObjectID]models.GroupInvitation)}
}

func (r *fakeInvitationRepo) Create(ctx context.Context, invitation *models.GroupInvitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if invitation.ID.IsZero() {
		invitation.ID = primitive.NewObjectID()
	}
	r.invitations[invitation.ID] = *invitation
	return nil
}

func (r *fakeInvitationRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.GroupInvitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invitation, ok := r.invitations[id]
	if !ok {
		return nil, nil
	}
	return &invitation, nil
}

func (r *fakeInvitationRepo) HasPending(ctx context.Context, groupID, inviteeID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, invitation := range r.invitations {
		if invitation.GroupID == groupID && invitation.InviteeID == inviteeID && invitation.Status == models.InvitationPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInvitationRepo) MarkResponded(ctx context.Context, id primitive.ObjectID, status models.InvitationStatus, respondedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invitation, ok := r.invitations[id]
	if !ok || invitation.Status != models.InvitationPending {
		return false, nil
	}
	invitation.Status = status
	invitation.RespondedAt = &respondedAt
	r.invitations[id] = invitation
	return true, nil
}

func (r *fakeInvitationRepo) FindPendingByInvitee(ctx context.Context, inviteeID primitive.ObjectID) ([]models.GroupInvitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []models.GroupInvitation
	for _, invitation := range r.invitations {
		if invitation.InviteeID == inviteeID && invitation.Status == models.InvitationPending {
			pending = append(pending, invitation)
		}
	}
	return pending, nil
}
