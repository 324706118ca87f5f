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

// PoolService maintains the group's candidate pool under the POOL-phase
// gate, the per-user contribution cap and the contributor-only removal
// rule.
type PoolService struct {
	phases *PhaseService
	groups data_access.GroupRepository
	movies data_access.MovieRepository
	log    *logger.Logger
	now    func() time.Time
}

func NewPoolService(phases *PhaseService, groups data_access.GroupRepository, movies data_access.MovieRepository, log *logger.Logger) *PoolService {
	return &PoolService{
		phases: phases,
		groups: groups,
		movies: movies,
		log:    log.With("service", "pool"),
		now:    time.Now,
	}
}

// AddMovie nominates a movie into the group's pool. All preconditions are
// checked before any write; the conditional update re-checks the duplicate
// and cap invariants so concurrent adds cannot slip past them.
func (s *PoolService) AddMovie(ctx context.Context, groupID, movieID, userID primitive.ObjectID) (*models.Movie, error) {
	group, err := s.phases.RequirePhase(ctx, groupID, models.PhasePool)
	if err != nil {
		return nil, err
	}

	if !group.IsMember(userID) {
		return nil, apperrors.NewForbidden("pool.not_member", "user %s is not a member of this group", userID.Hex())
	}

	movie, err := s.movies.FindByID(ctx, movieID)
	if err != nil {
		return nil, apperrors.NewInternal("movie.load_failed", "failed to resolve movie", err)
	}
	if movie == nil {
		return nil, apperrors.NewNotFound("movie.not_found", "movie %s does not exist", movieID.Hex())
	}

	if group.Pool.Entry(movieID) != nil {
		return nil, apperrors.NewConflict("pool.duplicate_movie", "movie %q is already in the pool", movie.Title)
	}
	if group.Pool.ContributionCount(userID) >= models.MaxMoviesPerUser {
		return nil, apperrors.NewForbidden("pool.cap_exceeded", "user %s has already added %d movies to this pool", userID.Hex(), models.MaxMoviesPerUser)
	}

	entry := models.PoolEntry{
		MovieID: movieID,
		AddedBy: userID,
		AddedAt: s.now(),
	}
	added, err := s.groups.AddPoolMovie(ctx, groupID, entry, models.MaxMoviesPerUser)
	if err != nil {
		return nil, apperrors.NewInternal("pool.add_failed", "failed to add movie to pool", err)
	}
	if !added {
		// A concurrent mutation invalidated a precondition. Re-read to
		// report the right failure.
		return nil, s.classifyFailedAdd(ctx, groupID, movieID, userID, movie.Title)
	}

	s.log.Info("movie added to pool", "group_id", groupID.Hex(), "movie_id", movieID.Hex(), "user_id", userID.Hex())
	return movie, nil
}

func (s *PoolService) classifyFailedAdd(ctx context.Context, groupID, movieID, userID primitive.ObjectID, title string) error {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil || group == nil {
		return apperrors.NewConflict("pool.stale", "pool changed while adding movie %q", title)
	}
	if group.Phase != models.PhasePool {
		return apperrors.NewConflict("phase.wrong_phase", "action requires the %s phase, but the group is in the %s phase", models.PhasePool, group.Phase)
	}
	if group.Pool.Entry(movieID) != nil {
		return apperrors.NewConflict("pool.duplicate_movie", "movie %q is already in the pool", title)
	}
	if group.Pool.ContributionCount(userID) >= models.MaxMoviesPerUser {
		return apperrors.NewForbidden("pool.cap_exceeded", "user %s has already added %d movies to this pool", userID.Hex(), models.MaxMoviesPerUser)
	}
	return apperrors.NewConflict("pool.stale", "pool changed while adding movie %q", title)
}

// RemoveMovie takes a movie out of the pool. Only the member who added a
// movie may remove it, the group creator included.
func (s *PoolService) RemoveMovie(ctx context.Context, groupID, movieID, userID primitive.ObjectID) error {
	group, err := s.phases.RequirePhase(ctx, groupID, models.PhasePool)
	if err != nil {
		return err
	}

	entry := group.Pool.Entry(movieID)
	if entry == nil {
		return apperrors.NewNotFound("pool.movie_not_found", "movie %s is not in the pool", movieID.Hex())
	}
	if entry.AddedBy != userID {
		return apperrors.NewForbidden("pool.not_contributor", "only the member who added a movie may remove it")
	}

	removed, err := s.groups.RemovePoolMovie(ctx, groupID, movieID, userID, s.now())
	if err != nil {
		return apperrors.NewInternal("pool.remove_failed", "failed to remove movie from pool", err)
	}
	if !removed {
		return apperrors.NewNotFound("pool.movie_not_found", "movie %s is not in the pool", movieID.Hex())
	}

	s.log.Info("movie removed from pool", "group_id", groupID.Hex(), "movie_id", movieID.Hex(), "user_id", userID.Hex())
	return nil
}

// ListMovies returns the pool's movies in insertion order. Member-only.
func (s *PoolService) ListMovies(ctx context.Context, groupID, userID primitive.ObjectID) ([]models.Movie, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewInternal("group.load_failed", "failed to load group", err)
	}
	if group == nil {
		return nil, apperrors.NewNotFound("group.not_found", "group %s does not exist", groupID.Hex())
	}
	if !group.IsMember(userID) {
		return nil, apperrors.NewForbidden("pool.not_member", "user %s is not a member of this group", userID.Hex())
	}

	movies, err := s.movies.FindByIDs(ctx, group.Pool.MovieIDs())
	if err != nil {
		return nil, apperrors.NewInternal("movie.load_failed", "failed to resolve pool movies", err)
	}
	return movies, nil
}
