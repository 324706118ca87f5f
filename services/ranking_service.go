package services

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"movie-night-backend/apperrors"
	"movie-night-backend/data_access"
	"movie-night-backend/logger"
	"movie-night-backend/models"
)

// RankingEntry is one (movie, rank) pair of a submission batch.
type RankingEntry struct {
	MovieID primitive.ObjectID
	Rank    int
}

// RankingService validates and stores ranking submissions and aggregates
// them into a single winner.
type RankingService struct {
	phases   *PhaseService
	groups   data_access.GroupRepository
	movies   data_access.MovieRepository
	users    data_access.UserRepository
	rankings data_access.RankingRepository
	log      *logger.Logger
	now      func() time.Time
}

func NewRankingService(
	phases *PhaseService,
	groups data_access.GroupRepository,
	movies data_access.MovieRepository,
	users data_access.UserRepository,
	rankings data_access.RankingRepository,
	log *logger.Logger,
) *RankingService {
	return &RankingService{
		phases:   phases,
		groups:   groups,
		movies:   movies,
		users:    users,
		rankings: rankings,
		log:      log.With("service", "ranking"),
		now:      time.Now,
	}
}

// SubmitRankings stores the user's batch for the group, fully replacing any
// earlier batch. A valid batch has exactly min(5, |pool|) entries whose
// ranks are a permutation of 1..k over distinct pool movies.
func (s *RankingService) SubmitRankings(ctx context.Context, groupID, userID primitive.ObjectID, entries []RankingEntry) error {
	group, err := s.phases.RequirePhase(ctx, groupID, models.PhaseVoting)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return apperrors.NewInternal("user.load_failed", "failed to resolve user", err)
	}
	if user == nil {
		return apperrors.NewNotFound("user.not_found", "user %s does not exist", userID.Hex())
	}
	if !group.IsMember(userID) {
		return apperrors.NewForbidden("ranking.not_member", "user %s is not a member of this group", userID.Hex())
	}

	poolSize := len(group.Pool.Movies)
	if poolSize == 0 {
		return apperrors.NewInvalidRanking("ranking.empty_pool", "the candidate pool is empty, there is nothing to rank")
	}

	k := poolSize
	if k > models.MaxRank {
		k = models.MaxRank
	}

	if len(entries) != k {
		return apperrors.NewInvalidRanking("ranking.wrong_count", "expected %d rankings, received %d", k, len(entries))
	}

	seenMovies := make(map[primitive.ObjectID]bool, k)
	seenRanks := make(map[int]bool, k)
	for _, entry := range entries {
		if group.Pool.Entry(entry.MovieID) == nil {
			return apperrors.NewInvalidRanking("ranking.movie_not_in_pool", "movie %s is not in the candidate pool", entry.MovieID.Hex())
		}
		if seenMovies[entry.MovieID] {
			return apperrors.NewInvalidRanking("ranking.duplicate_movie", "movie %s is ranked more than once", entry.MovieID.Hex())
		}
		seenMovies[entry.MovieID] = true

		if entry.Rank < 1 || entry.Rank > k {
			return apperrors.NewInvalidRanking("ranking.rank_out_of_range", "rank %d is outside the valid range 1..%d", entry.Rank, k)
		}
		if seenRanks[entry.Rank] {
			return apperrors.NewInvalidRanking("ranking.duplicate_rank", "rank %d is used more than once", entry.Rank)
		}
		seenRanks[entry.Rank] = true
	}

	submittedAt := s.now()
	rows := make([]models.RankingSubmission, len(entries))
	for i, entry := range entries {
		rows[i] = models.RankingSubmission{
			GroupID:     groupID,
			UserID:      userID,
			MovieID:     entry.MovieID,
			Rank:        entry.Rank,
			SubmittedAt: submittedAt,
		}
	}
	logEntry := models.SubmissionLog{
		GroupID:     groupID,
		UserID:      userID,
		SubmittedAt: submittedAt,
		RankedCount: k,
	}

	if err := s.rankings.ReplaceSubmissions(ctx, groupID, userID, rows, logEntry); err != nil {
		return apperrors.NewInternal("ranking.store_failed", "failed to store rankings", err)
	}

	s.log.Info("rankings submitted", "group_id", groupID.Hex(), "user_id", userID.Hex(), "count", k)
	return nil
}

// ComputeWinner aggregates the group's submissions into a winner and
// persists a new result row. Members who never submitted implicitly assign
// every pool movie the penalty rank, so averages reflect the whole group.
// Returns (nil, nil) when the group has no submissions at all.
//
// Ties on the adjusted average go to the higher catalog rating; a movie
// without a rating loses every rating tie-break. A residual tie goes to
// the movie added to the pool first.
func (s *RankingService) ComputeWinner(ctx context.Context, groupID primitive.ObjectID) (*models.RankingResult, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewInternal("group.load_failed", "failed to load group", err)
	}
	if group == nil {
		return nil, apperrors.NewNotFound("group.not_found", "group %s does not exist", groupID.Hex())
	}

	submissions, err := s.rankings.FindByGroup(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewInternal("ranking.load_failed", "failed to load submissions", err)
	}
	if len(submissions) == 0 {
		return nil, nil
	}

	averages := adjustedAverages(group, submissions)

	movies, err := s.movies.FindByIDs(ctx, group.Pool.MovieIDs())
	if err != nil {
		return nil, apperrors.NewInternal("movie.load_failed", "failed to resolve pool movies", err)
	}
	// Movies missing from the catalog stay absent here and count as
	// unrated for tie-breaks.
	ratings := make(map[primitive.ObjectID]*float64, len(movies))
	for i := range movies {
		ratings[movies[i].ID] = movies[i].Rating
	}

	var winnerID primitive.ObjectID
	var winnerAverage float64
	var winnerRating *float64
	haveWinner := false

	// Pool insertion order makes the residual tie-break deterministic.
	for _, entry := range group.Pool.Movies {
		average := averages[entry.MovieID]
		rating := ratings[entry.MovieID]

		if !haveWinner || average < winnerAverage ||
			(average == winnerAverage && ratingBeats(rating, winnerRating)) {
			winnerID = entry.MovieID
			winnerAverage = average
			winnerRating = rating
			haveWinner = true
		}
	}

	result := &models.RankingResult{
		GroupID:         groupID,
		WinningMovieID:  winnerID,
		AdjustedAverage: winnerAverage,
		ComputedAt:      s.now(),
	}
	if err := s.rankings.InsertResult(ctx, result); err != nil {
		return nil, apperrors.NewInternal("ranking.store_result_failed", "failed to store ranking result", err)
	}

	s.log.Info("winner computed", "group_id", groupID.Hex(), "movie_id", winnerID.Hex(), "average", winnerAverage)
	return result, nil
}

// GetResults returns the authoritative result plus the full per-movie
// breakdown. Requires the RESULTS phase; computes the winner lazily when no
// result row exists yet.
func (s *RankingService) GetResults(ctx context.Context, groupID primitive.ObjectID) (*models.GroupResults, error) {
	group, err := s.phases.RequirePhase(ctx, groupID, models.PhaseResults)
	if err != nil {
		return nil, err
	}

	latest, err := s.rankings.LatestResult(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewInternal("ranking.load_result_failed", "failed to load ranking result", err)
	}
	if latest == nil {
		latest, err = s.ComputeWinner(ctx, groupID)
		if err != nil {
			return nil, err
		}
	}

	submissions, err := s.rankings.FindByGroup(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewInternal("ranking.load_failed", "failed to load submissions", err)
	}
	submitterCount, err := s.rankings.CountDistinctSubmitters(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewInternal("ranking.count_failed", "failed to count submitters", err)
	}

	movies, err := s.movies.FindByIDs(ctx, group.Pool.MovieIDs())
	if err != nil {
		return nil, apperrors.NewInternal("movie.load_failed", "failed to resolve pool movies", err)
	}

	var averages map[primitive.ObjectID]float64
	if len(submissions) > 0 {
		averages = adjustedAverages(group, submissions)
	}

	breakdown := make([]models.MovieAverage, 0, len(movies))
	for _, movie := range movies {
		row := models.MovieAverage{Movie: movie}
		if averages != nil {
			average := averages[movie.ID]
			row.AdjustedAverage = &average
		}
		breakdown = append(breakdown, row)
	}

	// Ascending by average, nil averages last, ties by descending rating.
	sort.SliceStable(breakdown, func(i, j int) bool {
		a, b := breakdown[i], breakdown[j]
		switch {
		case a.AdjustedAverage == nil && b.AdjustedAverage == nil:
			return ratingBeats(a.Movie.Rating, b.Movie.Rating)
		case a.AdjustedAverage == nil:
			return false
		case b.AdjustedAverage == nil:
			return true
		case *a.AdjustedAverage != *b.AdjustedAverage:
			return *a.AdjustedAverage < *b.AdjustedAverage
		default:
			return ratingBeats(a.Movie.Rating, b.Movie.Rating)
		}
	})

	results := &models.GroupResults{
		SubmitterCount: submitterCount,
		MovieBreakdown: breakdown,
	}
	if latest != nil {
		winner, err := s.movies.FindByID(ctx, latest.WinningMovieID)
		if err != nil {
			return nil, apperrors.NewInternal("movie.load_failed", "failed to resolve winning movie", err)
		}
		results.Winner = winner
		results.WinningAverage = &latest.AdjustedAverage
		results.ComputedAt = &latest.ComputedAt
	}
	return results, nil
}

// GetUserRankings returns the caller's current batch for the group, sorted
// by rank. Not phase-gated; an empty batch is an empty slice, not an error.
func (s *RankingService) GetUserRankings(ctx context.Context, groupID, userID primitive.ObjectID) ([]models.RankingSubmission, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewInternal("group.load_failed", "failed to load group", err)
	}
	if group == nil {
		return nil, apperrors.NewNotFound("group.not_found", "group %s does not exist", groupID.Hex())
	}

	rows, err := s.rankings.FindByUserAndGroup(ctx, groupID, userID)
	if err != nil {
		return nil, apperrors.NewInternal("ranking.load_failed", "failed to load rankings", err)
	}
	if rows == nil {
		rows = []models.RankingSubmission{}
	}
	return rows, nil
}

// ComputeMissingResults computes a winner for every group that reached the
// RESULTS phase without one. It is a convenience trigger for the scheduler;
// GetResults computes lazily regardless.
func (s *RankingService) ComputeMissingResults(ctx context.Context) {
	groupIDs, err := s.groups.FindIDsByPhase(ctx, models.PhaseResults)
	if err != nil {
		s.log.Error("failed to list groups in results phase", "error", err)
		return
	}

	for _, groupID := range groupIDs {
		latest, err := s.rankings.LatestResult(ctx, groupID)
		if err != nil {
			s.log.Error("failed to load ranking result", "group_id", groupID.Hex(), "error", err)
			continue
		}
		if latest != nil {
			continue
		}
		if _, err := s.ComputeWinner(ctx, groupID); err != nil {
			s.log.Error("failed to compute winner", "group_id", groupID.Hex(), "error", err)
		}
	}
}

// adjustedAverages computes each pool movie's adjusted average rank. Every
// member who did not rank a movie contributes the penalty rank for it.
func adjustedAverages(group *models.Group, submissions []models.RankingSubmission) map[primitive.ObjectID]float64 {
	totalMembers := len(group.MemberIDs)

	sums := make(map[primitive.ObjectID]int, len(group.Pool.Movies))
	votes := make(map[primitive.ObjectID]int, len(group.Pool.Movies))
	for _, submission := range submissions {
		sums[submission.MovieID] += submission.Rank
		votes[submission.MovieID]++
	}

	averages := make(map[primitive.ObjectID]float64, len(group.Pool.Movies))
	for _, entry := range group.Pool.Movies {
		missing := totalMembers - votes[entry.MovieID]
		adjusted := float64(sums[entry.MovieID]+missing*models.PenaltyRank) / float64(totalMembers)
		averages[entry.MovieID] = adjusted
	}
	return averages
}

// ratingBeats reports whether rating a wins a tie-break against rating b.
// A missing rating loses against any present rating and never beats
// another missing one.
func ratingBeats(a, b *float64) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a > *b
}
