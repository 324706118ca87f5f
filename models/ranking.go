package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxRank is the largest rank a user can assign; batches over pools larger
// than this still rank only the top MaxRank picks.
const MaxRank = 5

// PenaltyRank is the implicit rank charged for every member who did not
// rank a movie.
const PenaltyRank = MaxRank + 1

// RankingSubmission is one (user, group, movie, rank) row. A user's current
// batch for a group is the set of rows keyed by that user and group.
type RankingSubmission struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	GroupID     primitive.ObjectID `bson:"group_id" json:"group_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	MovieID     primitive.ObjectID `bson:"movie_id" json:"movie_id"`
	Rank        int                `bson:"rank" json:"rank"`
	SubmittedAt time.Time          `bson:"submitted_at" json:"submitted_at"`
}

// SubmissionLog is an append-only audit record of one submission batch.
// Rows are never updated or deleted.
type SubmissionLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	GroupID     primitive.ObjectID `bson:"group_id" json:"group_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	SubmittedAt time.Time          `bson:"submitted_at" json:"submitted_at"`
	RankedCount int                `bson:"ranked_count" json:"ranked_count"`
}

// RankingResult is one computed winner for a group. Results accumulate;
// only the most recent row is authoritative.
type RankingResult struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	GroupID         primitive.ObjectID `bson:"group_id" json:"group_id"`
	WinningMovieID  primitive.ObjectID `bson:"winning_movie_id" json:"winning_movie_id"`
	AdjustedAverage float64            `bson:"adjusted_average" json:"adjusted_average"`
	ComputedAt      time.Time          `bson:"computed_at" json:"computed_at"`
}

// MovieAverage is one row of the per-movie results breakdown. The average
// is nil when the group has no submissions at all.
type MovieAverage struct {
	Movie           Movie    `json:"movie"`
	AdjustedAverage *float64 `json:"adjusted_average"`
}

// GroupResults is the full results view returned once a group reaches the
// RESULTS phase.
type GroupResults struct {
	Winner          *Movie         `json:"winner,omitempty"`
	WinningAverage  *float64       `json:"winning_average,omitempty"`
	ComputedAt      *time.Time     `json:"computed_at,omitempty"`
	SubmitterCount  int            `json:"submitter_count"`
	MovieBreakdown  []MovieAverage `json:"movie_breakdown"`
}
