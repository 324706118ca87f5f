package data_access

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"movie-night-backend/models"
)

// RankingRepository persists ranking submissions, the append-only
// submission log and computed results.
type RankingRepository interface {
	// ReplaceSubmissions atomically swaps the user's batch for the group:
	// the old rows are deleted, the new rows inserted and the log entry
	// appended inside one transaction. Concurrent resubmitters for the same
	// (user, group) serialize on the transaction; readers never observe a
	// partially replaced batch.
	ReplaceSubmissions(ctx context.Context, groupID, userID primitive.ObjectID, rows []models.RankingSubmission, logEntry models.SubmissionLog) error
	FindByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.RankingSubmission, error)
	FindByUserAndGroup(ctx context.Context, groupID, userID primitive.ObjectID) ([]models.RankingSubmission, error)
	CountDistinctSubmitters(ctx context.Context, groupID primitive.ObjectID) (int, error)
	InsertResult(ctx context.Context, result *models.RankingResult) error
	// LatestResult returns (nil, nil) when the group has no result yet.
	LatestResult(ctx context.Context, groupID primitive.ObjectID) (*models.RankingResult, error)
}

type rankingRepository struct {
	db          *MongoDB
	submissions *mongo.Collection
	logs        *mongo.Collection
	results     *mongo.Collection
}

func NewRankingRepository(db *MongoDB) RankingRepository {
	return &rankingRepository{
		db:          db,
		submissions: db.Collection(collRankings),
		logs:        db.Collection(collSubmissionLogs),
		results:     db.Collection(collResults),
	}
}

func (r *rankingRepository) ReplaceSubmissions(ctx context.Context, groupID, userID primitive.ObjectID, rows []models.RankingSubmission, logEntry models.SubmissionLog) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	// WithTransaction retries on transient errors, so a resubmission that
	// loses a write conflict against a concurrent one is re-run whole.
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.submissions.DeleteMany(sc, bson.M{"group_id": groupID, "user_id": userID}); err != nil {
			return nil, err
		}

		docs := make([]interface{}, len(rows))
		for i := range rows {
			docs[i] = rows[i]
		}
		if _, err := r.submissions.InsertMany(sc, docs); err != nil {
			return nil, err
		}

		if _, err := r.logs.InsertOne(sc, logEntry); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (r *rankingRepository) FindByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.RankingSubmission, error) {
	cursor, err := r.submissions.Find(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return nil, err
	}

	var rows []models.RankingSubmission
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *rankingRepository) FindByUserAndGroup(ctx context.Context, groupID, userID primitive.ObjectID) ([]models.RankingSubmission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rank", Value: 1}})
	cursor, err := r.submissions.Find(ctx, bson.M{"group_id": groupID, "user_id": userID}, opts)
	if err != nil {
		return nil, err
	}

	var rows []models.RankingSubmission
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *rankingRepository) CountDistinctSubmitters(ctx context.Context, groupID primitive.ObjectID) (int, error) {
	userIDs, err := r.submissions.Distinct(ctx, "user_id", bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return len(userIDs), nil
}

func (r *rankingRepository) InsertResult(ctx context.Context, result *models.RankingResult) error {
	res, err := r.results.InsertOne(ctx, result)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		result.ID = id
	}
	return nil
}

func (r *rankingRepository) LatestResult(ctx context.Context, groupID primitive.ObjectID) (*models.RankingResult, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "computed_at", Value: -1}})

	var result models.RankingResult
	err := r.results.FindOne(ctx, bson.M{"group_id": groupID}, opts).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
