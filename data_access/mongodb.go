package data_access

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	collUsers          = "users"
	collMovies         = "movies"
	collGroups         = "groups"
	collRankings       = "rankings"
	collSubmissionLogs = "submission_logs"
	collResults        = "ranking_results"
	collInvitations    = "invitations"
)

type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoDB(connectionString string, dbName string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(connectionString)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return &MongoDB{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

func (m *MongoDB) Client() *mongo.Client {
	return m.client
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// index on (group_id, user_id, movie_id) backs the replace-on-resubmit
// guarantee: a racing duplicate insert fails instead of producing mixed
// batches.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := m.Collection(collRankings).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "movie_id", Value: 1}}, Options: unique},
	})
	if err != nil {
		return err
	}

	_, err = m.Collection(collResults).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "computed_at", Value: -1}},
	})
	if err != nil {
		return err
	}

	_, err = m.Collection(collInvitations).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "invitee_id", Value: 1}, {Key: "status", Value: 1}},
	})
	if err != nil {
		return err
	}

	_, err = m.Collection(collGroups).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "phase", Value: 1}},
	})
	return err
}
