package data_access

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"movie-night-backend/models"
)

// MovieRepository is the movie catalog. The core reads it to resolve pool
// movies and tie-break ratings; writes only happen during seeding.
type MovieRepository interface {
	// FindByID returns (nil, nil) when no movie has the given id.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error)
	// FindByIDs resolves the given ids, preserving their order. Ids that
	// resolve to nothing are skipped.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Movie, error)
	InsertMany(ctx context.Context, movies []models.Movie) error
	Count(ctx context.Context) (int64, error)
}

type movieRepository struct {
	collection *mongo.Collection
}

func NewMovieRepository(db *MongoDB) MovieRepository {
	return &movieRepository{collection: db.Collection(collMovies)}
}

func (r *movieRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error) {
	var movie models.Movie
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&movie)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *movieRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Movie, error) {
	if len(ids) == 0 {
		return []models.Movie{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var found []models.Movie
	if err = cursor.All(ctx, &found); err != nil {
		return nil, err
	}

	// Reorder to match the requested id order.
	byID := make(map[primitive.ObjectID]models.Movie, len(found))
	for _, movie := range found {
		byID[movie.ID] = movie
	}
	ordered := make([]models.Movie, 0, len(ids))
	for _, id := range ids {
		if movie, ok := byID[id]; ok {
			ordered = append(ordered, movie)
		}
	}
	return ordered, nil
}

func (r *movieRepository) InsertMany(ctx context.Context, movies []models.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	docs := make([]interface{}, len(movies))
	for i := range movies {
		docs[i] = movies[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *movieRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
