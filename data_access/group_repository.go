package data_access

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"movie-night-backend/models"
)

// GroupRepository persists groups together with their embedded candidate
// pool. Pool and phase mutations are single-document conditional updates:
// the precondition rides in the update filter, so a racing writer that no
// longer matches simply modifies nothing and the caller sees false.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	// FindByID returns (nil, nil) when no group has the given id.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	FindIDsByPhase(ctx context.Context, phase models.Phase) ([]primitive.ObjectID, error)
	AddMember(ctx context.Context, groupID, userID primitive.ObjectID) error
	RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error
	// AdvancePhase moves the group from one phase to the next and stamps the
	// new phase start time. Returns false when the group is no longer in the
	// expected phase.
	AdvancePhase(ctx context.Context, groupID primitive.ObjectID, from, to models.Phase, startedAt time.Time) (bool, error)
	UpdatePhaseDurations(ctx context.Context, groupID primitive.ObjectID, poolSeconds, votingSeconds *int64) error
	// AddPoolMovie appends entry to the pool if and only if the group is in
	// the POOL phase, the movie is not already present and the contributor
	// is still under maxPerUser. Returns false when any of those conditions
	// no longer holds.
	AddPoolMovie(ctx context.Context, groupID primitive.ObjectID, entry models.PoolEntry, maxPerUser int) (bool, error)
	// RemovePoolMovie removes the movie if the group is in the POOL phase
	// and the movie was added by contributorID.
	RemovePoolMovie(ctx context.Context, groupID, movieID, contributorID primitive.ObjectID, removedAt time.Time) (bool, error)
}

type groupRepository struct {
	collection *mongo.Collection
}

func NewGroupRepository(db *MongoDB) GroupRepository {
	return &groupRepository{collection: db.Collection(collGroups)}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	result, err := r.collection.InsertOne(ctx, group)
	if err != nil {
		return err
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		group.ID = id
	}
	return nil
}

func (r *groupRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var group models.Group
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) FindIDsByPhase(ctx context.Context, phase models.Phase) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"phase": phase})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []primitive.ObjectID
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

func (r *groupRepository) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": groupID},
		bson.M{"$addToSet": bson.M{"member_ids": userID}},
	)
	return err
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": groupID},
		bson.M{"$pull": bson.M{"member_ids": userID}},
	)
	return err
}

func (r *groupRepository) AdvancePhase(ctx context.Context, groupID primitive.ObjectID, from, to models.Phase, startedAt time.Time) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": groupID, "phase": from},
		bson.M{"$set": bson.M{"phase": to, "phase_start_time": startedAt}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (r *groupRepository) UpdatePhaseDurations(ctx context.Context, groupID primitive.ObjectID, poolSeconds, votingSeconds *int64) error {
	set := bson.M{}
	if poolSeconds != nil {
		set["pool_phase_duration_seconds"] = *poolSeconds
	}
	if votingSeconds != nil {
		set["voting_phase_duration_seconds"] = *votingSeconds
	}
	if len(set) == 0 {
		return nil
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": groupID}, bson.M{"$set": set})
	return err
}

func (r *groupRepository) AddPoolMovie(ctx context.Context, groupID primitive.ObjectID, entry models.PoolEntry, maxPerUser int) (bool, error) {
	// The duplicate check and the per-user cap are part of the filter, so
	// two concurrent adds cannot both pass once the cap is reached.
	filter := bson.M{
		"_id":                  groupID,
		"phase":                models.PhasePool,
		"pool.movies.movie_id": bson.M{"$ne": entry.MovieID},
		"$expr": bson.M{"$lt": bson.A{
			bson.M{"$size": bson.M{"$filter": bson.M{
				"input": "$pool.movies",
				"as":    "m",
				"cond":  bson.M{"$eq": bson.A{"$$m.added_by", entry.AddedBy}},
			}}},
			maxPerUser,
		}},
	}
	update := bson.M{
		"$push": bson.M{"pool.movies": entry},
		"$set":  bson.M{"pool.last_updated": entry.AddedAt},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (r *groupRepository) RemovePoolMovie(ctx context.Context, groupID, movieID, contributorID primitive.ObjectID, removedAt time.Time) (bool, error) {
	filter := bson.M{
		"_id":   groupID,
		"phase": models.PhasePool,
		"pool.movies": bson.M{"$elemMatch": bson.M{
			"movie_id": movieID,
			"added_by": contributorID,
		}},
	}
	update := bson.M{
		"$pull": bson.M{"pool.movies": bson.M{"movie_id": movieID}},
		"$set":  bson.M{"pool.last_updated": removedAt},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}
