package data_access

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"movie-night-backend/models"
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.GroupInvitation) error
	// FindByID returns (nil, nil) when no invitation has the given id.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.GroupInvitation, error)
	HasPending(ctx context.Context, groupID, inviteeID primitive.ObjectID) (bool, error)
	// MarkResponded sets the status if the invitation is still pending.
	// Returns false when it was already responded to.
	MarkResponded(ctx context.Context, id primitive.ObjectID, status models.InvitationStatus, respondedAt time.Time) (bool, error)
	FindPendingByInvitee(ctx context.Context, inviteeID primitive.ObjectID) ([]models.GroupInvitation, error)
}

type invitationRepository struct {
	collection *mongo.Collection
}

func NewInvitationRepository(db *MongoDB) InvitationRepository {
	return &invitationRepository{collection: db.Collection(collInvitations)}
}

func (r *invitationRepository) Create(ctx context.Context, invitation *models.GroupInvitation) error {
	result, err := r.collection.InsertOne(ctx, invitation)
	if err != nil {
		return err
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		invitation.ID = id
	}
	return nil
}

func (r *invitationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.GroupInvitation, error) {
	var invitation models.GroupInvitation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&invitation)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) HasPending(ctx context.Context, groupID, inviteeID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"group_id":   groupID,
		"invitee_id": inviteeID,
		"status":     models.InvitationPending,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *invitationRepository) MarkResponded(ctx context.Context, id primitive.ObjectID, status models.InvitationStatus, respondedAt time.Time) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.InvitationPending},
		bson.M{"$set": bson.M{"status": status, "responded_at": respondedAt}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (r *invitationRepository) FindPendingByInvitee(ctx context.Context, inviteeID primitive.ObjectID) ([]models.GroupInvitation, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"invitee_id": inviteeID,
		"status":     models.InvitationPending,
	})
	if err != nil {
		return nil, err
	}

	var invitations []models.GroupInvitation
	if err = cursor.All(ctx, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}
