package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxMoviesPerUser is the cap on candidate-pool contributions per member.
const MaxMoviesPerUser = 2

type Group struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string               `bson:"name" json:"name"`
	CreatorID primitive.ObjectID   `bson:"creator_id" json:"creator_id"`
	MemberIDs []primitive.ObjectID `bson:"member_ids" json:"member_ids"`

	Phase          Phase      `bson:"phase" json:"phase"`
	PhaseStartTime *time.Time `bson:"phase_start_time,omitempty" json:"phase_start_time,omitempty"`

	PoolPhaseDurationSeconds   int64 `bson:"pool_phase_duration_seconds" json:"pool_phase_duration_seconds"`
	VotingPhaseDurationSeconds int64 `bson:"voting_phase_duration_seconds" json:"voting_phase_duration_seconds"`

	Pool      CandidatePool `bson:"pool" json:"pool"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}

// CandidatePool holds the movies nominated during the POOL phase, in
// insertion order, together with who contributed each one.
type CandidatePool struct {
	Movies      []PoolEntry `bson:"movies" json:"movies"`
	LastUpdated time.Time   `bson:"last_updated" json:"last_updated"`
}

type PoolEntry struct {
	MovieID primitive.ObjectID `bson:"movie_id" json:"movie_id"`
	AddedBy primitive.ObjectID `bson:"added_by" json:"added_by"`
	AddedAt time.Time          `bson:"added_at" json:"added_at"`
}

// IsMember reports whether userID is in the group's member set.
func (g *Group) IsMember(userID primitive.ObjectID) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Entry returns the pool entry for movieID, or nil when the movie is not in
// the pool.
func (p *CandidatePool) Entry(movieID primitive.ObjectID) *PoolEntry {
	for i := range p.Movies {
		if p.Movies[i].MovieID == movieID {
			return &p.Movies[i]
		}
	}
	return nil
}

// ContributionCount returns how many pool movies userID has added.
func (p *CandidatePool) ContributionCount(userID primitive.ObjectID) int {
	count := 0
	for i := range p.Movies {
		if p.Movies[i].AddedBy == userID {
			count++
		}
	}
	return count
}

// MovieIDs returns the pool's movie ids in insertion order.
func (p *CandidatePool) MovieIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, len(p.Movies))
	for i := range p.Movies {
		ids[i] = p.Movies[i].MovieID
	}
	return ids
}
