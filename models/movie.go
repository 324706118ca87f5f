package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Movie struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title     string             `bson:"title" json:"title"`
	Year      int                `bson:"year" json:"year"`
	PosterURL string             `bson:"poster_url" json:"poster_url"`
	Plot      string             `bson:"plot" json:"plot"`
	Director  string             `bson:"director" json:"director"`
	Genre     string             `bson:"genre" json:"genre"`
	Actors    string             `bson:"actors" json:"actors"`
	// Rating is the catalog rating used only for winner tie-breaks. Movies
	// without a rating lose every rating-based tie-break.
	Rating *float64 `bson:"rating,omitempty" json:"rating,omitempty"`
	IMDBID string   `bson:"imdb_id" json:"imdb_id"`
}
