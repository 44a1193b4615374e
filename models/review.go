package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a single user's rating and comment on a single book. At most one
// review per (book, user) pair exists; the services layer enforces this by
// scanning the book's current reviews before inserting.
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BookID    primitive.ObjectID `json:"book_id" bson:"book_id"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Rating    float64            `json:"rating" bson:"rating"`
	Comment   string             `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// ReviewWithUser is the populated shape returned on book detail pages.
type ReviewWithUser struct {
	Review    `bson:",inline"`
	Firstname string  `json:"firstname" bson:"firstname"`
	Lastname  string  `json:"lastname" bson:"lastname"`
	UserImage FileRef `json:"user_image" bson:"user_image"`
}

// FindByUser returns the review written by userID, or nil.
func FindByUser(reviews []Review, userID primitive.ObjectID) *Review {
	for i := range reviews {
		if reviews[i].UserID == userID {
			return &reviews[i]
		}
	}
	return nil
}
