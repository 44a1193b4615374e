package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileRef points at an object stored in GCS (cover image or book PDF).
type FileRef struct {
	Name string `json:"name" bson:"name"`
	URL  string `json:"url" bson:"url"`
}

type Book struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Title       string               `json:"title" bson:"title"`
	Author      string               `json:"author" bson:"author"`
	Description string               `json:"description" bson:"description"`
	PublishDate time.Time            `json:"publish_date" bson:"publish_date"`
	CreatedAt   time.Time            `json:"created_at" bson:"created_at"`
	Image       FileRef              `json:"image" bson:"image"`
	PDF         FileRef              `json:"pdf" bson:"pdf"`
	Category    string               `json:"category" bson:"category"`
	Price       float64              `json:"price" bson:"price"`
	SalePrice   float64              `json:"saleprice" bson:"saleprice"`
	Topseller   bool                 `json:"topseller" bson:"topseller"`
	Onsale      bool                 `json:"onsale" bson:"onsale"`
	Upcoming    bool                 `json:"upcoming" bson:"upcoming"`
	Newarrival  bool                 `json:"newarrival" bson:"newarrival"`
	Reviews     []primitive.ObjectID `json:"reviews" bson:"reviews"`
	// AverageRating is derived from the current review set and recomputed
	// on every review mutation. 0 when the book has no reviews.
	AverageRating float64 `json:"averageRating" bson:"averageRating"`
	// Version backs the compare-and-swap on review-list updates so two
	// concurrent mutations cannot silently drop each other.
	Version int64 `json:"-" bson:"version"`
}

// HasReview reports whether the book's review list contains the given id.
func (b *Book) HasReview(reviewID primitive.ObjectID) bool {
	for _, id := range b.Reviews {
		if id == reviewID {
			return true
		}
	}
	return false
}
