package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Firstname string             `json:"firstname" bson:"firstname"`
	Lastname  string             `json:"lastname" bson:"lastname"`
	Username  string             `json:"username" bson:"username"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Image     FileRef            `json:"image" bson:"image"`
	// The three ownership sets. Stored as ordered lists, insertion order,
	// no duplicates. Order only matters for iteration (category affinity).
	Favorites []primitive.ObjectID `json:"Favorites" bson:"Favorites"`
	Bookmarks []primitive.ObjectID `json:"Bookmarks" bson:"Bookmarks"`
	Books     []primitive.ObjectID `json:"Books" bson:"Books"`
	IsAdmin   bool                 `json:"isAdmin" bson:"isAdmin"`
}

// ContainsID reports whether id is a member of the given ownership list.
func ContainsID(set []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, member := range set {
		if member == id {
			return true
		}
	}
	return false
}

// AppendID adds id to the set, keeping set semantics. Reports whether the
// set changed, so adds stay idempotent.
func AppendID(set []primitive.ObjectID, id primitive.ObjectID) ([]primitive.ObjectID, bool) {
	if ContainsID(set, id) {
		return set, false
	}
	return append(set, id), true
}

// RemoveID drops id from the set. Removing an absent member is a no-op.
func RemoveID(set []primitive.ObjectID, id primitive.ObjectID) ([]primitive.ObjectID, bool) {
	for i, member := range set {
		if member == id {
			return append(set[:i:i], set[i+1:]...), true
		}
	}
	return set, false
}
