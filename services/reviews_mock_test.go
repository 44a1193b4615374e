package services

import (
	"testing"

	"bookhaven/database"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func mockStore(mt *mtest.T) *db.Store {
	return &db.Store{Client: mt.Client, Books: mt.Coll, Users: mt.Coll, Reviews: mt.Coll}
}

func mockNamespace(mt *mtest.T) string {
	return mt.DB.Name() + "." + mt.Coll.Name()
}

func updateResponse(modified int) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: modified})
}

func startedByName(mt *mtest.T, name string) []*event.CommandStartedEvent {
	var matched []*event.CommandStartedEvent
	for _, evt := range mt.GetAllStartedEvents() {
		if evt.CommandName == name {
			matched = append(matched, evt)
		}
	}
	return matched
}

// A writer that keeps bumping the book version between load and swap makes
// every swap attempt fail. The review edit must then be rolled back so the
// persisted average still matches the stored rating.
func TestEditReview_RestoresRatingWhenBookKeepsChanging(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("rolls back the rating patch", func(mt *mtest.T) {
		svc := NewReviewService(mockStore(mt))
		ns := mockNamespace(mt)

		bookID := primitive.NewObjectID()
		userID := primitive.NewObjectID()
		reviewID := primitive.NewObjectID()
		bookDoc := bson.D{
			{Key: "_id", Value: bookID},
			{Key: "version", Value: int64(3)},
			{Key: "reviews", Value: bson.A{reviewID}},
			{Key: "averageRating", Value: 4.0},
		}
		reviewDoc := bson.D{
			{Key: "_id", Value: reviewID},
			{Key: "book_id", Value: bookID},
			{Key: "user_id", Value: userID},
			{Key: "rating", Value: 4.0},
			{Key: "comment", Value: "solid"},
		}

		// Per attempt: load book, load reviews, patch review, failed swap.
		for i := 0; i < casAttempts; i++ {
			mt.AddMockResponses(
				mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bookDoc),
				mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, reviewDoc),
				updateResponse(1),
				updateResponse(0),
			)
		}
		// The rollback write after the last attempt.
		mt.AddMockResponses(updateResponse(1))

		_, err := svc.EditReview(bookID, userID, ReviewPatch{Rating: 5})
		assert.ErrorIs(mt, err, ErrConflict)

		updates := startedByName(mt, "update")
		assert.Len(mt, updates, 2*casAttempts+1)

		// The final update restores the pre-edit rating, nothing else.
		stmts, err := updates[len(updates)-1].Command.Lookup("updates").Array().Values()
		assert.NoError(mt, err)
		set := stmts[0].Document().Lookup("u").Document().Lookup("$set").Document()
		assert.Equal(mt, 4.0, set.Lookup("rating").Double())
		_, commentErr := set.LookupErr("comment")
		assert.Error(mt, commentErr)
	})
}

// When every swap attempt loses, the deleted review must be re-inserted each
// time: the record may not disappear while the book still references it, and
// aggregation scans by book id would otherwise diverge from the book.
func TestRemoveReview_ReinsertsWhenBookKeepsChanging(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("puts the review back on every lost race", func(mt *mtest.T) {
		svc := NewReviewService(mockStore(mt))
		ns := mockNamespace(mt)

		bookID := primitive.NewObjectID()
		userID := primitive.NewObjectID()
		reviewID := primitive.NewObjectID()
		bookDoc := bson.D{
			{Key: "_id", Value: bookID},
			{Key: "version", Value: int64(8)},
			{Key: "reviews", Value: bson.A{reviewID}},
			{Key: "averageRating", Value: 2.0},
		}
		reviewDoc := bson.D{
			{Key: "_id", Value: reviewID},
			{Key: "book_id", Value: bookID},
			{Key: "user_id", Value: userID},
			{Key: "rating", Value: 2.0},
		}

		// Per attempt: load book, load reviews, delete record, failed swap,
		// compensating re-insert.
		for i := 0; i < casAttempts; i++ {
			mt.AddMockResponses(
				mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bookDoc),
				mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, reviewDoc),
				mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
				updateResponse(0),
				mtest.CreateSuccessResponse(),
			)
		}

		_, err := svc.RemoveReview(bookID, userID)
		assert.ErrorIs(mt, err, ErrConflict)

		// One compensating insert per lost attempt.
		assert.Len(mt, startedByName(mt, "insert"), casAttempts)
		assert.Len(mt, startedByName(mt, "delete"), casAttempts)
	})
}
