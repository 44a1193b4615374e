package services

import (
	"context"
	"errors"
	"math"
	"time"

	"bookhaven/database"
	"bookhaven/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// casAttempts bounds the compare-and-swap retry loop on book updates.
const casAttempts = 3

// ReviewService owns the single-review-per-(book,user) rule and keeps a
// book's averageRating consistent with its review set on every mutation.
type ReviewService struct {
	store *db.Store
}

func NewReviewService(store *db.Store) *ReviewService {
	return &ReviewService{store: store}
}

// AverageRating returns the arithmetic mean of the ratings rounded
// half-away-from-zero to one decimal place, or 0 for an empty list.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var total float64
	for _, r := range reviews {
		total += r.Rating
	}
	return math.Round(total/float64(len(reviews))*10) / 10
}

// ReviewPatch carries an edit. Rating is always required on edit; Comment is
// optional and left untouched when nil.
type ReviewPatch struct {
	Rating  float64
	Comment *string
}

func validRating(rating float64) bool {
	return rating >= 0 && rating <= 5
}

// AddReview creates a review by userID on bookID and returns the updated
// book. Fails with ErrDuplicateReview when the user already has one.
func (s *ReviewService) AddReview(bookID, userID primitive.ObjectID, rating float64, comment string) (*models.Book, error) {
	if !validRating(rating) {
		return nil, ErrInvalidRating
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for attempt := 0; attempt < casAttempts; attempt++ {
		book, reviews, err := s.loadBookWithReviews(ctx, bookID)
		if err != nil {
			return nil, err
		}
		if models.FindByUser(reviews, userID) != nil {
			return nil, ErrDuplicateReview
		}

		review := models.Review{
			ID:        primitive.NewObjectID(),
			BookID:    bookID,
			UserID:    userID,
			Rating:    rating,
			Comment:   comment,
			CreatedAt: time.Now(),
		}
		if _, err := s.store.Reviews.InsertOne(ctx, review); err != nil {
			return nil, err
		}

		average := AverageRating(append(reviews, review))
		ok, err := s.casBook(ctx, book, bson.M{
			"$push": bson.M{"reviews": review.ID},
			"$set":  bson.M{"averageRating": average},
			"$inc":  bson.M{"version": 1},
		})
		if err != nil {
			s.store.Reviews.DeleteOne(ctx, bson.M{"_id": review.ID})
			return nil, err
		}
		if ok {
			return s.reloadBook(ctx, bookID)
		}
		// Lost the race: undo the insert and redo the whole attempt so the
		// duplicate check runs against the winner's state.
		if _, err := s.store.Reviews.DeleteOne(ctx, bson.M{"_id": review.ID}); err != nil {
			return nil, err
		}
	}
	return nil, ErrConflict
}

// EditReview replaces the user's review fields and recomputes the average.
func (s *ReviewService) EditReview(bookID, userID primitive.ObjectID, patch ReviewPatch) (*models.Book, error) {
	if !validRating(patch.Rating) {
		return nil, ErrInvalidRating
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The review is patched before the book CAS, so every exit that leaves
	// the CAS unapplied has to put the original fields back. Otherwise the
	// stored average would no longer match the review set.
	var original *models.Review
	for attempt := 0; attempt < casAttempts; attempt++ {
		book, reviews, err := s.loadBookWithReviews(ctx, bookID)
		if err != nil {
			return nil, err
		}
		existing := models.FindByUser(reviews, userID)
		if existing == nil {
			return nil, ErrReviewNotFound
		}
		if original == nil {
			before := *existing
			original = &before
		}

		fields := bson.M{"rating": patch.Rating}
		if patch.Comment != nil {
			fields["comment"] = *patch.Comment
		}
		if _, err := s.store.Reviews.UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{"$set": fields}); err != nil {
			return nil, err
		}

		existing.Rating = patch.Rating
		average := AverageRating(reviews)
		ok, err := s.casBook(ctx, book, bson.M{
			"$set": bson.M{"averageRating": average},
			"$inc": bson.M{"version": 1},
		})
		if err != nil {
			s.restoreReview(ctx, original, patch.Comment != nil)
			return nil, err
		}
		if ok {
			return s.reloadBook(ctx, bookID)
		}
	}
	if err := s.restoreReview(ctx, original, patch.Comment != nil); err != nil {
		return nil, err
	}
	return nil, ErrConflict
}

// restoreReview writes a review's pre-edit fields back after a failed edit.
func (s *ReviewService) restoreReview(ctx context.Context, original *models.Review, withComment bool) error {
	fields := bson.M{"rating": original.Rating}
	if withComment {
		fields["comment"] = original.Comment
	}
	_, err := s.store.Reviews.UpdateOne(ctx, bson.M{"_id": original.ID}, bson.M{"$set": fields})
	return err
}

// RemoveReview deletes the user's review and drops its reference from the
// book. Removing the last review resets the average to 0.
func (s *ReviewService) RemoveReview(bookID, userID primitive.ObjectID) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for attempt := 0; attempt < casAttempts; attempt++ {
		book, reviews, err := s.loadBookWithReviews(ctx, bookID)
		if err != nil {
			return nil, err
		}
		existing := models.FindByUser(reviews, userID)
		if existing == nil {
			return nil, ErrReviewNotFound
		}

		remaining := make([]models.Review, 0, len(reviews)-1)
		for _, r := range reviews {
			if r.ID != existing.ID {
				remaining = append(remaining, r)
			}
		}

		// Delete the record first: a failure here leaves the book untouched,
		// and a review document may never outlive its book reference, since
		// later aggregations scan by book id.
		if _, err := s.store.Reviews.DeleteOne(ctx, bson.M{"_id": existing.ID}); err != nil {
			return nil, err
		}

		ok, err := s.casBook(ctx, book, bson.M{
			"$pull": bson.M{"reviews": existing.ID},
			"$set":  bson.M{"averageRating": AverageRating(remaining)},
			"$inc":  bson.M{"version": 1},
		})
		if err != nil {
			s.store.Reviews.InsertOne(ctx, *existing)
			return nil, err
		}
		if ok {
			return s.reloadBook(ctx, bookID)
		}
		// Lost the race: put the review back and retry against fresh state.
		if _, err := s.store.Reviews.InsertOne(ctx, *existing); err != nil {
			return nil, err
		}
	}
	return nil, ErrConflict
}

// ReviewsForBook returns the book's reviews populated with reviewer names,
// in the order the book's review list references them.
func (s *ReviewService) ReviewsForBook(book *models.Book) ([]models.ReviewWithUser, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reviews, err := s.findReviews(ctx, book.ID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]primitive.ObjectID, 0, len(reviews))
	for _, r := range reviews {
		userIDs = append(userIDs, r.UserID)
	}
	users := make(map[primitive.ObjectID]models.User)
	if len(userIDs) > 0 {
		cursor, err := s.store.Users.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
		if err != nil {
			return nil, err
		}
		var found []models.User
		if err := cursor.All(ctx, &found); err != nil {
			return nil, err
		}
		for _, u := range found {
			users[u.ID] = u
		}
	}

	populated := make([]models.ReviewWithUser, 0, len(reviews))
	byID := make(map[primitive.ObjectID]models.Review, len(reviews))
	for _, r := range reviews {
		byID[r.ID] = r
	}
	for _, id := range book.Reviews {
		r, ok := byID[id]
		if !ok {
			continue
		}
		item := models.ReviewWithUser{Review: r}
		if u, ok := users[r.UserID]; ok {
			item.Firstname = u.Firstname
			item.Lastname = u.Lastname
			item.UserImage = u.Image
		}
		populated = append(populated, item)
	}
	return populated, nil
}

func (s *ReviewService) loadBookWithReviews(ctx context.Context, bookID primitive.ObjectID) (*models.Book, []models.Review, error) {
	var book models.Book
	if err := s.store.Books.FindOne(ctx, bson.M{"_id": bookID}).Decode(&book); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrBookNotFound
		}
		return nil, nil, err
	}
	reviews, err := s.findReviews(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}
	return &book, reviews, nil
}

func (s *ReviewService) findReviews(ctx context.Context, bookID primitive.ObjectID) ([]models.Review, error) {
	cursor, err := s.store.Reviews.Find(ctx, bson.M{"book_id": bookID})
	if err != nil {
		return nil, err
	}
	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// casBook applies update only if the book's version is unchanged since it
// was loaded. Reports false when another writer got there first.
func (s *ReviewService) casBook(ctx context.Context, book *models.Book, update bson.M) (bool, error) {
	result, err := s.store.Books.UpdateOne(ctx, bson.M{"_id": book.ID, "version": book.Version}, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

func (s *ReviewService) reloadBook(ctx context.Context, bookID primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	if err := s.store.Books.FindOne(ctx, bson.M{"_id": bookID}).Decode(&book); err != nil {
		return nil, err
	}
	return &book, nil
}
