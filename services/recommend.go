package services

import (
	"context"
	"time"

	"bookhaven/database"
	"bookhaven/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecommendService derives a user's most-engaged category from their
// ownership sets and selects unread catalog books from it.
type RecommendService struct {
	store   *db.Store
	library *LibraryService
}

func NewRecommendService(store *db.Store, library *LibraryService) *RecommendService {
	return &RecommendService{store: store, library: library}
}

// AffinityCategory counts category occurrences across favorites, bookmarks
// and purchased books, in that order. A book in several sets counts once per
// membership. Ties go to the first category that reached the maximum in
// iteration order. ok is false when all three sets are empty.
func AffinityCategory(favorites, bookmarks, purchased []models.Book) (category string, ok bool) {
	counts := make(map[string]int)
	best := ""
	max := 0
	for _, set := range [][]models.Book{favorites, bookmarks, purchased} {
		for _, book := range set {
			counts[book.Category]++
			if counts[book.Category] > max {
				best = book.Category
				max = counts[book.Category]
			}
		}
	}
	if max == 0 {
		return "", false
	}
	return best, true
}

// SelectByCategory filters candidates down to the affinity category, keeping
// candidate order and skipping books the user already owns.
func SelectByCategory(candidates []models.Book, category string, owned []primitive.ObjectID) []models.Book {
	ownedSet := make(map[primitive.ObjectID]bool, len(owned))
	for _, id := range owned {
		ownedSet[id] = true
	}
	selected := make([]models.Book, 0)
	for _, book := range candidates {
		if book.Category == category && !ownedSet[book.ID] {
			selected = append(selected, book)
		}
	}
	return selected
}

// Recommendations resolves the user's three sets, derives the affinity
// category and returns matching catalog books the user has not purchased,
// in catalog order. No affinity means no recommendations; there is
// deliberately no fallback to a default category.
func (s *RecommendService) Recommendations(userID primitive.ObjectID) ([]models.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := s.library.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	favorites, err := s.library.resolveBooks(ctx, user.Favorites)
	if err != nil {
		return nil, err
	}
	bookmarks, err := s.library.resolveBooks(ctx, user.Bookmarks)
	if err != nil {
		return nil, err
	}
	purchased, err := s.library.resolveBooks(ctx, user.Books)
	if err != nil {
		return nil, err
	}

	category, ok := AffinityCategory(favorites, bookmarks, purchased)
	if !ok {
		return []models.Book{}, nil
	}

	cursor, err := s.store.Books.Find(ctx, bson.M{"category": category})
	if err != nil {
		return nil, err
	}
	var candidates []models.Book
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, err
	}
	return SelectByCategory(candidates, category, user.Books), nil
}
