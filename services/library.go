package services

import (
	"context"
	"errors"
	"time"

	"bookhaven/database"
	"bookhaven/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Ownership set field names on the user document.
const (
	SetFavorites = "Favorites"
	SetBookmarks = "Bookmarks"
	SetBooks     = "Books"
)

// LibraryService manages the per-user ownership sets: favorites, bookmarks
// and purchased books.
type LibraryService struct {
	store *db.Store
}

func NewLibraryService(store *db.Store) *LibraryService {
	return &LibraryService{store: store}
}

// ValidateSelection checks a batch purchase list against the catalog and the
// user's already-purchased books. The whole list is rejected when any entry
// is nonexistent, already owned or repeated; there is no partial success.
func ValidateSelection(requested []primitive.ObjectID, catalog, owned map[primitive.ObjectID]bool) ([]primitive.ObjectID, error) {
	seen := make(map[primitive.ObjectID]bool, len(requested))
	valid := make([]primitive.ObjectID, 0, len(requested))
	for _, id := range requested {
		if seen[id] || !catalog[id] || owned[id] {
			return nil, ErrInvalidSelection
		}
		seen[id] = true
		valid = append(valid, id)
	}
	return valid, nil
}

// AddToSet appends bookID to one of the user's ownership sets. Adding a book
// that is already present is a no-op, not an error.
func (s *LibraryService) AddToSet(userID, bookID primitive.ObjectID, set string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := s.store.Books.CountDocuments(ctx, bson.M{"_id": bookID})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrBookNotFound
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	members, changed := models.AppendID(s.setOf(user, set), bookID)
	if changed {
		if err := s.saveSet(ctx, userID, set, members); err != nil {
			return nil, err
		}
		s.assignSet(user, set, members)
	}
	return user, nil
}

// RemoveFromSet drops bookID from the set. Removing an absent member is a
// no-op.
func (s *LibraryService) RemoveFromSet(userID, bookID primitive.ObjectID, set string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	members, changed := models.RemoveID(s.setOf(user, set), bookID)
	if changed {
		if err := s.saveSet(ctx, userID, set, members); err != nil {
			return nil, err
		}
		s.assignSet(user, set, members)
	}
	return user, nil
}

// ResolveSet returns the full book records for one of the user's sets, in
// stored order.
func (s *LibraryService) ResolveSet(userID primitive.ObjectID, set string) ([]models.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolveBooks(ctx, s.setOf(user, set))
}

// PurchaseBooks validates the batch and appends it to the user's purchased
// books. All-or-nothing: any bad id leaves the user untouched.
func (s *LibraryService) PurchaseBooks(userID primitive.ObjectID, bookIDs []primitive.ObjectID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	valid, err := s.validateAgainstCatalog(ctx, bookIDs, user.Books)
	if err != nil {
		return nil, err
	}

	user.Books = append(user.Books, valid...)
	if err := s.saveSet(ctx, userID, SetBooks, user.Books); err != nil {
		return nil, err
	}
	return user, nil
}

// PromoteBookmarks moves the user's entire bookmark set into purchased books
// with the same all-or-nothing validation, then clears the bookmarks. Both
// sets live on one user document, so the write itself is atomic.
func (s *LibraryService) PromoteBookmarks(userID primitive.ObjectID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	valid, err := s.validateAgainstCatalog(ctx, user.Bookmarks, user.Books)
	if err != nil {
		return nil, err
	}

	user.Books = append(user.Books, valid...)
	user.Bookmarks = []primitive.ObjectID{}
	_, err = s.store.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{SetBooks: user.Books, SetBookmarks: user.Bookmarks},
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// validateAgainstCatalog resolves which of the requested ids exist in the
// catalog and runs the all-or-nothing selection check.
func (s *LibraryService) validateAgainstCatalog(ctx context.Context, requested, owned []primitive.ObjectID) ([]primitive.ObjectID, error) {
	catalog := make(map[primitive.ObjectID]bool, len(requested))
	if len(requested) > 0 {
		cursor, err := s.store.Books.Find(ctx, bson.M{"_id": bson.M{"$in": requested}},
			options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return nil, err
		}
		var found []struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.All(ctx, &found); err != nil {
			return nil, err
		}
		for _, doc := range found {
			catalog[doc.ID] = true
		}
	}

	ownedSet := make(map[primitive.ObjectID]bool, len(owned))
	for _, id := range owned {
		ownedSet[id] = true
	}
	return ValidateSelection(requested, catalog, ownedSet)
}

func (s *LibraryService) loadUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.store.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *LibraryService) saveSet(ctx context.Context, userID primitive.ObjectID, set string, members []primitive.ObjectID) error {
	_, err := s.store.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{set: members}})
	return err
}

func (s *LibraryService) setOf(user *models.User, set string) []primitive.ObjectID {
	switch set {
	case SetBookmarks:
		return user.Bookmarks
	case SetBooks:
		return user.Books
	default:
		return user.Favorites
	}
}

func (s *LibraryService) assignSet(user *models.User, set string, members []primitive.ObjectID) {
	switch set {
	case SetBookmarks:
		user.Bookmarks = members
	case SetBooks:
		user.Books = members
	default:
		user.Favorites = members
	}
}

// resolveBooks fetches the given books and returns them in list order.
func (s *LibraryService) resolveBooks(ctx context.Context, ids []primitive.ObjectID) ([]models.Book, error) {
	if len(ids) == 0 {
		return []models.Book{}, nil
	}
	cursor, err := s.store.Books.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var found []models.Book
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.Book, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}
	books := make([]models.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			books = append(books, b)
		}
	}
	return books, nil
}
