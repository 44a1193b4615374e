package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"bookhaven/database"
	"bookhaven/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CatalogService covers public browsing and the admin side of the catalog.
type CatalogService struct {
	store *db.Store
}

func NewCatalogService(store *db.Store) *CatalogService {
	return &CatalogService{store: store}
}

// BrowseQuery mirrors the public catalog query string.
type BrowseQuery struct {
	Search    string
	Topseller bool
	Onsale    bool
	Sort      string
}

// BookInput is the admin create/update payload after boundary validation.
type BookInput struct {
	Title       string
	Author      string
	Description string
	Category    string
	PublishDate time.Time
	Price       float64
	Upcoming    bool
}

// CapitalizeCategory normalizes a category path parameter to the stored,
// capitalized form ("fiction" -> "Fiction"). Matching is otherwise exact.
func CapitalizeCategory(category string) string {
	if category == "" {
		return category
	}
	return strings.ToUpper(category[:1]) + category[1:]
}

// SortBooks orders books by the named field, descending when the name has a
// "-" prefix. Unknown fields leave the order untouched.
func SortBooks(books []models.Book, field string) {
	desc := strings.HasPrefix(field, "-")
	field = strings.TrimPrefix(field, "-")

	var less func(a, b models.Book) bool
	switch field {
	case "title":
		less = func(a, b models.Book) bool { return a.Title < b.Title }
	case "author":
		less = func(a, b models.Book) bool { return a.Author < b.Author }
	case "category":
		less = func(a, b models.Book) bool { return a.Category < b.Category }
	case "price":
		less = func(a, b models.Book) bool { return a.Price < b.Price }
	case "saleprice":
		less = func(a, b models.Book) bool { return a.SalePrice < b.SalePrice }
	case "averageRating":
		less = func(a, b models.Book) bool { return a.AverageRating < b.AverageRating }
	case "publishDate":
		less = func(a, b models.Book) bool { return a.PublishDate.Before(b.PublishDate) }
	case "createdAt":
		less = func(a, b models.Book) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return
	}

	sort.SliceStable(books, func(i, j int) bool {
		if desc {
			return less(books[j], books[i])
		}
		return less(books[i], books[j])
	})
}

// Browse lists the storefront catalog: upcoming books excluded, search over
// title, author and category, optional flag filters and sorting.
func (s *CatalogService) Browse(q BrowseQuery) ([]models.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{
		"upcoming": false,
		"$or": []bson.M{
			{"title": bson.M{"$regex": q.Search, "$options": "i"}},
			{"author": bson.M{"$regex": q.Search, "$options": "i"}},
			{"category": bson.M{"$regex": q.Search, "$options": "i"}},
		},
	}
	return s.find(ctx, filter, q)
}

// BrowseCategory lists one category, capitalizing the parameter the way the
// catalog stores categories. Search here covers title and author only.
func (s *CatalogService) BrowseCategory(category string, q BrowseQuery) ([]models.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{
		"category": CapitalizeCategory(category),
		"upcoming": false,
		"$or": []bson.M{
			{"title": bson.M{"$regex": q.Search, "$options": "i"}},
			{"author": bson.M{"$regex": q.Search, "$options": "i"}},
		},
	}
	return s.find(ctx, filter, q)
}

// ByFlag lists books with one storefront flag set (topseller, onsale,
// upcoming, newarrival).
func (s *CatalogService) ByFlag(flag string) ([]models.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.find(ctx, bson.M{flag: true}, BrowseQuery{})
}

// GetBook returns one catalog book.
func (s *CatalogService) GetBook(bookID primitive.ObjectID) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.getBook(ctx, bookID)
}

// CreateBook inserts a new catalog book. Upcoming books carry no price or
// PDF until they are published.
func (s *CatalogService) CreateBook(input BookInput, image, pdf models.FileRef) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	book := models.Book{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Author:      input.Author,
		Description: input.Description,
		Category:    input.Category,
		PublishDate: input.PublishDate,
		CreatedAt:   time.Now(),
		Image:       image,
		Upcoming:    input.Upcoming,
		Reviews:     []primitive.ObjectID{},
	}
	if !input.Upcoming {
		book.Price = input.Price
		book.PDF = pdf
	}

	if _, err := s.store.Books.InsertOne(ctx, book); err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateBook patches book fields and optionally replaces the stored files.
// Uploading the PDF of an upcoming book publishes it as a new arrival.
// Returns the previous state so the caller can clean up replaced objects.
func (s *CatalogService) UpdateBook(bookID primitive.ObjectID, fields bson.M, image, pdf *models.FileRef) (updated, previous *models.Book, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}

	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	if image != nil {
		set["image"] = *image
	}
	if pdf != nil {
		if book.Upcoming {
			set["upcoming"] = false
			set["newarrival"] = true
		}
		set["pdf"] = *pdf
	}

	if len(set) > 0 {
		if _, err := s.store.Books.UpdateOne(ctx, bson.M{"_id": bookID}, bson.M{"$set": set}); err != nil {
			return nil, nil, err
		}
	}

	after, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}
	return after, book, nil
}

// DeleteBook removes a book and its review records. Reviews are cascaded
// rather than orphaned; a deleted book has nothing left to aggregate over.
func (s *CatalogService) DeleteBook(bookID primitive.ObjectID) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var book models.Book
	err := s.store.Books.FindOneAndDelete(ctx, bson.M{"_id": bookID}).Decode(&book)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if _, err := s.store.Reviews.DeleteMany(ctx, bson.M{"book_id": bookID}); err != nil {
		return nil, err
	}
	return &book, nil
}

// SetDiscount puts the book on sale at the given percentage off.
func (s *CatalogService) SetDiscount(bookID primitive.ObjectID, percent float64) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	book.Onsale = true
	book.SalePrice = book.Price - book.Price*percent/100
	_, err = s.store.Books.UpdateOne(ctx, bson.M{"_id": bookID}, bson.M{
		"$set": bson.M{"onsale": true, "saleprice": book.SalePrice},
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// RemoveDiscount takes the book off sale.
func (s *CatalogService) RemoveDiscount(bookID primitive.ObjectID) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	book.Onsale = false
	book.SalePrice = 0
	_, err = s.store.Books.UpdateOne(ctx, bson.M{"_id": bookID}, bson.M{
		"$set": bson.M{"onsale": false, "saleprice": 0.0},
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// ToggleFlag flips one storefront flag (topseller or newarrival).
func (s *CatalogService) ToggleFlag(bookID primitive.ObjectID, flag string) (*models.Book, error) {
	if flag != "topseller" && flag != "newarrival" {
		return nil, ErrUnknownFlag
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	var value bool
	switch flag {
	case "topseller":
		book.Topseller = !book.Topseller
		value = book.Topseller
	case "newarrival":
		book.Newarrival = !book.Newarrival
		value = book.Newarrival
	}

	_, err = s.store.Books.UpdateOne(ctx, bson.M{"_id": bookID}, bson.M{"$set": bson.M{flag: value}})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// PromoteUpcoming flips upcoming books whose publish date has passed to new
// arrivals. Run daily from the cron scheduler in main.
func (s *CatalogService) PromoteUpcoming() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.store.Books.UpdateMany(ctx,
		bson.M{"upcoming": true, "publish_date": bson.M{"$lte": time.Now()}},
		bson.M{"$set": bson.M{"upcoming": false, "newarrival": true}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (s *CatalogService) getBook(ctx context.Context, bookID primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	if err := s.store.Books.FindOne(ctx, bson.M{"_id": bookID}).Decode(&book); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (s *CatalogService) find(ctx context.Context, filter bson.M, q BrowseQuery) ([]models.Book, error) {
	cursor, err := s.store.Books.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var books []models.Book
	if err := cursor.All(ctx, &books); err != nil {
		return nil, err
	}

	if q.Topseller {
		books = filterBooks(books, func(b models.Book) bool { return b.Topseller })
	}
	if q.Onsale {
		books = filterBooks(books, func(b models.Book) bool { return b.Onsale })
	}
	if q.Sort != "" {
		SortBooks(books, q.Sort)
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

func filterBooks(books []models.Book, keep func(models.Book) bool) []models.Book {
	filtered := make([]models.Book, 0, len(books))
	for _, b := range books {
		if keep(b) {
			filtered = append(filtered, b)
		}
	}
	return filtered
}
