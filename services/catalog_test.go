package services

import (
	"testing"
	"time"

	"bookhaven/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCapitalizeCategory(t *testing.T) {
	assert.Equal(t, "Fiction", CapitalizeCategory("fiction"))
	assert.Equal(t, "Fiction", CapitalizeCategory("Fiction"))
	assert.Equal(t, "Sci-fi", CapitalizeCategory("sci-fi"))
	assert.Equal(t, "", CapitalizeCategory(""))
}

func TestSortBooks_ByPrice(t *testing.T) {
	books := []models.Book{
		{Title: "B", Price: 20},
		{Title: "A", Price: 10},
		{Title: "C", Price: 30},
	}

	SortBooks(books, "price")
	assert.Equal(t, []float64{10, 20, 30}, []float64{books[0].Price, books[1].Price, books[2].Price})

	SortBooks(books, "-price")
	assert.Equal(t, []float64{30, 20, 10}, []float64{books[0].Price, books[1].Price, books[2].Price})
}

func TestSortBooks_ByTitleAndDate(t *testing.T) {
	older := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	books := []models.Book{
		{Title: "Zebra", PublishDate: newer},
		{Title: "Apple", PublishDate: older},
	}

	SortBooks(books, "title")
	assert.Equal(t, "Apple", books[0].Title)

	SortBooks(books, "-publishDate")
	assert.Equal(t, newer, books[0].PublishDate)
}

func TestSortBooks_UnknownFieldKeepsOrder(t *testing.T) {
	books := []models.Book{{Title: "B"}, {Title: "A"}}
	SortBooks(books, "bogus")
	assert.Equal(t, "B", books[0].Title)
}

func TestToggleFlag_RejectsUnknownFlag(t *testing.T) {
	// Rejected before any lookup, so no store is needed. A bad flag name is a
	// caller mistake, not a missing book.
	svc := NewCatalogService(nil)

	_, err := svc.ToggleFlag(primitive.NewObjectID(), "onsale")
	assert.ErrorIs(t, err, ErrUnknownFlag)

	_, err = svc.ToggleFlag(primitive.NewObjectID(), "bogus")
	assert.ErrorIs(t, err, ErrUnknownFlag)
	assert.NotErrorIs(t, err, ErrBookNotFound)
}
