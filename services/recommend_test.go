package services

import (
	"testing"

	"bookhaven/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func booksIn(categories ...string) []models.Book {
	books := make([]models.Book, len(categories))
	for i, c := range categories {
		books[i] = models.Book{ID: primitive.NewObjectID(), Category: c}
	}
	return books
}

func TestAffinityCategory_MostFrequentWins(t *testing.T) {
	category, ok := AffinityCategory(
		booksIn("Fiction", "Fiction"),
		booksIn("Sci-Fi"),
		nil,
	)
	assert.True(t, ok)
	assert.Equal(t, "Fiction", category)
}

func TestAffinityCategory_EmptySets(t *testing.T) {
	_, ok := AffinityCategory(nil, nil, nil)
	assert.False(t, ok)

	_, ok = AffinityCategory([]models.Book{}, []models.Book{}, []models.Book{})
	assert.False(t, ok)
}

func TestAffinityCategory_TieGoesToFirstEncountered(t *testing.T) {
	// One book each: favorites are iterated before bookmarks, so History
	// reaches the maximum first.
	category, ok := AffinityCategory(booksIn("History"), booksIn("Poetry"), nil)
	assert.True(t, ok)
	assert.Equal(t, "History", category)

	// Later categories only win by exceeding the count, not matching it.
	category, _ = AffinityCategory(booksIn("History"), booksIn("Poetry", "Poetry"), nil)
	assert.Equal(t, "Poetry", category)
}

func TestAffinityCategory_MultiplicitiesAddAcrossSets(t *testing.T) {
	// The same category in several sets accumulates once per membership.
	category, ok := AffinityCategory(
		booksIn("Sci-Fi"),
		booksIn("Fiction"),
		booksIn("Sci-Fi"),
	)
	assert.True(t, ok)
	assert.Equal(t, "Sci-Fi", category)
}

func TestSelectByCategory_ExcludesOwned(t *testing.T) {
	fiction := booksIn("Fiction", "Fiction", "Fiction")
	owned := []primitive.ObjectID{fiction[0].ID}

	selected := SelectByCategory(fiction, "Fiction", owned)
	assert.Equal(t, []models.Book{fiction[1], fiction[2]}, selected)
}

func TestSelectByCategory_FiltersCategory(t *testing.T) {
	catalog := booksIn("Fiction", "History", "Fiction")

	selected := SelectByCategory(catalog, "Fiction", nil)
	assert.Len(t, selected, 2)
	for _, b := range selected {
		assert.Equal(t, "Fiction", b.Category)
	}
}

func TestSelectByCategory_NoMatches(t *testing.T) {
	catalog := booksIn("Fiction")
	assert.Empty(t, SelectByCategory(catalog, "Poetry", nil))
}
