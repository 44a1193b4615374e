package controllers

import (
	"net/http"

	"bookhaven/services"

	"github.com/gin-gonic/gin"
)

func browseQuery(c *gin.Context) services.BrowseQuery {
	return services.BrowseQuery{
		Search:    c.Query("search"),
		Topseller: c.Query("topseller") == "true",
		Onsale:    c.Query("onsale") == "true",
		Sort:      c.Query("sort"),
	}
}

// ListBooks is the storefront catalog: search, flag filters and sorting.
func (ct *Controller) ListBooks(c *gin.Context) {
	books, err := ct.catalog.Browse(browseQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// ListByFlag serves the topseller/upcoming/onsale/newarrival shelves.
func (ct *Controller) ListByFlag(flag string) gin.HandlerFunc {
	return func(c *gin.Context) {
		books, err := ct.catalog.ByFlag(flag)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"book": books})
	}
}

// GetBook returns one book with its reviews populated with reviewer names.
func (ct *Controller) GetBook(c *gin.Context) {
	bookID, ok := pathObjectID(c, "bookid")
	if !ok {
		return
	}

	book, err := ct.catalog.GetBook(bookID)
	if err != nil {
		respondError(c, err)
		return
	}
	reviews, err := ct.reviews.ReviewsForBook(book)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book, "reviews": reviews})
}

// ListByCategory browses one category; the path parameter is capitalized to
// the stored form.
func (ct *Controller) ListByCategory(c *gin.Context) {
	books, err := ct.catalog.BrowseCategory(c.Param("category"), browseQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}
