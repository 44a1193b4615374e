package controllers

import (
	"net/http"

	"bookhaven/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListSet returns one ownership set resolved to full book records.
func (ct *Controller) ListSet(set string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		books, err := ct.library.ResolveSet(userID, set)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"books": books})
	}
}

// AddToSet adds a book to favorites or bookmarks. Already-present books are
// a no-op.
func (ct *Controller) AddToSet(set string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		bookID, ok := pathObjectID(c, "bookid")
		if !ok {
			return
		}

		user, err := ct.library.AddToSet(userID, bookID, set)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// RemoveFromSet removes a book from favorites or bookmarks, idempotently.
func (ct *Controller) RemoveFromSet(set string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		bookID, ok := pathObjectID(c, "bookid")
		if !ok {
			return
		}

		user, err := ct.library.RemoveFromSet(userID, bookID, set)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// PurchaseBooks buys a list of books in one all-or-nothing batch.
func (ct *Controller) PurchaseBooks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		BookIDs []string `json:"bookids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	bookIDs := make([]primitive.ObjectID, 0, len(input.BookIDs))
	for _, raw := range input.BookIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respondError(c, services.ErrInvalidSelection)
			return
		}
		bookIDs = append(bookIDs, id)
	}

	user, err := ct.library.PurchaseBooks(userID, bookIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// CheckoutBookmarks promotes the whole bookmark set to purchased books.
func (ct *Controller) CheckoutBookmarks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := ct.library.PromoteBookmarks(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Recommendations returns unowned books from the user's affinity category.
func (ct *Controller) Recommendations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	books, err := ct.recommend.Recommendations(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}
