package controllers

import (
	"net/http"

	"bookhaven/services"

	"github.com/gin-gonic/gin"
)

type createReviewInput struct {
	Comment string   `json:"comment" binding:"required"`
	Rating  *float64 `json:"rating" binding:"required,min=0,max=5"`
}

type editReviewInput struct {
	Comment *string  `json:"comment"`
	Rating  *float64 `json:"rating" binding:"required,min=0,max=5"`
}

// CreateReview posts the user's review on a book. One review per user per
// book; the updated book comes back with its recomputed average.
func (ct *Controller) CreateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	bookID, ok := pathObjectID(c, "bookid")
	if !ok {
		return
	}

	var input createReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	book, err := ct.reviews.AddReview(bookID, userID, *input.Rating, input.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book})
}

// EditReview updates the user's review; rating is required, comment optional.
func (ct *Controller) EditReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	bookID, ok := pathObjectID(c, "bookid")
	if !ok {
		return
	}

	var input editReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	book, err := ct.reviews.EditReview(bookID, userID, services.ReviewPatch{
		Rating:  *input.Rating,
		Comment: input.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book})
}

// DeleteReview removes the user's review from a book.
func (ct *Controller) DeleteReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	bookID, ok := pathObjectID(c, "bookid")
	if !ok {
		return
	}

	book, err := ct.reviews.RemoveReview(bookID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book})
}
