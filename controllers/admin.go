package controllers

import (
	"context"
	"mime/multipart"
	"net/http"
	"time"

	"bookhaven/models"
	"bookhaven/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

type createBookInput struct {
	Title       string  `form:"title" binding:"required"`
	Author      string  `form:"author" binding:"required"`
	Description string  `form:"description" binding:"required"`
	Category    string  `form:"category" binding:"required"`
	PublishDate string  `form:"publishDate" binding:"required"`
	Price       float64 `form:"price"`
	Upcoming    bool    `form:"upcoming"`
}

type editBookInput struct {
	Title       string  `form:"title"`
	Author      string  `form:"author"`
	Description string  `form:"description"`
	Category    string  `form:"category"`
	PublishDate string  `form:"publishDate"`
	Price       float64 `form:"price"`
}

func (ct *Controller) uploadFormFile(ctx context.Context, folder string, header *multipart.FileHeader) (models.FileRef, error) {
	file, err := header.Open()
	if err != nil {
		return models.FileRef{}, err
	}
	defer file.Close()

	name, url, err := ct.uploader.Upload(ctx, folder, header.Filename, file)
	if err != nil {
		return models.FileRef{}, err
	}
	return models.FileRef{Name: name, URL: url}, nil
}

// CreateBook adds a catalog book from a multipart form. A cover image is
// always required; a priced, non-upcoming book also requires its PDF.
func (ct *Controller) CreateBook(c *gin.Context) {
	var input createBookInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	publishDate, err := time.Parse("2006-01-02", input.PublishDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid publish date"})
		return
	}
	if !input.Upcoming && input.Price < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be at least 1"})
		return
	}

	imageHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cover image required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	image, err := ct.uploadFormFile(ctx, "books", imageHeader)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	var pdf models.FileRef
	if !input.Upcoming {
		pdfHeader, err := c.FormFile("pdf")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "PDF required"})
			return
		}
		if pdf, err = ct.uploadFormFile(ctx, "pdfs", pdfHeader); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload PDF"})
			return
		}
	}

	book, err := ct.catalog.CreateBook(services.BookInput{
		Title:       input.Title,
		Author:      input.Author,
		Description: input.Description,
		Category:    input.Category,
		PublishDate: publishDate,
		Price:       input.Price,
		Upcoming:    input.Upcoming,
	}, image, pdf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book})
}

// EditBook patches book fields and optionally replaces the cover or PDF.
func (ct *Controller) EditBook(c *gin.Context) {
	bookID, ok := pathObjectID(c, "bookid")
	if !ok {
		return
	}

	var input editBookInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	fields := bson.M{}
	if input.Title != "" {
		fields["title"] = input.Title
	}
	if input.Author != "" {
		fields["author"] = input.Author
	}
	if input.Description != "" {
		fields["description"] = input.Description
	}
	if input.Category != "" {
		fields["category"] = input.Category
	}
	if input.PublishDate != "" {
		publishDate, err := time.Parse("2006-01-02", input.PublishDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid publish date"})
			return
		}
		fields["publish_date"] = publishDate
	}
	if input.Price > 0 {
		fields["price"] = input.Price
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var image, pdf *models.FileRef
	if header, err := c.FormFile("image"); err == nil {
		ref, err := ct.uploadFormFile(ctx, "books", header)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
			return
		}
		image = &ref
	}
	if header, err := c.FormFile("pdf"); err == nil {
		ref, err := ct.uploadFormFile(ctx, "pdfs", header)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload PDF"})
			return
		}
		pdf = &ref
	}

	updated, previous, err := ct.catalog.UpdateBook(bookID, fields, image, pdf)
	if err != nil {
		respondError(c, err)
		return
	}
	if image != nil {
		ct.uploader.Delete(ctx, previous.Image.Name)
	}
	if pdf != nil {
		ct.uploader.Delete(ctx, previous.PDF.Name)
	}
	c.JSON(http.StatusOK, gin.H{"book": updated})
}

// DeleteBook removes the book, its review records and its stored files.
func (ct *Controller) DeleteBook(c *gin.Context) {
	bookID, ok := pathObjectID(c, "bookid")
	if !ok {
		return
	}

	book, err := ct.catalog.DeleteBook(bookID)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ct.uploader.Delete(ctx, book.Image.Name)
	ct.uploader.Delete(ctx, book.PDF.Name)

	c.JSON(http.StatusOK, book)
}

// SetDiscount puts a book on sale at the given percentage.
func (ct *Controller) SetDiscount(c *gin.Context) {
	bookID, ok := pathObjectID(c, "bookid")
	if !ok {
		return
	}

	var input struct {
		Discount float64 `json:"discount" binding:"required,gt=0,lte=100"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid discount"})
		return
	}

	book, err := ct.catalog.SetDiscount(bookID, input.Discount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book})
}

// RemoveDiscount takes a book off sale.
func (ct *Controller) RemoveDiscount(c *gin.Context) {
	bookID, ok := pathObjectID(c, "bookid")
	if !ok {
		return
	}

	book, err := ct.catalog.RemoveDiscount(bookID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book})
}

// ToggleFlag flips the named storefront flag on a book.
func (ct *Controller) ToggleFlag(flag string) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookID, ok := pathObjectID(c, "bookid")
		if !ok {
			return
		}

		book, err := ct.catalog.ToggleFlag(bookID, flag)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"book": book})
	}
}
