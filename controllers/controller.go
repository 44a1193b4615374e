package controllers

import (
	"errors"
	"net/http"

	"bookhaven/database"
	"bookhaven/gcs"
	"bookhaven/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Controller holds the injected store, uploader and services. Handlers are
// methods so nothing here depends on package-level state.
type Controller struct {
	store     *db.Store
	uploader  *gcs.Uploader
	jwtSecret []byte

	catalog   *services.CatalogService
	reviews   *services.ReviewService
	library   *services.LibraryService
	recommend *services.RecommendService
}

func New(store *db.Store, uploader *gcs.Uploader, jwtSecret []byte) *Controller {
	library := services.NewLibraryService(store)
	return &Controller{
		store:     store,
		uploader:  uploader,
		jwtSecret: jwtSecret,
		catalog:   services.NewCatalogService(store),
		reviews:   services.NewReviewService(store),
		library:   library,
		recommend: services.NewRecommendService(store, library),
	}
}

// JWTSecret exposes the signing key for the auth middleware.
func (ct *Controller) JWTSecret() []byte {
	return ct.jwtSecret
}

// Catalog exposes the catalog service for the scheduler in main.
func (ct *Controller) Catalog() *services.CatalogService {
	return ct.catalog
}

// respondError maps core error kinds onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrBookNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicateReview),
		errors.Is(err, services.ErrInvalidSelection),
		errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrUnknownFlag):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// currentUserID reads the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// pathObjectID parses an object id path parameter.
func pathObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}
