package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bookhaven/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	userTokenTTL  = 30 * 24 * time.Hour
	adminTokenTTL = 2 * time.Hour
)

type registerInput struct {
	Firstname string `json:"firstname" binding:"required"`
	Lastname  string `json:"lastname" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
}

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (ct *Controller) generateJWT(userID, role string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(ct.jwtSecret)
}

// Register creates a regular account. AdminRegister the admin variant.
func (ct *Controller) Register(c *gin.Context)      { ct.register(c, false) }
func (ct *Controller) AdminRegister(c *gin.Context) { ct.register(c, true) }

func (ct *Controller) register(c *gin.Context, isAdmin bool) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var existing models.User
	err := ct.store.Users.FindOne(ctx, bson.M{
		"$or": []bson.M{{"username": input.Username}, {"email": input.Email}},
	}).Decode(&existing)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User already registered"})
		return
	}
	// Only a clean miss may proceed; a store error must not mint an account
	// that could duplicate an existing one.
	if !errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	user := models.User{
		Firstname: input.Firstname,
		Lastname:  input.Lastname,
		Username:  input.Username,
		Email:     input.Email,
		Password:  hashed,
		Favorites: []primitive.ObjectID{},
		Bookmarks: []primitive.ObjectID{},
		Books:     []primitive.ObjectID{},
		IsAdmin:   isAdmin,
	}
	result, err := ct.store.Users.InsertOne(ctx, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Register successful", "user_id": result.InsertedID})
}

// Login authenticates by username or email and returns a 30-day token.
func (ct *Controller) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := ct.store.Users.FindOne(ctx, bson.M{
		"$or": []bson.M{{"username": input.Username}, {"email": input.Username}},
	}).Decode(&user)
	if err != nil || !checkPasswordHash(input.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := ct.generateJWT(user.ID.Hex(), "user", userTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"UserInformation": user, "token": token})
}

// AdminLogin authenticates an admin account and returns a short-lived token.
func (ct *Controller) AdminLogin(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := ct.store.Users.FindOne(ctx, bson.M{"username": input.Username}).Decode(&user)
	if err != nil || !user.IsAdmin || !checkPasswordHash(input.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := ct.generateJWT(user.ID.Hex(), "admin", adminTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"UserInformation": user, "token": token})
}
