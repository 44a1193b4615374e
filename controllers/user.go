package controllers

import (
	"context"
	"net/http"
	"time"

	"bookhaven/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

type editUserInput struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// UserInfo returns the authenticated user's profile.
func (ct *Controller) UserInfo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := ct.store.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// EditUser patches profile fields.
func (ct *Controller) EditUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input editUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	set := bson.M{}
	if input.Firstname != "" {
		set["firstname"] = input.Firstname
	}
	if input.Lastname != "" {
		set["lastname"] = input.Lastname
	}
	if input.Username != "" {
		set["username"] = input.Username
	}
	if input.Email != "" {
		set["email"] = input.Email
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(set) > 0 {
		if _, err := ct.store.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
	}

	var user models.User
	if err := ct.store.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "UserInformation": user})
}

// UploadUserImage replaces the profile image in GCS.
func (ct *Controller) UploadUserImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file required"})
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var user models.User
	if err := ct.store.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	name, url, err := ct.uploader.Upload(ctx, "users", header.Filename, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}
	if user.Image.Name != "" {
		ct.uploader.Delete(ctx, user.Image.Name)
	}

	user.Image = models.FileRef{Name: name, URL: url}
	if _, err := ct.store.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"image": user.Image}}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image updated", "user": user})
}

// DeleteUserImage removes the profile image from GCS and the document.
func (ct *Controller) DeleteUserImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var user models.User
	if err := ct.store.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := ct.uploader.Delete(ctx, user.Image.Name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete image"})
		return
	}

	user.Image = models.FileRef{}
	if _, err := ct.store.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"image": user.Image}}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted", "user": user})
}
