package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/blog"
)

// Shared constants and wiring used across handler files.
const fallbackAvatar = "https://upload.wikimedia.org/wikipedia/commons/8/89/Portrait_Placeholder.png"

var blogService *blog.Service

// SetBlogService wires the blog service the handlers delegate to.
func SetBlogService(s *blog.Service) {
	blogService = s
}

// currentUserID reads the authenticated user id set by the JWT middleware.
// A false return means the response has already been written.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return userID, true
}
