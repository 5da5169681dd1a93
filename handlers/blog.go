package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/blog"
)

type CreateBlogRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type SaveDraftRequest struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type EditBlogRequest struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
	Status  *string  `json:"status"`
}

type AddTagsRequest struct {
	Tags []string `json:"tags"`
}

// respondBlogError maps the core's error taxonomy onto HTTP statuses.
// Mutations report missing and foreign-owned blogs identically.
func respondBlogError(c *gin.Context, op string, err error) {
	var verr *blog.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "field": verr.Field, "message": verr.Message})
	case errors.Is(err, blog.ErrNoDraft):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No auto-draft found"})
	case errors.Is(err, blog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Blog not found"})
	case errors.Is(err, blog.ErrNotFoundOrUnauthorized):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Blog not found or unauthorized"})
	case errors.Is(err, blog.ErrDraftExists):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Another draft already exists"})
	default:
		log.Printf("[%s] error: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
	}
}

// CreateBlog publishes the caller's content. When the caller holds an
// auto-saved draft it is promoted in place, keeping its id.
func CreateBlog(c *gin.Context) {
	var req CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := blogService.Publish(ctx, userID, req.Title, req.Content, req.Tags)
	if err != nil {
		respondBlogError(c, "CreateBlog", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Blog created successfully",
		"blog":    b,
	})
}

// AutoSaveDraft never rejects content: omitted fields become empty, an
// absent body counts as all fields omitted, and repeated calls keep
// overwriting the same draft.
func AutoSaveDraft(c *gin.Context) {
	var req CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := blogService.AutoSave(ctx, userID, req.Title, req.Content, req.Tags)
	if err != nil {
		respondBlogError(c, "AutoSaveDraft", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Auto-draft saved successfully",
		"blog":    b,
	})
}

func FetchAutoDraft(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := blogService.FetchDraft(ctx, userID)
	if err != nil {
		respondBlogError(c, "FetchAutoDraft", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "blog": b})
}

func SaveDraft(c *gin.Context) {
	var req SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var blogID primitive.ObjectID
	if req.ID != "" {
		var err error
		blogID, err = primitive.ObjectIDFromHex(req.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid blog ID"})
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := blogService.SaveDraft(ctx, userID, blogID, req.Title, req.Content, req.Tags)
	if err != nil {
		respondBlogError(c, "SaveDraft", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "blog": b})
}

func EditBlog(c *gin.Context) {
	blogID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid blog ID"})
		return
	}

	var req EditBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := blogService.Edit(ctx, userID, blogID, blog.EditFields{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Status:  req.Status,
	})
	if err != nil {
		respondBlogError(c, "EditBlog", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Blog updated successfully",
		"blog":    b,
	})
}

func AddTags(c *gin.Context) {
	blogID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid blog ID"})
		return
	}

	var req AddTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := blogService.AddTags(ctx, userID, blogID, req.Tags)
	if err != nil {
		respondBlogError(c, "AddTags", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Tags added successfully",
		"blog":    b,
	})
}

func DeleteBlog(c *gin.Context) {
	blogID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid blog ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := blogService.Delete(ctx, userID, blogID); err != nil {
		respondBlogError(c, "DeleteBlog", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Blog deleted successfully"})
}

// GetBlog is a public read with the author resolved to its projection.
func GetBlog(c *gin.Context) {
	blogID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid blog ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := blogService.Get(ctx, blogID)
	if err != nil {
		respondBlogError(c, "GetBlog", err)
		return
	}

	if b.AuthorInfo != nil && b.AuthorInfo.Avatar == "" {
		b.AuthorInfo.Avatar = fallbackAvatar
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Blog retrieved successfully",
		"blog":    b,
	})
}

func GetMyBlogs(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	blogs, err := blogService.ListByAuthor(ctx, userID)
	if err != nil {
		respondBlogError(c, "GetMyBlogs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Blogs retrieved successfully",
		"blogs":   blogs,
	})
}

func ListBlogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	blogs, pagination, err := blogService.ListPublished(ctx, page, limit)
	if err != nil {
		respondBlogError(c, "ListBlogs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Blogs retrieved successfully",
		"blogs":      blogs,
		"pagination": pagination,
	})
}
