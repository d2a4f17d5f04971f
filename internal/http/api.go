package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blog-platform/internal/auth"
	"blog-platform/internal/domain"
	"blog-platform/internal/service"
	"blog-platform/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	posts     service.PostService
	comments  service.CommentService
	storage   storage.Service
	bucket    string
	keyPrefix string
	tokens    *auth.TokenManager
	logger    *logrus.Logger
}

func NewHandler(
	users service.UserService,
	posts service.PostService,
	comments service.CommentService,
	store storage.Service,
	bucket, keyPrefix string,
	tokens *auth.TokenManager,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		users:     users,
		posts:     posts,
		comments:  comments,
		storage:   store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
		tokens:    tokens,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)

		api.GET("/posts", h.listPosts)
		api.GET("/posts/:id", h.getPost)
		api.GET("/comments", h.listComments)

		authed := api.Group("", h.requireAuth())
		{
			authed.POST("/posts", h.createPost)
			authed.PUT("/posts/:id", h.updatePost)
			authed.DELETE("/posts/:id", h.deletePost)
			authed.GET("/posts/user/:id", h.listUserPosts)
			authed.POST("/comments", h.createComment)
			authed.DELETE("/comments/:id", h.deleteComment)
			authed.POST("/upload", h.upload)
		}

		admin := api.Group("/admin", h.requireAuth(), h.requireAdmin())
		{
			admin.GET("/users", h.adminListUsers)
			admin.DELETE("/users/:id", h.adminDeleteUser)
			admin.GET("/posts", h.adminListPosts)
			admin.DELETE("/posts/:id", h.adminDeletePost)
			admin.GET("/comments", h.adminListComments)
			admin.DELETE("/comments/:id", h.adminDeleteComment)
			admin.GET("/storage/objects", h.adminListObjects)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// respondError maps service sentinels onto the HTTP taxonomy. Anything
// unrecognized is logged and reported as a generic internal error.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, service.ErrAdminProtected):
		c.JSON(http.StatusForbidden, gin.H{"error": "admin accounts cannot be deleted"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Image     string `json:"image,omitempty"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type PostResponse struct {
	ID           int64               `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Content      string              `json:"content"`
	ImageURL     string              `json:"image_url,omitempty"`
	Author       *domain.UserSummary `json:"author"`
	CommentCount int                 `json:"comment_count"`
	CreatedAt    string              `json:"created_at"`
}

type CommentResponse struct {
	ID        int64               `json:"id"`
	PostID    int64               `json:"post_id"`
	Content   string              `json:"content"`
	Author    *domain.UserSummary `json:"author"`
	Post      *domain.PostSummary `json:"post,omitempty"`
	CreatedAt string              `json:"created_at"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Image:     user.Image,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func postToResponse(post domain.Post) PostResponse {
	return PostResponse{
		ID:           post.ID,
		Title:        post.Title,
		Description:  post.Description,
		Content:      post.Content,
		ImageURL:     post.ImageURL,
		Author:       post.Author,
		CommentCount: post.CommentCount,
		CreatedAt:    post.CreatedAt.Format(time.RFC3339),
	}
}

func commentToResponse(comment domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		Author:    comment.Author,
		Post:      comment.Post,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
	}
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
