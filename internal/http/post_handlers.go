package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"blog-platform/internal/auth"
	"blog-platform/internal/service"
)

type postRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	ImageURL    string `json:"image_url"`
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) listPosts(c *gin.Context) {
	posts, err := h.posts.ListPosts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) createPost(c *gin.Context) {
	principal := currentPrincipal(c)

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), principal.ID, service.CreatePostInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, postToResponse(*post))
}

func (h *Handler) updatePost(c *gin.Context) {
	principal := currentPrincipal(c)

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.posts.UpdatePost(c.Request.Context(), *principal, id, service.UpdatePostInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) deletePost(c *gin.Context) {
	principal := currentPrincipal(c)

	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.posts.DeletePost(c.Request.Context(), *principal, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) listUserPosts(c *gin.Context) {
	principal := currentPrincipal(c)

	id, ok := pathID(c)
	if !ok {
		return
	}

	// users may only list their own posts
	if decision := auth.RequireOwner(principal, id); !applyDecision(c, decision) {
		return
	}

	posts, err := h.posts.ListPostsByAuthor(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	c.JSON(http.StatusOK, resp)
}
