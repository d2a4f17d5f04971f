package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) adminListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) adminDeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) adminListPosts(c *gin.Context) {
	posts, err := h.posts.ListAllPosts(c.Request.Context())
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

func (h *Handler) adminDeletePost(c *gin.Context) {
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

func (h *Handler) adminListComments(c *gin.Context) {
	comments, err := h.comments.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]CommentResponse, len(comments))
	for i := range comments {
		resp[i] = commentToResponse(comments[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) adminDeleteComment(c *gin.Context) {
	principal := currentPrincipal(c)

	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.comments.DeleteComment(c.Request.Context(), *principal, id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) adminListObjects(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}

	prefix := c.Query("prefix")
	objects, err := h.storage.ListObjects(c.Request.Context(), h.bucket, prefix)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}
