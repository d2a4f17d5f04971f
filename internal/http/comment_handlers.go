package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"blog-platform/internal/service"
)

type commentRequest struct {
	PostID  int64  `json:"post_id"`
	Content string `json:"content"`
}

func (h *Handler) listComments(c *gin.Context) {
	postIDStr := c.Query("postId")
	if postIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "postId query parameter is required"})
		return
	}
	postID, err := strconv.ParseInt(postIDStr, 10, 64)
	if err != nil || postID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid postId"})
		return
	}

	comments, err := h.comments.ListByPost(c.Request.Context(), postID)
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

func (h *Handler) createComment(c *gin.Context) {
	principal := currentPrincipal(c)

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.comments.CreateComment(c.Request.Context(), principal.ID, service.CreateCommentInput{
		PostID:  req.PostID,
		Content: req.Content,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, commentToResponse(*comment))
}

func (h *Handler) deleteComment(c *gin.Context) {
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
