package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	contentdomain "github.com/lexorahq/lexora/internal/content/domain"
)

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

func (s *Server) HandleBlogCreate(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	post, err := s.contentSvc.Create(c.Request.Context(), contentdomain.CreatePostRequest{
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
		Author:  strings.TrimSpace(req.Author),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": post})
}

func (s *Server) HandleBlogList(c *gin.Context) {
	posts, err := s.contentSvc.Latest(c.Request.Context(), parseLimit(c.Query("limit"), 10, 50))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": posts})
}

func (s *Server) HandleBlogGet(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	post, err := s.contentSvc.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": post})
}
