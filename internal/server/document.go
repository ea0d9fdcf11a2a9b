package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	documentdomain "github.com/lexorahq/lexora/internal/document/domain"
)

const maxDocumentBytes = 5 << 20

func (s *Server) HandleDocumentUpload(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	if email == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		AbortWithError(c, documentdomain.ErrEmptyFile)
		return
	}
	if fileHeader.Size > maxDocumentBytes {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		AbortWithError(c, documentdomain.ErrEmptyFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxDocumentBytes+1))
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}
	if len(data) > maxDocumentBytes {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.documents.Analyze(c.Request.Context(), documentdomain.AnalyzeRequest{
		Email:       email,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"document_id": result.DocumentID.String(),
		"analysis":    result.Analysis,
	})
}

func (s *Server) HandleDocumentList(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	docs, err := s.documents.ListByEmail(c.Request.Context(), email, parseLimit(c.Query("limit"), 20, 100))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": docs})
}
