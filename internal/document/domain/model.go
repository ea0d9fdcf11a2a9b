package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrEmptyFile       = errors.New("empty_file")
	ErrUnsupportedType = errors.New("unsupported_type")
	ErrNoText          = errors.New("no_text")
)

// Document is an uploaded piece of casework plus the reviewer's analysis.
type Document struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Email     string       `gorm:"index" json:"email"`
	Filename  string       `json:"filename"`
	Content   string       `gorm:"type:text" json:"content"`
	Analysis  string       `gorm:"type:text" json:"analysis"`
	Kind      string       `json:"kind"`
	CreatedAt time.Time    `json:"created_at"`
}

func (Document) TableName() string {
	return "documents"
}

// Extractor turns an uploaded file into plain text. PDF and OCR pipelines
// live outside this service; anything that can produce text plugs in here.
type Extractor interface {
	Supports(contentType string) bool
	Extract(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

type AnalyzeRequest struct {
	Email       string
	Filename    string
	ContentType string
	Data        []byte
}

type AnalyzeResult struct {
	DocumentID snowflake.ID
	Analysis   string
}

type Service interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResult, error)
	ListByEmail(ctx context.Context, email string, limit int) ([]Document, error)
}
