package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrEmptyMessage = errors.New("empty_message")
)

// ChatRecord is one answered question. Cache hits are served before any
// history write, so every record here corresponds to a provider call and
// exactly one debited credit.
type ChatRecord struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Email       string       `gorm:"index" json:"email"`
	Question    string       `gorm:"type:text" json:"question"`
	Answer      string       `gorm:"type:text" json:"answer"`
	Model       string       `json:"model"`
	Provider    string       `json:"provider"`
	CreditsUsed int64        `json:"credits_used"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (ChatRecord) TableName() string {
	return "chat_history"
}

type AskRequest struct {
	Email    string
	Message  string
	Model    string
	UseCache bool
}

type AskResponse struct {
	Answer           string
	Model            string
	Provider         string
	Cached           bool
	CreditsRemaining int64
}

type QuestionCount struct {
	Question string `json:"question"`
	Count    int64  `json:"count"`
}

type Service interface {
	// Ask answers a question, debiting exactly one credit when and only
	// when a provider produced the answer. Cache hits are free.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
	History(ctx context.Context, email string, limit int) ([]ChatRecord, error)
}
