package domain

import "time"

// Account is the credit ledger row for one user, keyed by email. Credits are
// whole units; one credit buys one answered question.
type Account struct {
	Email              string    `gorm:"primaryKey" json:"email"`
	Credits            int64     `gorm:"not null;default:0" json:"credits"`
	Plan               string    `gorm:"not null;default:'free'" json:"plan"`
	BillingCustomerRef string    `gorm:"column:billing_customer_ref" json:"billing_customer_ref,omitempty"`
	CreatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Account) TableName() string { return "profiles" }

// Balance is the read-model returned by ledger queries.
type Balance struct {
	Credits int64  `json:"credits"`
	Plan    string `json:"plan"`
}
