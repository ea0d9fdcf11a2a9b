package seed

import (
	"time"

	"gorm.io/gorm"
)

// EnsureDemoData provisions a demo account and the launch coupon for local
// development. Inserts are conditional, so reruns are harmless.
func EnsureDemoData(db *gorm.DB) error {
	now := time.Now().UTC()

	if err := db.Exec(`
		INSERT INTO profiles (email, credits, plan, billing_customer_ref, created_at, updated_at)
		VALUES (?, ?, ?, '', ?, ?)
		ON CONFLICT (email) DO NOTHING
	`, "demo@lexora.app", int64(50), "beta", now, now).Error; err != nil {
		return err
	}

	return db.Exec(`
		INSERT INTO coupons (code, max_uses, current_uses, credits_bonus, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?, ?)
		ON CONFLICT (code) DO NOTHING
	`, "LEXORA10", int64(100), int64(10), now, now).Error
}
