package models

import "time"

// CheckIn stores one daily habit check-in. The composite unique index enforces
// at most one record per user, calendar day and check-in type; duplicates must
// be rejected, never overwritten.
type CheckIn struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uk_checkins_user_date_type" json:"user_id"`
	CheckDate time.Time `gorm:"type:date;not null;uniqueIndex:uk_checkins_user_date_type" json:"check_date"`
	CheckType string    `gorm:"size:32;not null;uniqueIndex:uk_checkins_user_date_type" json:"check_type"`
	Notes     string    `gorm:"size:255" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}
