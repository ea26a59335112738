package models

import "time"

// AIConfig stores a user's connection to a chat-completion provider. APIKey is
// write-only: it is accepted on create/update and never serialized back.
type AIConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Provider  string    `gorm:"size:32;not null" json:"provider"`
	Model     string    `gorm:"size:64;not null" json:"model"`
	APIKey    string    `gorm:"size:255" json:"-"`
	BaseURL   string    `gorm:"size:255" json:"base_url"`
	IsDefault bool      `gorm:"default:false" json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}
