package domain

import "time"

// APIKey stores a hashed admin credential. The plaintext is shown once, at creation.
type APIKey struct {
	ID         int64      `gorm:"primaryKey;autoIncrement:false"`
	KeyID      string     `gorm:"column:key_id;type:varchar(64);not null;uniqueIndex:ux_api_keys_key_id"`
	Name       string     `gorm:"type:varchar(255);not null"`
	KeyHash    string     `gorm:"column:key_hash;type:varchar(64);not null;uniqueIndex:ux_api_keys_key_hash"`
	IsActive   bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time  `gorm:"not null"`
	UpdatedAt  time.Time  `gorm:"not null"`
	LastUsedAt *time.Time `gorm:"column:last_used_at"`
}

// TableName sets the database table name.
func (APIKey) TableName() string { return "api_keys" }
