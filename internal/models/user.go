package models

// User represents a registered customer or admin.
type User struct {
	ID           string `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name         string `json:"name" gorm:"type:varchar(100)"`
	Email        string `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string `json:"-" gorm:"column:password;type:varchar(255)"` // bcrypt hash, never serialized
	Role         string `json:"role" gorm:"type:varchar(32)"`
}
