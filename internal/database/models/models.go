package models

import "time"

// User is the platform's user directory record. TelegramID is the
// external identity; ID is the internal key carried in access tokens.
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TelegramID   int64     `gorm:"uniqueIndex;not null" json:"telegramId"`
	Username     string    `json:"username,omitempty"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	LanguageCode string    `json:"languageCode,omitempty"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
