package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/gabzin/SerialBoxBot/internal/database/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertUser resolves the directory record for user.TelegramID, creating
// it on first contact. Idempotent on the telegram id; profile fields are
// refreshed on every call. Returns the stored record.
func (r *UserRepository) UpsertUser(ctx context.Context, user *models.User) (*models.User, error) {
	var existing models.User
	err := r.db.WithContext(ctx).First(&existing, "telegram_id = ?", user.TelegramID).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()

	if errors.Is(err, gorm.ErrRecordNotFound) {
		user.CreatedAt = now
		user.UpdatedAt = now
		if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
			return nil, err
		}
		return user, nil
	}

	err = r.db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"username":      user.Username,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"language_code": user.LanguageCode,
		"updated_at":    now,
	}).Error
	if err != nil {
		return nil, err
	}

	return &existing, nil
}

func (r *UserRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "telegram_id = ?", telegramID).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}
