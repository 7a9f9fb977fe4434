package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodtasker/internal/models"

	"gorm.io/gorm"
)

// GORMTokenRepository is a GORM implementation of TokenRepository.
type GORMTokenRepository struct {
	db *gorm.DB
}

// NewGORMTokenRepository creates a new instance of GORMTokenRepository.
func NewGORMTokenRepository(db *gorm.DB) *GORMTokenRepository {
	return &GORMTokenRepository{db: db}
}

// Create stores an issued access token.
func (r *GORMTokenRepository) Create(ctx context.Context, token *models.AccessToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	return nil
}

// FindValid looks up a token that expires after now.
func (r *GORMTokenRepository) FindValid(ctx context.Context, token string, now time.Time) (*models.AccessToken, error) {
	var at models.AccessToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND expires > ?", token, now.UTC()).
		First(&at).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("access token: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up access token: %w", err)
	}
	return &at, nil
}
