package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/timmy/uthos/internal/domain"
)

// SharedLinkRepository handles download tokens.
type SharedLinkRepository struct {
	db *gorm.DB
}

// NewSharedLinkRepository creates a new SharedLinkRepository.
func NewSharedLinkRepository(db *gorm.DB) *SharedLinkRepository {
	return &SharedLinkRepository{db: db}
}

func (r *SharedLinkRepository) Create(ctx context.Context, link *domain.SharedLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// Get retrieves a link by token, expired or not.
func (r *SharedLinkRepository) Get(ctx context.Context, token string) (*domain.SharedLink, error) {
	var link domain.SharedLink
	if err := r.db.WithContext(ctx).First(&link, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// DeleteExpired removes links that expired before now and reports how many.
func (r *SharedLinkRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.SharedLink{})
	return res.RowsAffected, res.Error
}

// DeleteForBucket removes every link into a bucket.
func (r *SharedLinkRepository) DeleteForBucket(ctx context.Context, dc, bucket string) error {
	return r.db.WithContext(ctx).Where("dc = ? AND bucket = ?", dc, bucket).Delete(&domain.SharedLink{}).Error
}
