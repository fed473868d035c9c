package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/timmy/uthos/internal/domain"
)

// AccessKeyRepository handles access key records.
type AccessKeyRepository struct {
	db *gorm.DB
}

// NewAccessKeyRepository creates a new AccessKeyRepository.
func NewAccessKeyRepository(db *gorm.DB) *AccessKeyRepository {
	return &AccessKeyRepository{db: db}
}

// Create inserts an access key. Names are unique per data center.
func (r *AccessKeyRepository) Create(ctx context.Context, key *domain.AccessKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

// GetByName retrieves a key by its data center and name.
func (r *AccessKeyRepository) GetByName(ctx context.Context, dc, name string) (*domain.AccessKey, error) {
	var key domain.AccessKey
	if err := r.db.WithContext(ctx).First(&key, "dc = ? AND name = ?", dc, name).Error; err != nil {
		return nil, err
	}
	return &key, nil
}

// GetByAccessKey retrieves a key by its public access key id.
func (r *AccessKeyRepository) GetByAccessKey(ctx context.Context, accessKey string) (*domain.AccessKey, error) {
	var key domain.AccessKey
	if err := r.db.WithContext(ctx).First(&key, "access_key = ?", accessKey).Error; err != nil {
		return nil, err
	}
	return &key, nil
}

// List returns the keys of a data center ordered by name.
func (r *AccessKeyRepository) List(ctx context.Context, dc string) ([]domain.AccessKey, error) {
	keys := []domain.AccessKey{}
	if err := r.db.WithContext(ctx).
		Where("dc = ?", dc).
		Order("name ASC").
		Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// UpdateStatus enables or disables a key.
func (r *AccessKeyRepository) UpdateStatus(ctx context.Context, dc, name string, status domain.AccessKeyStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.AccessKey{}).
		Where("dc = ? AND name = ?", dc, name).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a key permanently.
func (r *AccessKeyRepository) Delete(ctx context.Context, dc, name string) error {
	res := r.db.WithContext(ctx).Where("dc = ? AND name = ?", dc, name).Delete(&domain.AccessKey{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteWithGrants removes a key and every bucket grant it holds in one
// transaction. Grants stay in place when the key row is missing.
func (r *AccessKeyRepository) DeleteWithGrants(ctx context.Context, dc, name, accessKey string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewBucketRepository(tx).DeleteGrantsForKey(ctx, dc, accessKey); err != nil {
			return err
		}
		res := tx.Where("dc = ? AND name = ?", dc, name).Delete(&domain.AccessKey{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
