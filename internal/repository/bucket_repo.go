package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/timmy/uthos/internal/domain"
)

// BucketRepository stores buckets and the access key grants on them.
type BucketRepository struct {
	db *gorm.DB
}

// NewBucketRepository creates a new BucketRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *BucketRepository: repository instance bound to db.
func NewBucketRepository(db *gorm.DB) *BucketRepository {
	return &BucketRepository{db: db}
}

// Create inserts a bucket. A duplicate (dc, name) fails with a unique
// constraint error.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - bucket: bucket record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *BucketRepository) Create(ctx context.Context, bucket *domain.Bucket) error {
	return r.db.WithContext(ctx).Create(bucket).Error
}

// Get retrieves one bucket.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - dc: data center slug.
//   - name: bucket name.
// Returns:
//   - *domain.Bucket: bucket record if found.
//   - error: gorm.ErrRecordNotFound when missing.
func (r *BucketRepository) Get(ctx context.Context, dc, name string) (*domain.Bucket, error) {
	var bucket domain.Bucket
	if err := r.db.WithContext(ctx).First(&bucket, "dc = ? AND name = ?", dc, name).Error; err != nil {
		return nil, err
	}
	return &bucket, nil
}

// Exists checks whether a bucket exists.
func (r *BucketRepository) Exists(ctx context.Context, dc, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Bucket{}).
		Where("dc = ? AND name = ?", dc, name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns the buckets of a data center ordered by name.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - dc: data center slug.
// Returns:
//   - []domain.Bucket: buckets, possibly empty.
//   - error: non-nil if the query fails.
func (r *BucketRepository) List(ctx context.Context, dc string) ([]domain.Bucket, error) {
	buckets := []domain.Bucket{}
	if err := r.db.WithContext(ctx).
		Where("dc = ?", dc).
		Order("name ASC").
		Find(&buckets).Error; err != nil {
		return nil, err
	}
	return buckets, nil
}

// UpdatePolicy sets the policy of a bucket.
func (r *BucketRepository) UpdatePolicy(ctx context.Context, dc, name string, policy domain.BucketPolicy) error {
	res := r.db.WithContext(ctx).Model(&domain.Bucket{}).
		Where("dc = ? AND name = ?", dc, name).
		Update("policy", policy)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a bucket together with its grants.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - dc: data center slug.
//   - name: bucket name.
// Returns:
//   - error: gorm.ErrRecordNotFound when the bucket did not exist.
func (r *BucketRepository) Delete(ctx context.Context, dc, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("dc = ? AND name = ?", dc, name).Delete(&domain.Bucket{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("dc = ? AND bucket = ?", dc, name).Delete(&domain.BucketGrant{}).Error
	})
}

// UpsertGrant creates or replaces the permission of an access key on a bucket.
func (r *BucketRepository) UpsertGrant(ctx context.Context, grant *domain.BucketGrant) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dc"}, {Name: "bucket"}, {Name: "access_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"level", "updated_at"}),
	}).Create(grant).Error
}

// DeleteGrant revokes any permission of an access key on a bucket.
func (r *BucketRepository) DeleteGrant(ctx context.Context, dc, bucket, accessKey string) error {
	return r.db.WithContext(ctx).
		Where("dc = ? AND bucket = ? AND access_key = ?", dc, bucket, accessKey).
		Delete(&domain.BucketGrant{}).Error
}

// GetGrant returns the grant of an access key on a bucket.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - dc: data center slug.
//   - bucket: bucket name.
//   - accessKey: public access key id.
// Returns:
//   - *domain.BucketGrant: grant if one exists.
//   - error: gorm.ErrRecordNotFound when the key holds no grant.
func (r *BucketRepository) GetGrant(ctx context.Context, dc, bucket, accessKey string) (*domain.BucketGrant, error) {
	var grant domain.BucketGrant
	if err := r.db.WithContext(ctx).
		First(&grant, "dc = ? AND bucket = ? AND access_key = ?", dc, bucket, accessKey).Error; err != nil {
		return nil, err
	}
	return &grant, nil
}

// ListGrants returns every grant on a bucket.
func (r *BucketRepository) ListGrants(ctx context.Context, dc, bucket string) ([]domain.BucketGrant, error) {
	grants := []domain.BucketGrant{}
	if err := r.db.WithContext(ctx).
		Where("dc = ? AND bucket = ?", dc, bucket).
		Order("access_key ASC").
		Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

// DeleteGrantsForKey removes the grants of an access key across a data center.
func (r *BucketRepository) DeleteGrantsForKey(ctx context.Context, dc, accessKey string) error {
	return r.db.WithContext(ctx).
		Where("dc = ? AND access_key = ?", dc, accessKey).
		Delete(&domain.BucketGrant{}).Error
}
