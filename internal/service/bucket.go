package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/timmy/uthos/internal/domain"
	"github.com/timmy/uthos/internal/logger"
	"github.com/timmy/uthos/internal/repository"
	"github.com/timmy/uthos/internal/storage"
)

var bucketNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)

// BucketService handles bucket lifecycle, policies and grants.
type BucketService struct {
	buckets *repository.BucketRepository
	keys    *repository.AccessKeyRepository
	objects *repository.ObjectRepository
	links   *repository.SharedLinkRepository
	storage storage.ObjectStorage
	logger  *logger.Logger
}

// NewBucketService creates a new bucket service.
// Parameters:
//   - buckets, keys, objects, links: metadata repositories.
//   - objectStorage: blob backend holding file content.
//   - log: logger instance.
// Returns:
//   - *BucketService: initialized service.
func NewBucketService(
	buckets *repository.BucketRepository,
	keys *repository.AccessKeyRepository,
	objects *repository.ObjectRepository,
	links *repository.SharedLinkRepository,
	objectStorage storage.ObjectStorage,
	log *logger.Logger,
) *BucketService {
	return &BucketService{
		buckets: buckets,
		keys:    keys,
		objects: objects,
		links:   links,
		storage: objectStorage,
		logger:  log,
	}
}

// CreateBucketInput carries the fields of a create request.
type CreateBucketInput struct {
	DC      string `json:"dcslug"`
	Name    string `json:"name"`
	Size    int    `json:"size"`
	Billing string `json:"billing"`
}

// Create validates and stores a new bucket.
func (s *BucketService) Create(ctx context.Context, in CreateBucketInput) (*domain.Bucket, error) {
	in.DC = strings.TrimSpace(in.DC)
	if in.DC == "" {
		return nil, invalid("dcslug is required")
	}
	if !bucketNamePattern.MatchString(in.Name) {
		return nil, invalid("bucket name %q must be 3-63 lowercase letters, digits or hyphens", in.Name)
	}
	if in.Size <= 0 {
		return nil, invalid("size must be positive")
	}

	exists, err := s.buckets.Exists(ctx, in.DC, in.Name)
	if err != nil {
		return nil, translate(err, "bucket")
	}
	if exists {
		return nil, conflict("bucket %s/%s", in.DC, in.Name)
	}

	bucket := &domain.Bucket{
		ID:      uuid.NewString(),
		DC:      in.DC,
		Name:    in.Name,
		SizeGB:  in.Size,
		Billing: in.Billing,
		Policy:  domain.BucketPolicyPrivate,
		Status:  "active",
	}
	if err := s.buckets.Create(ctx, bucket); err != nil {
		return nil, translate(err, "bucket "+in.Name)
	}

	logger.CtxInfo(logger.SetBucket(ctx, in.DC, in.Name), "bucket created: size=%dGB", in.Size)
	return bucket, nil
}

// List returns the buckets of a data center with their file counts.
func (s *BucketService) List(ctx context.Context, dc string) ([]domain.Bucket, error) {
	buckets, err := s.buckets.List(ctx, dc)
	if err != nil {
		return nil, translate(err, "buckets")
	}
	for i := range buckets {
		count, err := s.objects.CountFiles(ctx, dc, buckets[i].Name)
		if err != nil {
			return nil, translate(err, "object count")
		}
		buckets[i].ObjectCount = count
	}
	return buckets, nil
}

// Get returns one bucket with its file count.
func (s *BucketService) Get(ctx context.Context, dc, name string) (*domain.Bucket, error) {
	bucket, err := s.buckets.Get(ctx, dc, name)
	if err != nil {
		return nil, translate(err, "bucket "+dc+"/"+name)
	}
	count, err := s.objects.CountFiles(ctx, dc, name)
	if err != nil {
		return nil, translate(err, "object count")
	}
	bucket.ObjectCount = count
	return bucket, nil
}

// Delete removes a bucket and everything in it: objects, content, shared
// links and grants.
func (s *BucketService) Delete(ctx context.Context, dc, name string) error {
	ctx = logger.SetBucket(ctx, dc, name)
	start := time.Now()

	if _, err := s.buckets.Get(ctx, dc, name); err != nil {
		return translate(err, "bucket "+dc+"/"+name)
	}
	files, err := s.objects.DeleteTree(ctx, dc, name, "")
	if err != nil {
		return translate(err, "bucket objects")
	}
	dropContent(ctx, s.storage, files)

	if err := s.links.DeleteForBucket(ctx, dc, name); err != nil {
		return translate(err, "shared links")
	}
	if err := s.buckets.Delete(ctx, dc, name); err != nil {
		return translate(err, "bucket "+dc+"/"+name)
	}

	logger.With(logger.Fields{}).
		WithCount(len(files)).
		WithDuration(time.Since(start)).
		Info(ctx, "bucket deleted")
	return nil
}

// UpdatePolicy sets the public access policy of a bucket.
func (s *BucketService) UpdatePolicy(ctx context.Context, dc, name, policy string) error {
	p := domain.BucketPolicy(policy)
	switch p {
	case domain.BucketPolicyPublic, domain.BucketPolicyPrivate, domain.BucketPolicyUpload:
	default:
		return invalid("policy %q is not one of public, private, upload", policy)
	}
	if err := s.buckets.UpdatePolicy(ctx, dc, name, p); err != nil {
		return translate(err, "bucket "+dc+"/"+name)
	}
	logger.CtxInfo(logger.SetBucket(ctx, dc, name), "policy set to %s", p)
	return nil
}

// UpdatePermission grants an access key a level on a bucket. accessKey may
// be the public key id or the key's name; level none revokes the grant.
func (s *BucketService) UpdatePermission(ctx context.Context, dc, name, accessKey, level string) error {
	l := domain.PermissionLevel(level)
	switch l {
	case domain.PermissionRead, domain.PermissionWrite, domain.PermissionFull, domain.PermissionNone:
	default:
		return invalid("permission %q is not one of read, write, full, none", level)
	}
	if strings.TrimSpace(accessKey) == "" {
		return invalid("accesskey is required")
	}

	if _, err := s.buckets.Get(ctx, dc, name); err != nil {
		return translate(err, "bucket "+dc+"/"+name)
	}
	key, err := s.resolveKey(ctx, dc, accessKey)
	if err != nil {
		return err
	}

	if l == domain.PermissionNone {
		if err := s.buckets.DeleteGrant(ctx, dc, name, key.AccessKey); err != nil {
			return translate(err, "grant")
		}
	} else if err := s.buckets.UpsertGrant(ctx, &domain.BucketGrant{
		ID:        uuid.NewString(),
		DC:        dc,
		Bucket:    name,
		AccessKey: key.AccessKey,
		Level:     l,
	}); err != nil {
		return translate(err, "grant")
	}

	logger.CtxInfo(logger.SetBucket(ctx, dc, name), "permission of %s set to %s", key.Name, l)
	return nil
}

// Grants lists the permissions held on a bucket.
func (s *BucketService) Grants(ctx context.Context, dc, name string) ([]domain.BucketGrant, error) {
	if _, err := s.buckets.Get(ctx, dc, name); err != nil {
		return nil, translate(err, "bucket "+dc+"/"+name)
	}
	grants, err := s.buckets.ListGrants(ctx, dc, name)
	if err != nil {
		return nil, translate(err, "grants")
	}
	return grants, nil
}

// Authorize checks that p may act on a bucket at the wanted level. Root
// principals may do anything; key principals need a grant in the bucket's
// data center.
func (s *BucketService) Authorize(ctx context.Context, p *Principal, dc, name string, want domain.PermissionLevel) error {
	if p == nil {
		return ErrUnauthorized
	}
	if p.Root {
		return nil
	}
	if p.DC != dc {
		return ErrForbidden
	}
	grant, err := s.buckets.GetGrant(ctx, dc, name, p.AccessKey)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return translate(err, "grant")
	}
	if !grant.Level.Allows(want) {
		return ErrForbidden
	}
	return nil
}

func (s *BucketService) resolveKey(ctx context.Context, dc, ref string) (*domain.AccessKey, error) {
	key, err := s.keys.GetByAccessKey(ctx, ref)
	if err == nil && key.DC == dc {
		return key, nil
	}
	key, err = s.keys.GetByName(ctx, dc, ref)
	if err != nil {
		return nil, translate(err, "access key "+ref)
	}
	return key, nil
}

// dropContent deletes the blobs of removed files. Failures are logged; the
// metadata is already gone.
func dropContent(ctx context.Context, store storage.ObjectStorage, files []domain.Object) {
	for _, f := range files {
		if f.StorageKey == "" {
			continue
		}
		if err := store.Delete(ctx, f.StorageKey); err != nil {
			logger.FromContext(ctx).WithError(err).Warnf("failed to delete content of %s", f.Path)
		}
	}
}
