package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/timmy/uthos/internal/domain"
)

// ObjectRepository stores the file and directory tree of every bucket.
// Content lives in blob storage; rows only point at it via StorageKey.
type ObjectRepository struct {
	db *gorm.DB
}

// NewObjectRepository creates a new ObjectRepository.
func NewObjectRepository(db *gorm.DB) *ObjectRepository {
	return &ObjectRepository{db: db}
}

var objectKey = []clause.Column{{Name: "dc"}, {Name: "bucket"}, {Name: "dir"}, {Name: "name"}}

// Upsert creates a file row or replaces the one at the same path.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - obj: object record; Dir and Name locate it.
// Returns:
//   - error: non-nil if the write fails.
func (r *ObjectRepository) Upsert(ctx context.Context, obj *domain.Object) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: objectKey,
		DoUpdates: clause.AssignmentColumns([]string{
			"type", "size", "content_type", "storage_key", "md5_hash", "updated_at",
		}),
	}).Create(obj).Error
}

// EnsureDirs creates a directory row for dir and each of its ancestors.
// Existing rows are left alone.
func (r *ObjectRepository) EnsureDirs(ctx context.Context, dc, bucket, dir string, newID func() string) error {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return nil
	}
	segments := strings.Split(dir, "/")
	rows := make([]domain.Object, 0, len(segments))
	parent := ""
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		rows = append(rows, domain.Object{
			ID:     newID(),
			DC:     dc,
			Bucket: bucket,
			Dir:    parent,
			Name:   seg,
			Path:   domain.ObjectPath(parent, seg),
			Type:   domain.ObjectTypeDirectory,
		})
		parent = domain.ObjectPath(parent, seg)
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   objectKey,
		DoNothing: true,
	}).Create(&rows).Error
}

// Get retrieves the object at dir/name.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - dc, bucket: the owning bucket.
//   - dir, name: location inside the bucket.
// Returns:
//   - *domain.Object: the row if found.
//   - error: gorm.ErrRecordNotFound when missing.
func (r *ObjectRepository) Get(ctx context.Context, dc, bucket, dir, name string) (*domain.Object, error) {
	var obj domain.Object
	if err := r.db.WithContext(ctx).
		First(&obj, "dc = ? AND bucket = ? AND dir = ? AND name = ?", dc, bucket, dir, name).Error; err != nil {
		return nil, err
	}
	return &obj, nil
}

// ListDir returns the direct children of dir, directories before files.
func (r *ObjectRepository) ListDir(ctx context.Context, dc, bucket, dir string) ([]domain.Object, error) {
	objects := []domain.Object{}
	if err := r.db.WithContext(ctx).
		Where("dc = ? AND bucket = ? AND dir = ?", dc, bucket, strings.Trim(dir, "/")).
		Order("type ASC, name ASC").
		Find(&objects).Error; err != nil {
		return nil, err
	}
	return objects, nil
}

// CountFiles counts the files of a bucket.
func (r *ObjectRepository) CountFiles(ctx context.Context, dc, bucket string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Object{}).
		Where("dc = ? AND bucket = ? AND type = ?", dc, bucket, domain.ObjectTypeFile).
		Count(&count).Error
	return count, err
}

// DeleteFile removes one file row and returns it.
func (r *ObjectRepository) DeleteFile(ctx context.Context, dc, bucket, dir, name string) (*domain.Object, error) {
	var obj domain.Object
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&obj, "dc = ? AND bucket = ? AND dir = ? AND name = ? AND type = ?",
			dc, bucket, dir, name, domain.ObjectTypeFile).Error; err != nil {
			return err
		}
		return tx.Delete(&obj).Error
	})
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

// DeleteTree removes the directory at path and everything below it. The
// removed files are returned so their content can be dropped too.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - dc, bucket: the owning bucket.
//   - path: directory path; "" clears the whole bucket.
// Returns:
//   - []domain.Object: file rows that were removed.
//   - error: gorm.ErrRecordNotFound when path is not a directory.
func (r *ObjectRepository) DeleteTree(ctx context.Context, dc, bucket, path string) ([]domain.Object, error) {
	path = strings.Trim(path, "/")
	files := []domain.Object{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := tx.Where("dc = ? AND bucket = ?", dc, bucket)
		if path != "" {
			parent, name := splitPath(path)
			var dir domain.Object
			if err := tx.First(&dir, "dc = ? AND bucket = ? AND dir = ? AND name = ? AND type = ?",
				dc, bucket, parent, name, domain.ObjectTypeDirectory).Error; err != nil {
				return err
			}
			if err := tx.Delete(&dir).Error; err != nil {
				return err
			}
			scope = scope.Where(`(dir = ? OR dir LIKE ? ESCAPE '\')`, path, escapeLike(path)+"/%")
		}

		if err := scope.Session(&gorm.Session{}).
			Where("type = ?", domain.ObjectTypeFile).
			Find(&files).Error; err != nil {
			return err
		}
		return scope.Session(&gorm.Session{}).Delete(&domain.Object{}).Error
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func splitPath(p string) (dir, name string) {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return "", p
	}
	return p[:idx], p[idx+1:]
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
