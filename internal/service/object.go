package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/timmy/uthos/internal/domain"
	"github.com/timmy/uthos/internal/logger"
	"github.com/timmy/uthos/internal/repository"
	"github.com/timmy/uthos/internal/storage"
	"github.com/timmy/uthos/objectstorage"
)

// sniffLen is how much of an upload is read to guess a missing content type.
const sniffLen = 3072

// ObjectConfig holds configuration for the object service.
type ObjectConfig struct {
	// PublicURL prefixes shared links, e.g. http://localhost:8080/v2.
	PublicURL string
}

// ObjectService handles files, directories and shared links inside buckets.
type ObjectService struct {
	buckets   *repository.BucketRepository
	objects   *repository.ObjectRepository
	links     *repository.SharedLinkRepository
	storage   storage.ObjectStorage
	logger    *logger.Logger
	publicURL string
	now       func() time.Time
}

// NewObjectService creates a new object service.
// Parameters:
//   - buckets, objects, links: metadata repositories.
//   - objectStorage: blob backend holding file content.
//   - log: logger instance.
//   - cfg: object service configuration.
// Returns:
//   - *ObjectService: initialized service.
func NewObjectService(
	buckets *repository.BucketRepository,
	objects *repository.ObjectRepository,
	links *repository.SharedLinkRepository,
	objectStorage storage.ObjectStorage,
	log *logger.Logger,
	cfg *ObjectConfig,
) *ObjectService {
	var publicURL string
	if cfg != nil {
		publicURL = strings.TrimSuffix(cfg.PublicURL, "/")
	}
	return &ObjectService{
		buckets:   buckets,
		objects:   objects,
		links:     links,
		storage:   objectStorage,
		logger:    log,
		publicURL: publicURL,
		now:       time.Now,
	}
}

// UploadInput is one file to store.
type UploadInput struct {
	DC          string
	Bucket      string
	Dir         string
	Name        string
	Content     io.Reader
	Size        int64
	ContentType string
}

// Upload stores a file at Dir/Name, creating missing directories and
// replacing a file already there.
func (s *ObjectService) Upload(ctx context.Context, in UploadInput) (*domain.Object, error) {
	ctx = logger.SetBucket(ctx, in.DC, in.Bucket)
	start := time.Now()

	dir := strings.Trim(in.Dir, "/")
	if err := validName(in.Name); err != nil {
		return nil, err
	}
	if err := validDir(dir); err != nil {
		return nil, err
	}
	if err := s.requireBucket(ctx, in.DC, in.Bucket); err != nil {
		return nil, err
	}
	if err := s.checkDirs(ctx, in.DC, in.Bucket, dir); err != nil {
		return nil, err
	}
	existing, err := s.objects.Get(ctx, in.DC, in.Bucket, dir, in.Name)
	if err == nil && existing.IsDir() {
		return nil, conflict("%s is a directory", existing.Path)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translate(err, "object")
	}

	content, contentType, err := sniff(in.Content, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	objPath := domain.ObjectPath(dir, in.Name)
	key := domain.StorageKey(in.DC, in.Bucket, objPath)
	hash := md5.New()
	if err := s.storage.Upload(ctx, key, io.TeeReader(content, hash), in.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", objPath, err)
	}

	if err := s.objects.EnsureDirs(ctx, in.DC, in.Bucket, dir, uuid.NewString); err != nil {
		return nil, translate(err, "directories")
	}
	obj := &domain.Object{
		ID:          uuid.NewString(),
		DC:          in.DC,
		Bucket:      in.Bucket,
		Dir:         dir,
		Name:        in.Name,
		Path:        objPath,
		Type:        domain.ObjectTypeFile,
		Size:        in.Size,
		ContentType: contentType,
		StorageKey:  key,
		MD5Hash:     hex.EncodeToString(hash.Sum(nil)),
	}
	if err := s.objects.Upsert(ctx, obj); err != nil {
		if existing == nil {
			_ = s.storage.Delete(ctx, key)
		}
		return nil, translate(err, "object "+objPath)
	}

	logger.With(logger.Fields{logger.FieldObject: objPath}).
		WithSize(in.Size).
		WithDuration(time.Since(start)).
		Info(ctx, "object uploaded")
	return obj, nil
}

// CreateDirectory creates dirPath and any missing parents.
func (s *ObjectService) CreateDirectory(ctx context.Context, dc, bucket, dirPath string) error {
	dir := strings.Trim(dirPath, "/")
	if dir == "" {
		return invalid("path is required")
	}
	if err := validDir(dir); err != nil {
		return err
	}
	if err := s.requireBucket(ctx, dc, bucket); err != nil {
		return err
	}
	if err := s.checkDirs(ctx, dc, bucket, dir); err != nil {
		return err
	}
	if err := s.objects.EnsureDirs(ctx, dc, bucket, dir, uuid.NewString); err != nil {
		return translate(err, "directory "+dir)
	}
	logger.CtxInfo(logger.SetBucket(ctx, dc, bucket), "directory created: %s", dir)
	return nil
}

// List returns the entries directly inside dir ("" for the bucket root).
func (s *ObjectService) List(ctx context.Context, dc, bucket, dir string) ([]domain.Object, error) {
	if err := s.requireBucket(ctx, dc, bucket); err != nil {
		return nil, err
	}
	dir = strings.Trim(dir, "/")
	if dir != "" {
		parent, name := splitPath(dir)
		d, err := s.objects.Get(ctx, dc, bucket, parent, name)
		if err != nil {
			return nil, translate(err, "directory "+dir)
		}
		if !d.IsDir() {
			return nil, invalid("%s is not a directory", dir)
		}
	}
	objects, err := s.objects.ListDir(ctx, dc, bucket, dir)
	if err != nil {
		return nil, translate(err, "objects")
	}
	return objects, nil
}

// Delete removes the file at objectPath or, when it names a directory, the
// directory and everything below it.
func (s *ObjectService) Delete(ctx context.Context, dc, bucket, objectPath string) error {
	ctx = logger.SetBucket(ctx, dc, bucket)
	objectPath = strings.Trim(objectPath, "/")
	if objectPath == "" {
		return invalid("path is required")
	}
	if err := s.requireBucket(ctx, dc, bucket); err != nil {
		return err
	}

	dir, name := splitPath(objectPath)
	file, err := s.objects.DeleteFile(ctx, dc, bucket, dir, name)
	if err == nil {
		dropContent(ctx, s.storage, []domain.Object{*file})
		logger.CtxInfo(ctx, "object deleted: %s", objectPath)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return translate(err, "object "+objectPath)
	}

	files, err := s.objects.DeleteTree(ctx, dc, bucket, objectPath)
	if err != nil {
		return translate(err, "object "+objectPath)
	}
	dropContent(ctx, s.storage, files)
	logger.With(logger.Fields{logger.FieldObject: objectPath}).
		WithCount(len(files)).
		Info(ctx, "directory deleted")
	return nil
}

// ShareResult is a time-bounded download link.
type ShareResult struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Share issues a download link for a file. expire follows the link lifetime
// grammar, e.g. 1h, 7d or never.
func (s *ObjectService) Share(ctx context.Context, dc, bucket, objectPath, expire string) (*ShareResult, error) {
	objectPath = strings.Trim(objectPath, "/")
	if objectPath == "" {
		return nil, invalid("path is required")
	}
	ttl, err := objectstorage.ParseExpiry(expire)
	if err != nil {
		return nil, invalid("expire: %v", err)
	}
	if err := s.requireBucket(ctx, dc, bucket); err != nil {
		return nil, err
	}
	if _, err := s.file(ctx, dc, bucket, objectPath); err != nil {
		return nil, err
	}

	link := &domain.SharedLink{
		Token:      strings.ReplaceAll(uuid.NewString(), "-", ""),
		DC:         dc,
		Bucket:     bucket,
		ObjectPath: objectPath,
		ExpiresAt:  s.now().Add(ttl).UTC(),
	}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, translate(err, "shared link")
	}

	logger.CtxDebug(logger.SetBucket(ctx, dc, bucket), "shared %s until %s", objectPath, link.ExpiresAt.Format(time.RFC3339))
	return &ShareResult{
		URL:       s.publicURL + "/shared/" + link.Token,
		ExpiresAt: link.ExpiresAt,
	}, nil
}

// Open resolves a shared link token to the file and its content. The caller
// closes the reader.
func (s *ObjectService) Open(ctx context.Context, token string) (*domain.Object, io.ReadCloser, error) {
	link, err := s.links.Get(ctx, token)
	if err != nil {
		return nil, nil, translate(err, "shared link")
	}
	if link.Expired(s.now()) {
		return nil, nil, ErrExpired
	}

	obj, err := s.file(ctx, link.DC, link.Bucket, link.ObjectPath)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.Download(ctx, obj.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, notFound("content of %s", obj.Path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", obj.Path, err)
	}
	return obj, rc, nil
}

// PurgeExpiredLinks drops links that have expired.
func (s *ObjectService) PurgeExpiredLinks(ctx context.Context) (int64, error) {
	n, err := s.links.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, translate(err, "shared links")
	}
	if n > 0 {
		logger.With(logger.Fields{}).WithCount(int(n)).Debug(ctx, "expired links purged")
	}
	return n, nil
}

func (s *ObjectService) requireBucket(ctx context.Context, dc, bucket string) error {
	exists, err := s.buckets.Exists(ctx, dc, bucket)
	if err != nil {
		return translate(err, "bucket")
	}
	if !exists {
		return notFound("bucket %s/%s", dc, bucket)
	}
	return nil
}

func (s *ObjectService) file(ctx context.Context, dc, bucket, objectPath string) (*domain.Object, error) {
	dir, name := splitPath(objectPath)
	obj, err := s.objects.Get(ctx, dc, bucket, dir, name)
	if err != nil {
		return nil, translate(err, "object "+objectPath)
	}
	if obj.IsDir() {
		return nil, invalid("%s is a directory", objectPath)
	}
	return obj, nil
}

// checkDirs fails when a segment of dir is already taken by a file.
func (s *ObjectService) checkDirs(ctx context.Context, dc, bucket, dir string) error {
	parent := ""
	for _, seg := range strings.Split(dir, "/") {
		if seg == "" {
			continue
		}
		obj, err := s.objects.Get(ctx, dc, bucket, parent, seg)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil
		case err != nil:
			return translate(err, "directory")
		case !obj.IsDir():
			return conflict("%s is a file", obj.Path)
		}
		parent = domain.ObjectPath(parent, seg)
	}
	return nil
}

// sniff fills in a missing or generic content type from the first bytes.
func sniff(r io.Reader, contentType string) (io.Reader, string, error) {
	if contentType != "" && contentType != "application/octet-stream" {
		return r, contentType, nil
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", err
	}
	head = head[:n]
	return io.MultiReader(bytes.NewReader(head), r), mimetype.Detect(head).String(), nil
}

func validName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return invalid("file name %q is not allowed", name)
	case strings.ContainsAny(name, "/\\"):
		return invalid("file name %q must not contain a path separator", name)
	}
	return nil
}

func validDir(dir string) error {
	if dir == "" {
		return nil
	}
	for _, seg := range strings.Split(dir, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return invalid("directory %q has an empty or relative segment", dir)
		}
	}
	return nil
}

func splitPath(p string) (dir, name string) {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return "", p
	}
	return p[:idx], p[idx+1:]
}
