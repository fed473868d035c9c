package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/timmy/uthos/internal/domain"
	"github.com/timmy/uthos/internal/logger"
	"github.com/timmy/uthos/internal/repository"
)

// Credentials are the root credentials of the emulator. Any of them
// authenticates a caller with full access.
type Credentials struct {
	Token     string
	AccessKey string
	SecretKey string
}

// Principal is an authenticated caller. Root callers hold the configured
// credentials; everyone else is an access key scoped to one data center.
type Principal struct {
	Root      bool
	DC        string
	Name      string
	AccessKey string
}

// AccessKeyService manages access keys and authenticates requests.
type AccessKeyService struct {
	keys   *repository.AccessKeyRepository
	root   Credentials
	logger *logger.Logger
}

// NewAccessKeyService creates a new access key service.
// Parameters:
//   - keys: access key repository.
//   - root: credentials accepted as root.
//   - log: logger instance.
// Returns:
//   - *AccessKeyService: initialized service.
func NewAccessKeyService(
	keys *repository.AccessKeyRepository,
	root Credentials,
	log *logger.Logger,
) *AccessKeyService {
	return &AccessKeyService{
		keys:   keys,
		root:   root,
		logger: log,
	}
}

// Create issues a new key pair. The secret is only returned here.
func (s *AccessKeyService) Create(ctx context.Context, dc, name string) (*domain.AccessKey, error) {
	dc = strings.TrimSpace(dc)
	name = strings.TrimSpace(name)
	if dc == "" {
		return nil, invalid("dcslug is required")
	}
	if name == "" {
		return nil, invalid("accesskey_name is required")
	}

	_, err := s.keys.GetByName(ctx, dc, name)
	switch {
	case err == nil:
		return nil, conflict("access key %s", name)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, translate(err, "access key")
	}

	secret, err := randomHex(20)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	key := &domain.AccessKey{
		ID:        uuid.NewString(),
		DC:        dc,
		Name:      name,
		AccessKey: strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:20]),
		SecretKey: secret,
		Status:    domain.AccessKeyEnabled,
	}
	if err := s.keys.Create(ctx, key); err != nil {
		return nil, translate(err, "access key "+name)
	}

	logger.CtxInfo(ctx, "access key created: dc=%s, name=%s", dc, name)
	return key, nil
}

// List returns the keys of a data center without their secrets.
func (s *AccessKeyService) List(ctx context.Context, dc string) ([]domain.AccessKey, error) {
	keys, err := s.keys.List(ctx, dc)
	if err != nil {
		return nil, translate(err, "access keys")
	}
	for i := range keys {
		keys[i] = keys[i].Redacted()
	}
	return keys, nil
}

// Modify applies enable, disable or remove to a key. remove also drops every
// grant the key held.
func (s *AccessKeyService) Modify(ctx context.Context, dc, name, status string) error {
	key, err := s.keys.GetByName(ctx, dc, name)
	if err != nil {
		return translate(err, "access key "+name)
	}

	switch status {
	case "enable":
		err = s.keys.UpdateStatus(ctx, dc, name, domain.AccessKeyEnabled)
	case "disable":
		err = s.keys.UpdateStatus(ctx, dc, name, domain.AccessKeyDisabled)
	case "remove":
		err = s.keys.DeleteWithGrants(ctx, dc, name, key.AccessKey)
	default:
		return invalid("status %q is not one of enable, disable, remove", status)
	}
	if err != nil {
		return translate(err, "access key "+name)
	}

	logger.CtxInfo(ctx, "access key %s: %s", name, status)
	return nil
}

// Authenticate resolves request credentials to a principal. A bearer token,
// when present, is the only credential considered.
func (s *AccessKeyService) Authenticate(ctx context.Context, token, accessKey, secretKey string) (*Principal, error) {
	if token != "" {
		if s.root.Token != "" && equal(token, s.root.Token) {
			return &Principal{Root: true, Name: "root"}, nil
		}
		return nil, ErrUnauthorized
	}
	if accessKey == "" || secretKey == "" {
		return nil, ErrUnauthorized
	}
	if s.root.AccessKey != "" && equal(accessKey, s.root.AccessKey) && equal(secretKey, s.root.SecretKey) {
		return &Principal{Root: true, Name: "root", AccessKey: accessKey}, nil
	}

	key, err := s.keys.GetByAccessKey(ctx, accessKey)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, translate(err, "access key")
	}
	if !equal(secretKey, key.SecretKey) || key.Status != domain.AccessKeyEnabled {
		return nil, ErrUnauthorized
	}
	return &Principal{DC: key.DC, Name: key.Name, AccessKey: key.AccessKey}, nil
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
