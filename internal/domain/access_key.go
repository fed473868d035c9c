package domain

import "time"

// AccessKeyStatus is the lifecycle state of an access key. Removed keys are
// deleted outright, so only two states are stored.
type AccessKeyStatus string

const (
	AccessKeyEnabled  AccessKeyStatus = "enabled"
	AccessKeyDisabled AccessKeyStatus = "disabled"
)

// AccessKey is a named key pair scoped to a data center.
type AccessKey struct {
	ID        string          `gorm:"type:text;primaryKey" json:"id"`
	DC        string          `gorm:"type:text;not null;index:idx_access_keys_dc_name,unique" json:"dcslug"`
	Name      string          `gorm:"type:text;not null;index:idx_access_keys_dc_name,unique" json:"name"`
	AccessKey string          `gorm:"type:text;not null;uniqueIndex:idx_access_keys_key" json:"accesskey"`
	SecretKey string          `gorm:"type:text;not null" json:"secretkey,omitempty"`
	Status    AccessKeyStatus `gorm:"type:text;default:enabled" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"-"`
}

func (AccessKey) TableName() string {
	return "access_keys"
}

// Redacted returns a copy without the secret, for listings.
func (k AccessKey) Redacted() AccessKey {
	k.SecretKey = ""
	return k
}
