package domain

import "time"

// BucketPolicy is the public access policy of a bucket.
type BucketPolicy string

const (
	BucketPolicyPrivate BucketPolicy = "private"
	BucketPolicyPublic  BucketPolicy = "public"
	BucketPolicyUpload  BucketPolicy = "upload"
)

// Bucket is a named container in one data center. Name is unique per DC.
type Bucket struct {
	ID          string       `gorm:"type:text;primaryKey" json:"id"`
	DC          string       `gorm:"type:text;not null;index:idx_buckets_dc_name,unique" json:"dcslug"`
	Name        string       `gorm:"type:text;not null;index:idx_buckets_dc_name,unique" json:"name"`
	SizeGB      int          `gorm:"not null" json:"size"`
	Billing     string       `gorm:"type:text" json:"billing,omitempty"`
	Policy      BucketPolicy `gorm:"type:text;default:private" json:"policy"`
	Status      string       `gorm:"type:text;default:active" json:"status"`
	ObjectCount int64        `gorm:"-" json:"object_count"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"-"`
}

func (Bucket) TableName() string {
	return "buckets"
}

// PermissionLevel is the access an access key holds on a bucket.
type PermissionLevel string

const (
	PermissionRead  PermissionLevel = "read"
	PermissionWrite PermissionLevel = "write"
	PermissionFull  PermissionLevel = "full"
	PermissionNone  PermissionLevel = "none"
)

// Allows reports whether l covers the wanted level. full covers write and
// read; write covers read.
func (l PermissionLevel) Allows(want PermissionLevel) bool {
	rank := map[PermissionLevel]int{PermissionNone: 0, PermissionRead: 1, PermissionWrite: 2, PermissionFull: 3}
	return rank[l] >= rank[want] && want != PermissionNone
}

// BucketGrant records the permission of one access key on one bucket.
type BucketGrant struct {
	ID        string          `gorm:"type:text;primaryKey" json:"id"`
	DC        string          `gorm:"type:text;not null;index:idx_grants_target,unique" json:"dcslug"`
	Bucket    string          `gorm:"type:text;not null;index:idx_grants_target,unique" json:"bucket"`
	AccessKey string          `gorm:"type:text;not null;index:idx_grants_target,unique" json:"accesskey"`
	Level     PermissionLevel `gorm:"type:text;not null" json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (BucketGrant) TableName() string {
	return "bucket_grants"
}
