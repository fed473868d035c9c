package domain

import "time"

// SharedLink is an unauthenticated, time-bounded download token.
type SharedLink struct {
	Token      string    `gorm:"type:text;primaryKey" json:"token"`
	DC         string    `gorm:"type:text;not null;index:idx_shared_links_object" json:"dcslug"`
	Bucket     string    `gorm:"type:text;not null;index:idx_shared_links_object" json:"bucket"`
	ObjectPath string    `gorm:"type:text;not null;index:idx_shared_links_object" json:"path"`
	ExpiresAt  time.Time `gorm:"not null;index:idx_shared_links_expiry" json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (SharedLink) TableName() string {
	return "shared_links"
}

// Expired reports whether the link is no longer valid at now.
func (l SharedLink) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
