package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPermissionLevel_Allows(t *testing.T) {
	assert.True(t, PermissionFull.Allows(PermissionWrite))
	assert.True(t, PermissionWrite.Allows(PermissionRead))
	assert.True(t, PermissionRead.Allows(PermissionRead))
	assert.False(t, PermissionRead.Allows(PermissionWrite))
	assert.False(t, PermissionNone.Allows(PermissionRead))
	assert.False(t, PermissionFull.Allows(PermissionNone))
}

func TestObjectPath(t *testing.T) {
	assert.Equal(t, "a.txt", ObjectPath("", "a.txt"))
	assert.Equal(t, "docs/a.txt", ObjectPath("/docs/", "a.txt"))
	assert.Equal(t, "innoida/b/docs/a.txt", StorageKey("innoida", "b", "/docs/a.txt"))
}

func TestSharedLink_Expired(t *testing.T) {
	now := time.Now()
	link := SharedLink{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, link.Expired(now))
	assert.True(t, link.Expired(now.Add(time.Minute)))
}

func TestAccessKey_Redacted(t *testing.T) {
	k := AccessKey{Name: "ci", SecretKey: "s3cr3t"}
	assert.Empty(t, k.Redacted().SecretKey)
	assert.Equal(t, "s3cr3t", k.SecretKey)
}
