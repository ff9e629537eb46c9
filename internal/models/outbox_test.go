package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncActionKey(t *testing.T) {
	key := SyncActionKey("tenant-a", SyncActionInsert, "P1", "abc123")
	assert.Equal(t, "tenant-a:insert:P1:abc123", key)

	// Same inputs always produce the same key; that is what makes replay
	// idempotent.
	assert.Equal(t, key, SyncActionKey("tenant-a", SyncActionInsert, "P1", "abc123"))
	assert.NotEqual(t, key, SyncActionKey("tenant-a", SyncActionUpdate, "P1", "abc123"))
	assert.NotEqual(t, key, SyncActionKey("tenant-a", SyncActionInsert, "P1", "def456"))
}

func TestIsAllowedCurrency(t *testing.T) {
	assert.True(t, IsAllowedCurrency("Rs"))
	assert.True(t, IsAllowedCurrency("USD"))
	assert.False(t, IsAllowedCurrency("rs"), "currency codes are case sensitive")
	assert.False(t, IsAllowedCurrency("EUR"))
	assert.False(t, IsAllowedCurrency(""))
}
