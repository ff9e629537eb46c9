package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"

	"catalog-service/internal/models"
)

// The failure transition must be a single UPDATE: the counter increment and
// the threshold check both run in the database, never via read-then-write.
func TestFailureUpdatesIncrementsInDatabase(t *testing.T) {
	updates := failureUpdates("connection refused", 5)

	attempts, ok := updates["attempts"].(clause.Expr)
	require.True(t, ok, "attempts must be a SQL expression, not a Go-side value")
	assert.Equal(t, "attempts + 1", attempts.SQL)

	assert.Equal(t, "connection refused", updates["last_error"])
}

func TestFailureUpdatesStatusThreshold(t *testing.T) {
	updates := failureUpdates("boom", 3)

	status, ok := updates["status"].(clause.Expr)
	require.True(t, ok, "status must be derived from the stored counter")
	assert.Equal(t, "CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END", status.SQL)
	require.Len(t, status.Vars, 3)
	assert.Equal(t, 3, status.Vars[0])
	assert.Equal(t, models.SyncActionFailed, status.Vars[1])
	assert.Equal(t, models.SyncActionPending, status.Vars[2])
}
