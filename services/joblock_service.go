package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
)

// AcquireJobLock claims the named advisory-lock row for ttl. The claim is a single
// conditional UPDATE, so at most one caller wins; a lock held past its TTL is treated as
// abandoned and can be re-claimed. Returns the owner token needed to release.
func AcquireJobLock(name string, ttl time.Duration) (string, bool, error) {
	owner := uuid.NewString()
	now := time.Now()

	result := database.DB.Model(&models.JobLock{}).
		Where("name = ? AND (locked_until IS NULL OR locked_until <= ?)", name, now).
		Updates(map[string]interface{}{
			"owner":        owner,
			"locked_at":    now,
			"locked_until": now.Add(ttl),
		})
	if result.Error != nil {
		return "", false, result.Error
	}

	return owner, result.RowsAffected == 1, nil
}

// ReleaseJobLock frees the lock if still held by owner. A lock that expired and was
// re-claimed by someone else is left alone.
func ReleaseJobLock(name, owner string) error {
	return database.DB.Model(&models.JobLock{}).
		Where("name = ? AND owner = ?", name, owner).
		Updates(map[string]interface{}{
			"owner":        nil,
			"locked_at":    nil,
			"locked_until": nil,
		}).Error
}
