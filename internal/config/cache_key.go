package config

import (
	"fmt"
	"time"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserProfileKey returns the cache key for a resolved user profile, keyed by identity subject.
func (r *CacheKeyStruct) UserProfileKey(subject string) string {
	return fmt.Sprintf("user:%s:profile", subject)
}

// RevokedTokenKey returns the cache key marking a token id as logged out.
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("token:%s:revoked", jti)
}

// ExamPDFKey returns the cache key for a rendered exam PDF at a given revision.
func (r *CacheKeyStruct) ExamPDFKey(examID string, updatedAt time.Time) string {
	return fmt.Sprintf("exam:%s:pdf:%d", examID, updatedAt.UnixMicro())
}

// SubmissionLockKey returns the key that reserves a user's single attempt at an
// exam while the submission waits in the persistence queue.
func (r *CacheKeyStruct) SubmissionLockKey(examID, userID string) string {
	return fmt.Sprintf("exam:%s:submitted:%s", examID, userID)
}

var CacheKey = NewCacheKeyStruct()
