// Package cache keeps short-lived state in Redis: resolved profiles, revoked
// token ids, rendered exam PDFs and the submission queue.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/config"
	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/repository"
	"github.com/redis/go-redis/v9"
)

// Store wraps the Redis client.
type Store struct {
	rdb        *redis.Client
	profileTTL time.Duration
	pdfTTL     time.Duration
}

// New creates a Store.
func New(rdb *redis.Client, profileTTL, pdfTTL time.Duration) *Store {
	return &Store{rdb: rdb, profileTTL: profileTTL, pdfTTL: pdfTTL}
}

// GetProfile returns the cached profile for an identity subject, or nil on a miss.
func (s *Store) GetProfile(ctx context.Context, subject string) (*model.User, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.UserProfileKey(subject)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	var u model.User
	if err := json.Unmarshal(raw, &u); err != nil {
		// A stale shape is treated as a miss.
		return nil, nil
	}
	return &u, nil
}

// SetProfile caches a profile under its identity subject.
func (s *Store) SetProfile(ctx context.Context, subject string, u *model.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return s.rdb.Set(ctx, config.CacheKey.UserProfileKey(subject), raw, s.profileTTL).Err()
}

// DeleteProfile drops a cached profile.
func (s *Store) DeleteProfile(ctx context.Context, subject string) error {
	return s.rdb.Del(ctx, config.CacheKey.UserProfileKey(subject)).Err()
}

// RevokeToken marks a token id as logged out until the token would expire anyway.
func (s *Store) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, config.CacheKey.RevokedTokenKey(jti), 1, ttl).Err()
}

// IsRevoked reports whether a token id was logged out.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, config.CacheKey.RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}

// GetExamPDF returns a cached rendering of an exam revision, or nil on a miss.
func (s *Store) GetExamPDF(ctx context.Context, examID string, updatedAt time.Time) ([]byte, error) {
	b, err := s.rdb.Get(ctx, config.CacheKey.ExamPDFKey(examID, updatedAt)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

// SetExamPDF caches a rendering of an exam revision.
func (s *Store) SetExamPDF(ctx context.Context, examID string, updatedAt time.Time, data []byte) error {
	return s.rdb.Set(ctx, config.CacheKey.ExamPDFKey(examID, updatedAt), data, s.pdfTTL).Err()
}

// submissionLockTTL outlives any realistic queue backlog.
const submissionLockTTL = 24 * time.Hour

// ReserveSubmission claims a user's attempt at an exam. It reports false when
// the attempt was already claimed.
func (s *Store) ReserveSubmission(ctx context.Context, examID, userID string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, config.CacheKey.SubmissionLockKey(examID, userID), 1, submissionLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("reserve submission: %w", err)
	}
	return ok, nil
}

// ReleaseSubmission undoes ReserveSubmission after a failed hand-off.
func (s *Store) ReleaseSubmission(ctx context.Context, examID, userID string) error {
	return s.rdb.Del(ctx, config.CacheKey.SubmissionLockKey(examID, userID)).Err()
}

// EnqueueSubmission hands a graded submission to the persistence worker.
func (s *Store) EnqueueSubmission(ctx context.Context, rec repository.SubmissionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	return s.rdb.RPush(ctx, config.WorkerKey.PersistSubmissionsQueue, raw).Err()
}
