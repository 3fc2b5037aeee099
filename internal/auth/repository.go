// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kallan/backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	Refresh(ctx context.Context, session *Session) error
	RevokeByID(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID int64, keepID string) error
}

type repository struct {
	rdb *redis.Client
}

// NewRepository stores sessions as JSON values with a TTL, plus a per-user
// set of session ids so all of a user's sessions can be revoked at once.
func NewRepository(rdb *redis.Client) Repository {
	return &repository{rdb: rdb}
}

func sessionKey(id string) string {
	return core.Key("session", id)
}

func userSessionsKey(userID int64) string {
	return core.Key("user_sessions", strconv.FormatInt(userID, 10))
}

func (r *repository) Create(ctx context.Context, session *Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("create session: already expired")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), data, ttl)
	pipe.SAdd(ctx, userSessionsKey(session.UserID), session.ID)
	pipe.Expire(ctx, userSessionsKey(session.UserID), ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Session, error) {
	data, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	return &session, nil
}

// Refresh rewrites the record, keeping its remaining TTL.
func (r *repository) Refresh(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}

	err = r.rdb.SetArgs(ctx, sessionKey(session.ID), data, redis.SetArgs{
		KeepTTL: true,
		Mode:    "XX",
	}).Err()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("refresh session: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}

	return nil
}

func (r *repository) RevokeByID(ctx context.Context, id string) error {
	session, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, userSessionsKey(session.UserID), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (r *repository) RevokeAllForUser(
	ctx context.Context,
	userID int64,
	keepID string,
) error {
	ids, err := r.rdb.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	for _, id := range ids {
		if id == keepID {
			continue
		}
		pipe.Del(ctx, sessionKey(id))
		pipe.SRem(ctx, userSessionsKey(userID), id)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}

	return nil
}
