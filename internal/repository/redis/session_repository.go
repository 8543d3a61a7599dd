package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/models"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/logger"
)

// ErrCacheMiss is returned when a session snapshot is not cached; callers
// fall back to the booking backend.
var ErrCacheMiss = errors.New("session snapshot not cached")

type SessionRepository interface {
	Save(ctx context.Context, ss *models.ScheduledSession) error
	Get(ctx context.Context, ssID string) (*models.ScheduledSession, error)
	Delete(ctx context.Context, ssID string) error
	Exists(ctx context.Context, ssID string) (bool, error)

	// InvalidateSession drops every cached view a terminal transition can
	// change: the session record itself, both participants' upcoming
	// lists, and their current-session aggregates.
	InvalidateSession(ctx context.Context, ssID string) error
}

type redisSessionRepository struct {
	cli *redis.Client
	ttl time.Duration
	l   logger.Logger
}

func NewRedisSessionRepository(cli *redis.Client, ttl time.Duration, l logger.Logger) SessionRepository {
	return &redisSessionRepository{
		cli: cli,
		ttl: ttl,
		l:   l,
	}
}

func (r *redisSessionRepository) Save(ctx context.Context, ss *models.ScheduledSession) error {
	data, err := json.Marshal(ss)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.cli.Set(ctx, r.sessionKey(ss.ID), data, r.ttl).Err(); err != nil {
		r.l.Errorf(ctx, "redisSessionRepository.Save: %v", err)
		return err
	}

	r.l.Debugf(ctx, "redisSessionRepository.Save: cached session %s", ss.ID)

	return nil
}

func (r *redisSessionRepository) Get(ctx context.Context, ssID string) (*models.ScheduledSession, error) {
	data, err := r.cli.Get(ctx, r.sessionKey(ssID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}

		r.l.Errorf(ctx, "redisSessionRepository.Get: %v", err)
		return nil, err
	}

	var ss models.ScheduledSession
	if err := json.Unmarshal(data, &ss); err != nil {
		r.l.Errorf(ctx, "redisSessionRepository.Get: %v", err)
		return nil, err
	}

	return &ss, nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, ssID string) error {
	if err := r.cli.Del(ctx, r.sessionKey(ssID)).Err(); err != nil {
		r.l.Errorf(ctx, "redisSessionRepository.Delete: %v", err)
		return err
	}

	return nil
}

func (r *redisSessionRepository) Exists(ctx context.Context, ssID string) (bool, error) {
	n, err := r.cli.Exists(ctx, r.sessionKey(ssID)).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisSessionRepository.Exists: %v", err)
		return false, err
	}

	return n > 0, nil
}

func (r *redisSessionRepository) InvalidateSession(ctx context.Context, ssID string) error {
	keys := []string{r.sessionKey(ssID)}

	// The participant-scoped views can only be named when the snapshot is
	// still cached; a miss just narrows the delete to the session key.
	ss, err := r.Get(ctx, ssID)
	if err == nil {
		for _, uID := range []string{ss.PatientID, ss.PsychologistID} {
			if uID == "" {
				continue
			}
			keys = append(keys, r.upcomingKey(uID), r.currentKey(uID))
		}
	} else if err != ErrCacheMiss {
		return err
	}

	pipe := r.cli.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Errorf(ctx, "redisSessionRepository.InvalidateSession: %v", err)
		return err
	}

	r.l.Debugf(ctx, "redisSessionRepository.InvalidateSession: dropped %d keys for session %s", len(keys), ssID)

	return nil
}

func (r *redisSessionRepository) sessionKey(ssID string) string {
	return fmt.Sprintf("therapy:session:%s", ssID)
}

func (r *redisSessionRepository) upcomingKey(userID string) string {
	return fmt.Sprintf("therapy:upcoming:%s", userID)
}

func (r *redisSessionRepository) currentKey(userID string) string {
	return fmt.Sprintf("therapy:current:%s", userID)
}
