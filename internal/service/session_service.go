package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/config"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/models"
	repo "github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/repository/redis"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/logger"
)

type SessionService interface {
	GetSession(ctx context.Context, ssID string) (*models.ScheduledSession, error)
	RefreshSession(ctx context.Context, ssID string) (*models.ScheduledSession, error)
	SaveSession(ctx context.Context, ss *models.ScheduledSession) error
	GenerateRoomToken(ctx context.Context, ss *models.ScheduledSession, role models.ParticipantRole) (string, error)
}

type sessionService struct {
	repo    repo.SessionRepository
	backend BookingBackend
	conf    config.JWTConfig
	l       logger.Logger
}

func NewSessionService(
	repo repo.SessionRepository,
	backend BookingBackend,
	conf config.JWTConfig,
	l logger.Logger,
) SessionService {
	return &sessionService{
		repo:    repo,
		backend: backend,
		conf:    conf,
		l:       l,
	}
}

// GetSession serves the snapshot cache-aside: Redis first, the booking
// backend on a miss.
func (s *sessionService) GetSession(ctx context.Context, ssID string) (*models.ScheduledSession, error) {
	ss, err := s.repo.Get(ctx, ssID)
	if err == nil {
		return ss, nil
	}
	if err != repo.ErrCacheMiss {
		s.l.Errorf(ctx, "service.sessionService.GetSession: %v", err)
		return nil, err
	}

	return s.RefreshSession(ctx, ssID)
}

// RefreshSession always fetches a fresh snapshot from the backend and
// re-caches it.
func (s *sessionService) RefreshSession(ctx context.Context, ssID string) (*models.ScheduledSession, error) {
	ss, err := s.backend.GetSession(ctx, ssID)
	if err != nil {
		s.l.Errorf(ctx, "service.sessionService.RefreshSession: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}
	if ss == nil {
		return nil, ErrSessionNotFound
	}

	if err := s.repo.Save(ctx, ss); err != nil {
		// A cache write failure must not hide a good snapshot.
		s.l.Warnf(ctx, "service.sessionService.RefreshSession: %v", err)
	}

	return ss, nil
}

func (s *sessionService) SaveSession(ctx context.Context, ss *models.ScheduledSession) error {
	if err := s.repo.Save(ctx, ss); err != nil {
		s.l.Errorf(ctx, "service.sessionService.SaveSession: %v", err)
		return err
	}
	return nil
}

// GenerateRoomToken signs a short-lived token admitting role into the
// session's video room.
func (s *sessionService) GenerateRoomToken(ctx context.Context, ss *models.ScheduledSession, role models.ParticipantRole) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"session_id": ss.ID,
		"role":       string(role),
		"iat":        now.Unix(),
		"exp":        now.Add(s.conf.Expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.conf.Secret))
	if err != nil {
		s.l.Errorf(ctx, "service.sessionService.GenerateRoomToken: %v", err)
		return "", fmt.Errorf("failed to sign room token: %w", err)
	}

	return signed, nil
}
