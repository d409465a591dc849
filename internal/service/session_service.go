package service

import (
	"strings"
	"time"

	"github.com/leaguedesk/roster-service/internal/auth"
	"github.com/leaguedesk/roster-service/internal/config"
	"github.com/leaguedesk/roster-service/internal/domain"
	apperrors "github.com/leaguedesk/roster-service/pkg/util/errorutil"
)

// SessionService opens dashboard sessions. The actor role is decided here,
// once, and carried in the token for every later governance call.
type SessionService struct {
	tokenMgr    *auth.TokenManager
	leagueActor string
}

// NewSessionService builds the service.
func NewSessionService(cfg config.Config) *SessionService {
	return &SessionService{
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTLMinutes),
		leagueActor: cfg.Governance.LeagueActor,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *SessionService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// OpenSession issues a token for the role. League sessions default to the
// configured league actor name; club sessions must name the club.
func (s *SessionService) OpenSession(rawRole, actorName string) (domain.Actor, string, time.Time, error) {
	role, ok := domain.ParseActorRole(rawRole)
	if !ok {
		return domain.Actor{}, "", time.Time{}, apperrors.NewInvalidArgument("unknown role", map[string]any{"role": rawRole})
	}
	name := strings.TrimSpace(actorName)
	if role == domain.ActorRoleLeagueAdmin && name == "" {
		name = s.leagueActor
	}
	if name == "" {
		return domain.Actor{}, "", time.Time{}, apperrors.NewInvalidArgument("actor name required", nil)
	}

	actor := domain.Actor{Role: role, Name: name}
	token, exp, err := s.tokenMgr.GenerateToken(actor)
	if err != nil {
		return domain.Actor{}, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return actor, token, exp, nil
}
