package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaguedesk/roster-service/internal/config"
	"github.com/leaguedesk/roster-service/internal/domain"
	apperrors "github.com/leaguedesk/roster-service/pkg/util/errorutil"
)

func newSessionService() *SessionService {
	return NewSessionService(config.Config{
		Auth:       config.AuthConfig{JWTSecret: "test-secret", SessionTTLMinutes: 15},
		Governance: config.GovernanceConfig{LeagueActor: "League Office"},
	})
}

func TestOpenSessionLeagueDefaultsName(t *testing.T) {
	svc := newSessionService()

	actor, token, exp, err := svc.OpenSession("league_admin", "")
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{Role: domain.ActorRoleLeagueAdmin, Name: "League Office"}, actor)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor, claims.Actor())
}

func TestOpenSessionClubRequiresName(t *testing.T) {
	svc := newSessionService()

	_, _, _, err := svc.OpenSession("CLUB", "  ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	actor, _, _, err := svc.OpenSession("club", "Riverside FC")
	require.NoError(t, err)
	assert.Equal(t, domain.ActorRoleClub, actor.Role)
	assert.Equal(t, "Riverside FC", actor.Name)
}

func TestOpenSessionRejectsUnknownRole(t *testing.T) {
	_, _, _, err := newSessionService().OpenSession("owner", "x")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}
